package aocs

import (
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// Gyro stability probe: reads taken at 100ms, minimum that must succeed.
const (
	healthProbeReads    = 10
	healthProbeMinValid = 8
	healthCalSamples    = 100
)

// HealthCheck runs the startup verification sequence: gyro stability
// probe, motor exercise, then calibration. Any failing stage marks the
// system failed and stops there. Returns the resulting system status.
func (l *Loop) HealthCheck() SystemStatus {
	log.Info("health check started")

	valid := 0
	for i := 0; i < healthProbeReads; i++ {
		if _, err := l.sensor.ReadRate(); err == nil {
			valid++
		}
		time.Sleep(100 * time.Millisecond)
	}
	if valid < healthProbeMinValid {
		log.Error("gyroscope readings unstable", "valid", valid, "reads", healthProbeReads)
		l.setSystem(StatusFailed)
		return StatusFailed
	}

	if err := l.motorExercise(); err != nil {
		log.Error("motor health check failed", "err", err)
		l.setSystem(StatusFailed)
		return StatusFailed
	}

	if _, err := l.Calibrate(healthCalSamples); err != nil {
		log.Error("calibration failed during health check", "err", err)
		l.setSystem(StatusFailed)
		return StatusFailed
	}

	log.Info("all health checks passed")
	l.setSystem(StatusReady)
	return StatusReady
}

// motorExercise pulses the motor briefly in both directions and stops.
// Verifies the driver responds without requiring any attitude change
// measurement.
func (l *Loop) motorExercise() error {
	if err := l.motor.SetDirection(1); err != nil {
		return err
	}
	if err := l.motor.SetSpeed(30); err != nil {
		return err
	}
	time.Sleep(l.healthPulse)

	if err := l.motor.SetDirection(-1); err != nil {
		return err
	}
	time.Sleep(l.healthPulse)

	return l.motor.Stop()
}
