package aocs

import (
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// Rotate360 performs one full rotation at the given angular velocity in
// deg/s (sign selects direction). There is no position target during a
// full turn, so the motor is driven toward the target rate rather than
// position-PID controlled. Blocks until the accumulated rotation reaches
// 360 degrees, cancellation or fault.
func (l *Loop) Rotate360(angularVelocity float64) ModeResult {
	cancel := l.begin(ModeRotating360)
	defer l.finish(ModeRotating360)

	direction := 1
	if angularVelocity < 0 {
		direction = -1
	}
	targetRate := abs(angularVelocity)

	filter := NewLowPass(l.cfg.FilterAlpha)
	dt := rotateTickPeriod.Seconds()

	var faults faultCounter
	total := 0.0
	prev := l.CurrentAngle()
	lastLogged := 0.0

	for total < 360 {
		start := time.Now()

		if cancel.Load() {
			return l.aborted(ModeRotating360, "cancelled")
		}

		rate, ok := l.updateAngle(filter, dt)
		if faults.note(ok) {
			return l.aborted(ModeRotating360, "persistent gyro failure")
		}

		// Accumulate |delta| with wrap correction so the running total
		// keeps growing past the ±180 seam.
		angle := l.CurrentAngle()
		delta := abs(angle - prev)
		if delta > 180 {
			delta = 360 - delta
		}
		total += delta
		prev = angle

		speed := rotateBaseSpeed + (targetRate-abs(rate))*rotateRateGain
		speed = clamp(speed, rotateMinSpeed, rotateMaxSpeed)
		l.setCommand(MotorCommand{Direction: direction, Speed: speed})

		if total-lastLogged >= 90 {
			lastLogged = total
			log.Info("rotation progress", "total", total, "rate", rate, "speed", speed)
		}

		sleepRemainder(start, rotateTickPeriod)
	}

	log.Info("rotation complete", "total", total)
	return ModeResult{Mode: ModeRotating360, Reached: true, FinalAngle: l.CurrentAngle()}
}
