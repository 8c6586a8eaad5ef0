package aocs

import (
	"fmt"
	"math"
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// Sampling intervals for the stationary procedures.
const (
	calibrationInterval = 10 * time.Millisecond
	referenceInterval   = 20 * time.Millisecond
)

// Reference initialisation gates.
const (
	referenceSamples  = 50
	referenceMinValid = 40
	referenceMaxStd   = 2.0 // deg/s
)

// Calibrate estimates the gyro bias as the mean of n stationary samples
// and stores it on the loop. The bias is only trusted if at least 80% of
// the reads succeed; otherwise the previous bias is kept and an error is
// returned. The platform must be kept stationary throughout.
func (l *Loop) Calibrate(n int) (float64, error) {
	log.Info("calibrating gyroscope", "samples", n)

	sum := 0.0
	valid := 0
	for i := 0; i < n; i++ {
		if r, err := l.sensor.ReadRate(); err == nil {
			sum += r.Z
			valid++
		}
		if (i+1)%20 == 0 {
			log.Debug("calibration progress", "done", i+1, "total", n)
		}
		time.Sleep(calibrationInterval)
	}

	if valid*5 < n*4 {
		return 0, fmt.Errorf("calibration failed: only %d/%d valid samples", valid, n)
	}

	bias := sum / float64(valid)
	l.SetBias(bias)
	log.Info("gyroscope calibration complete", "bias", bias)
	return bias, nil
}

// InitialiseReference zeroes the angle estimate at the current physical
// orientation. The platform must be stable: the procedure fails on too
// few valid reads or on excessive rate scatter, leaving the loop in the
// failed state.
func (l *Loop) InitialiseReference() error {
	log.Info("initialising reference position")

	readings := make([]float64, 0, referenceSamples)
	for i := 0; i < referenceSamples; i++ {
		if rate, ok := l.readRate(); ok {
			readings = append(readings, rate)
		}
		time.Sleep(referenceInterval)
	}

	if len(readings) < referenceMinValid {
		l.setSystem(StatusFailed)
		return fmt.Errorf("reference init: insufficient readings (%d/%d)", len(readings), referenceSamples)
	}

	std := stddev(readings)
	if std >= referenceMaxStd {
		l.setSystem(StatusFailed)
		return fmt.Errorf("reference init: platform not stable, gyro std %.2f deg/s", std)
	}

	l.mu.Lock()
	l.currentAngle = 0
	l.system = StatusInitialised
	l.mu.Unlock()

	log.Info("reference position initialised", "gyro_std", std)
	return nil
}

// stddev computes the population standard deviation.
func stddev(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(vals))
	return math.Sqrt(variance)
}
