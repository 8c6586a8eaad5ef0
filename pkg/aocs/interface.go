// Package aocs implements single-axis attitude determination and control
// for the CubeSat engineering model: gyro filtering and integration, PID
// motor control with anti-windup, vision-fused positioning and the docking
// supervisor.
//
// This package defines small, focused hardware interfaces. Consumers should
// depend only on the interfaces they actually use; pkg/hardware provides
// the serial-bridge and simulated implementations.
package aocs

import "github.com/astraios/go-aocs/pkg/vision"

// RateReading is one gyroscope sample in deg/s.
// The control core only consumes the Z axis.
type RateReading struct {
	X, Y, Z float64
}

// RateSensor reads angular rate from the IMU.
type RateSensor interface {
	ReadRate() (RateReading, error)
}

// Motor drives the bidirectional reaction-wheel motor.
// Direction is -1, 0 or +1; speed is a duty-cycle percentage 0-100.
type Motor interface {
	SetDirection(dir int) error
	SetSpeed(pct float64) error
	Stop() error
}

// ObservationSource provides the latest vision observation, if any.
type ObservationSource interface {
	Latest() (vision.Observation, bool)
}
