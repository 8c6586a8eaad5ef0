package aocs

import "time"

// Fixed tick periods per mode. Integration error stays bounded only
// because dt is small and constant; jitter is absorbed by sleeping the
// measured remainder, never by varying dt.
const (
	moveTickPeriod     = 20 * time.Millisecond
	rotateTickPeriod   = 20 * time.Millisecond
	detumbleTickPeriod = 10 * time.Millisecond
)

// Anti-windup limits per mode family.
const (
	freeIntegralLimit   = 50.0
	visionIntegralLimit = 30.0
)

// Settle-count debounce: consecutive in-tolerance ticks required before a
// move terminates. Vision modes debounce harder against noisy dips.
const (
	settleTicksFree   = 10
	settleTicksVision = 25
)

// Rotate-360 rate tracking: speed = clamp(base + rateError*gain, min, max).
const (
	rotateBaseSpeed = 40.0
	rotateRateGain  = 2.0
	rotateMinSpeed  = 25.0
	rotateMaxSpeed  = 80.0
)

// A mode aborts once this many consecutive sensor reads fail; isolated
// failures degrade to a zero reading and the loop continues.
const maxConsecutiveSensorFailures = 50

// Config holds the tunable control constants for a Loop.
type Config struct {
	Gains Gains

	FilterAlpha  float64 // complementary filter, free motion
	DockingAlpha float64 // complementary filter, vision/docking

	PositionTolerance float64 // degrees, free moves
	DockingTolerance  float64 // degrees, vision moves and docking

	Deadzone       float64 // control-output dead-zone, free motion and detumble
	VisionDeadzone float64 // tighter dead-zone for vision-assisted moves

	DockingMaxSpeed float64 // percent, docking corrections
	DockingDistance float64 // marker units, docking success threshold
	CorrectionGain  float64 // docking under-correction factor
}

// DefaultConfig returns the engineering-model control constants.
//
// CorrectionGain damps docking overshoot by intentionally under-correcting
// each maneuver. The 0.8 default is an empirical constant, not a verified
// control-theoretic optimum; treat it as tunable.
func DefaultConfig() Config {
	return Config{
		Gains:             Gains{Kp: 1.2, Ki: 0.05, Kd: 0.15},
		FilterAlpha:       0.8,
		DockingAlpha:      0.85,
		PositionTolerance: 2.0,
		DockingTolerance:  1.0,
		Deadzone:          5,
		VisionDeadzone:    3,
		DockingMaxSpeed:   25,
		DockingDistance:   5.0,
		CorrectionGain:    0.8,
	}
}
