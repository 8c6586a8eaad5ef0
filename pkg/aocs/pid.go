package aocs

import "math"

// Gains holds PID gain constants.
type Gains struct {
	Kp, Ki, Kd float64
}

// PID is a proportional-integral-derivative controller with a clamped
// integral term. State is scoped to one mode invocation: construct a
// fresh controller (or call Reset) at every mode entry. Carrying state
// across unrelated maneuvers is a correctness bug.
type PID struct {
	gains         Gains
	integralLimit float64

	errorSum  float64
	lastError float64
}

// NewPID creates a controller with the given gains and anti-windup limit.
func NewPID(gains Gains, integralLimit float64) *PID {
	return &PID{gains: gains, integralLimit: integralLimit}
}

// Reset clears the integral and derivative state.
func (p *PID) Reset() {
	p.errorSum = 0
	p.lastError = 0
}

// Step advances the controller by one tick and returns the control output.
// dt is the fixed tick period in seconds.
func (p *PID) Step(err, dt float64) float64 {
	p.errorSum += err * dt
	p.errorSum = clamp(p.errorSum, -p.integralLimit, p.integralLimit)

	var errRate float64
	if dt > 0 {
		errRate = (err - p.lastError) / dt
	}
	p.lastError = err

	return p.gains.Kp*err + p.gains.Ki*p.errorSum + p.gains.Kd*errRate
}

// ErrorSum returns the current integral term.
func (p *PID) ErrorSum() float64 {
	return p.errorSum
}

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// sign returns -1, 0 or +1.
func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// abs is a local shorthand for math.Abs.
func abs(v float64) float64 {
	return math.Abs(v)
}
