package aocs

// Near-target speed taper, applied only in vision-assisted modes.
// Halving the speed with a floor avoids overshoot right at the setpoint
// while keeping enough torque to finish the move.
const (
	taperErrorDeg = 5.0
	taperFactor   = 0.5
	taperFloorPct = 15.0
)

// MotorCommand is one actuation decision: direction -1/0/+1 and a
// duty-cycle percentage. Speed is always clamped into [0, 100]; a zero
// direction means full stop.
type MotorCommand struct {
	Direction int
	Speed     float64
}

// Stopped reports whether this command is a full stop.
func (c MotorCommand) Stopped() bool {
	return c.Direction == 0
}

// ShapeCommand maps a PID output to a motor command. Outputs inside the
// dead-zone collapse to a full stop to avoid chatter near zero; otherwise
// the magnitude is clamped to maxSpeed.
func ShapeCommand(output, deadzone, maxSpeed float64) MotorCommand {
	if abs(output) < deadzone {
		return MotorCommand{}
	}
	speed := clamp(abs(output), 0, clamp(maxSpeed, 0, 100))
	return MotorCommand{Direction: sign(output), Speed: speed}
}

// TaperNearTarget halves the speed (floor 15%) when the error is inside
// the taper band. No-op for stop commands.
func (c MotorCommand) TaperNearTarget(absError float64) MotorCommand {
	if c.Stopped() || absError >= taperErrorDeg {
		return c
	}
	c.Speed = clamp(c.Speed*taperFactor, taperFloorPct, 100)
	return c
}

// applyCommand sends a command to the motor. Stop commands use the
// composite Stop so both direction pins and duty cycle drop together.
func applyCommand(m Motor, cmd MotorCommand) error {
	if cmd.Stopped() {
		return m.Stop()
	}
	if err := m.SetDirection(cmd.Direction); err != nil {
		return err
	}
	return m.SetSpeed(cmd.Speed)
}
