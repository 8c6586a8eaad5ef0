package aocs

import (
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// MoveTo rotates to the target angle (degrees, any reference) under PID
// control and blocks until settled, cancelled or faulted. maxSpeed caps
// the duty cycle in percent.
func (l *Loop) MoveTo(target, maxSpeed float64) ModeResult {
	return l.moveTo(ModeMovingTo, target, maxSpeed, false)
}

// MoveToVisionAssisted is MoveTo with the angle error fused against the
// latest vision observation and a near-target speed taper. Used for
// docking corrections.
func (l *Loop) MoveToVisionAssisted(target, maxSpeed float64) ModeResult {
	return l.moveTo(ModeMovingVision, target, maxSpeed, true)
}

func (l *Loop) moveTo(mode Mode, target, maxSpeed float64, useVision bool) ModeResult {
	cancel := l.begin(mode)
	defer l.finish(mode)

	target = Wrap(target)
	l.mu.Lock()
	l.targetAngle = target
	l.mu.Unlock()

	// Vision modes run conservatively: tighter tolerance, harder
	// debounce, smaller integral limit and dead-zone.
	tolerance := l.cfg.PositionTolerance
	settleNeed := settleTicksFree
	integralLimit := freeIntegralLimit
	deadzone := l.cfg.Deadzone
	alpha := l.cfg.FilterAlpha
	if useVision {
		tolerance = l.cfg.DockingTolerance
		settleNeed = settleTicksVision
		integralLimit = visionIntegralLimit
		deadzone = l.cfg.VisionDeadzone
		alpha = l.cfg.DockingAlpha
	}

	pid := NewPID(l.cfg.Gains, integralLimit)
	filter := NewLowPass(alpha)
	dt := moveTickPeriod.Seconds()

	var faults faultCounter
	settled := 0
	ticks := 0

	for {
		start := time.Now()

		if cancel.Load() {
			return l.aborted(mode, "cancelled")
		}

		_, ok := l.updateAngle(filter, dt)
		if faults.note(ok) {
			return l.aborted(mode, "persistent gyro failure")
		}

		angle := l.CurrentAngle()
		errDeg := Wrap(target - angle)

		finalErr := errDeg
		if useVision && l.vision != nil {
			if obs, obsOK := l.vision.Latest(); obsOK {
				finalErr = Fuse(errDeg, obs)
			}
		}

		if abs(finalErr) < tolerance {
			settled++
			if settled >= settleNeed {
				log.Info("target reached", "mode", string(mode), "angle", angle, "target", target)
				return ModeResult{Mode: mode, Reached: true, FinalAngle: angle}
			}
		} else {
			settled = 0
		}

		output := pid.Step(finalErr, dt)
		cmd := ShapeCommand(output, deadzone, maxSpeed)
		if useVision {
			cmd = cmd.TaperNearTarget(abs(finalErr))
		}
		l.setCommand(cmd)

		ticks++
		if ticks%50 == 0 || abs(errDeg) > 10 && ticks%10 == 0 {
			log.Debug("move progress",
				"angle", angle, "target", target, "error", finalErr, "output", output)
		}

		sleepRemainder(start, moveTickPeriod)
	}
}
