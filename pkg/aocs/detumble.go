package aocs

import (
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// Detumble regulates the filtered angular rate toward zero. It is a
// continuous regulation mode, not a point-to-point move: there is no
// settle check, and it runs until the stop condition reports true or the
// mode is cancelled. A nil stopCondition runs until cancellation.
//
// PID and filter state are reset on entry like every other mode.
func (l *Loop) Detumble(stopCondition func() bool) ModeResult {
	cancel := l.begin(ModeDetumbling)
	defer l.finish(ModeDetumbling)

	pid := NewPID(l.cfg.Gains, freeIntegralLimit)
	filter := NewLowPass(l.cfg.FilterAlpha)
	dt := detumbleTickPeriod.Seconds()

	var faults faultCounter
	ticks := 0

	for {
		start := time.Now()

		if cancel.Load() {
			return l.aborted(ModeDetumbling, "cancelled")
		}
		if stopCondition != nil && stopCondition() {
			log.Info("detumbling stop condition met", "rate", filter.Value())
			return ModeResult{Mode: ModeDetumbling, Reached: true, FinalAngle: l.CurrentAngle()}
		}

		raw, ok := l.readRate()
		if faults.note(ok) {
			return l.aborted(ModeDetumbling, "persistent gyro failure")
		}
		rate := filter.Update(raw)

		l.mu.Lock()
		l.filteredRate = rate
		l.mu.Unlock()

		// Desired angular velocity is zero.
		output := pid.Step(0-rate, dt)
		cmd := ShapeCommand(output, l.cfg.Deadzone, 100)
		l.setCommand(cmd)

		if ticks%50 == 0 {
			log.Debug("detumbling", "rate", rate, "output", output, "speed", cmd.Speed)
		}
		ticks++

		sleepRemainder(start, detumbleTickPeriod)
	}
}
