package aocs

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/astraios/go-aocs/internal/log"
	"github.com/astraios/go-aocs/pkg/vision"
)

// Loop is the attitude control loop. It owns the angle estimate and the
// single motor resource; one mode (detumble, rotate, move, vision move)
// runs at a time. Mode calls block until completion, cancellation or
// fault, and always stop the motor on the way out.
type Loop struct {
	sensor RateSensor
	motor  Motor
	vision ObservationSource
	cfg    Config

	mu           sync.RWMutex
	currentAngle float64
	targetAngle  float64
	filteredRate float64
	bias         float64
	system       SystemStatus
	moving       bool
	docking      bool

	// modeMu serializes mode invocations; active is the cancel flag of
	// the mode currently holding it. Cancellation is cooperative: the
	// flag is polled once per tick.
	modeMu sync.Mutex
	active atomic.Pointer[atomic.Bool]

	healthPulse time.Duration
}

// NewLoop creates a control loop over the given hardware.
func NewLoop(sensor RateSensor, motor Motor, cfg Config) *Loop {
	return &Loop{
		sensor:      sensor,
		motor:       motor,
		cfg:         cfg,
		healthPulse: 500 * time.Millisecond,
	}
}

// SetVision attaches the observation source used by vision-assisted modes.
func (l *Loop) SetVision(src ObservationSource) {
	l.vision = src
}

// Config returns the loop's control constants.
func (l *Loop) Config() Config {
	return l.cfg
}

// CurrentAngle returns the current wrapped angle estimate in degrees.
func (l *Loop) CurrentAngle() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentAngle
}

// Bias returns the gyro bias in deg/s.
func (l *Loop) Bias() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bias
}

// SetBias sets the gyro bias, normally from calibration or a snapshot.
func (l *Loop) SetBias(bias float64) {
	l.mu.Lock()
	l.bias = bias
	l.mu.Unlock()
}

// Status is a point-in-time snapshot of the loop state.
type Status struct {
	CurrentAngle float64             `json:"current_angle"`
	TargetAngle  float64             `json:"target_angle"`
	Rate         float64             `json:"rate"`
	GyroBias     float64             `json:"gyro_bias"`
	Moving       bool                `json:"moving"`
	Docking      bool                `json:"docking"`
	System       SystemStatus        `json:"status"`
	Vision       *vision.Observation `json:"vision,omitempty"`
}

// Status returns the current loop state. The vision snapshot, if any,
// carries its own age so consumers can judge staleness.
func (l *Loop) Status() Status {
	l.mu.RLock()
	s := Status{
		CurrentAngle: l.currentAngle,
		TargetAngle:  l.targetAngle,
		Rate:         l.filteredRate,
		GyroBias:     l.bias,
		Moving:       l.moving,
		Docking:      l.docking,
		System:       l.system,
	}
	l.mu.RUnlock()

	if l.vision != nil {
		if obs, ok := l.vision.Latest(); ok {
			s.Vision = &obs
		}
	}
	return s
}

// Stop requests cancellation of the active mode, if any. The request is
// observed within one tick period; the mode's cleanup stops the motor
// before its invocation returns.
func (l *Loop) Stop() {
	if c := l.active.Load(); c != nil {
		c.Store(true)
	}
}

// Moving reports whether a mode is currently active.
func (l *Loop) Moving() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.moving
}

// begin acquires the motor for a new mode invocation. Any active mode is
// cancelled first and its motor-stop cleanup is waited for. Filter state
// is reset here; PID state is reset by each mode constructing its own
// controller.
func (l *Loop) begin(mode Mode) *atomic.Bool {
	l.Stop()
	l.modeMu.Lock()

	cancel := new(atomic.Bool)
	l.active.Store(cancel)

	l.mu.Lock()
	l.moving = true
	l.filteredRate = 0
	l.mu.Unlock()

	log.Info("mode started", "mode", string(mode))
	return cancel
}

// finish releases the motor after a mode invocation. The motor is always
// stopped here, whatever the exit path was.
func (l *Loop) finish(mode Mode) {
	if err := l.motor.Stop(); err != nil {
		log.Error("motor stop failed on mode exit", "mode", string(mode), "err", err)
	}
	l.active.Store(nil)

	l.mu.Lock()
	l.moving = false
	l.mu.Unlock()

	log.Info("mode finished", "mode", string(mode), "angle", l.CurrentAngle())
	l.modeMu.Unlock()
}

// setDocking flags the docking super-state in status reports.
func (l *Loop) setDocking(on bool) {
	l.mu.Lock()
	l.docking = on
	l.mu.Unlock()
}

// setSystem records the coarse health state.
func (l *Loop) setSystem(s SystemStatus) {
	l.mu.Lock()
	l.system = s
	l.mu.Unlock()
}

// readRate reads one bias-corrected Z-axis sample. A failed read is
// degraded to zero so a transient sensor fault never crashes a tick.
func (l *Loop) readRate() (float64, bool) {
	r, err := l.sensor.ReadRate()
	if err != nil {
		log.Warn("gyro read failed, substituting zero rate", "err", err)
		return 0, false
	}
	l.mu.RLock()
	bias := l.bias
	l.mu.RUnlock()
	return r.Z - bias, true
}

// updateAngle runs the estimation half of one tick: read, filter,
// integrate. Returns the filtered rate and whether the read succeeded.
func (l *Loop) updateAngle(filter *LowPass, dt float64) (float64, bool) {
	raw, ok := l.readRate()
	filtered := filter.Update(raw)

	l.mu.Lock()
	l.filteredRate = filtered
	l.currentAngle = Integrate(l.currentAngle, filtered, dt)
	l.mu.Unlock()

	return filtered, ok
}

// setCommand applies a motor command, logging and skipping on actuator
// write failure. The loop continues; the next tick retries.
func (l *Loop) setCommand(cmd MotorCommand) {
	if err := applyCommand(l.motor, cmd); err != nil {
		log.Warn("motor command failed, skipping tick", "err", err)
	}
}

// faultCounter tracks consecutive sensor failures within one mode.
type faultCounter struct {
	consecutive int
}

// note records one read outcome and reports whether the failure has
// become persistent.
func (f *faultCounter) note(ok bool) bool {
	if ok {
		f.consecutive = 0
		return false
	}
	f.consecutive++
	return f.consecutive >= maxConsecutiveSensorFailures
}

// sleepRemainder sleeps out the rest of a fixed tick period, absorbing
// scheduling jitter so integration dt stays constant.
func sleepRemainder(start time.Time, period time.Duration) {
	if rem := period - time.Since(start); rem > 0 {
		time.Sleep(rem)
	}
}
