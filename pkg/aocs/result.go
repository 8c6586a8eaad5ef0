package aocs

// Mode identifies a control-loop mode.
type Mode string

const (
	ModeIdle         Mode = "idle"
	ModeDetumbling   Mode = "detumbling"
	ModeRotating360  Mode = "rotate360"
	ModeMovingTo     Mode = "move"
	ModeMovingVision Mode = "move_vision"
)

// SystemStatus is the coarse health state of the AOCS.
type SystemStatus int

const (
	StatusFailed      SystemStatus = -1
	StatusReady       SystemStatus = 0
	StatusInitialised SystemStatus = 1
)

// String implements fmt.Stringer.
func (s SystemStatus) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusInitialised:
		return "initialised"
	default:
		return "ready"
	}
}

// ModeResult is the terminal outcome of one mode invocation.
type ModeResult struct {
	Mode       Mode    `json:"mode"`
	Reached    bool    `json:"reached_target"`
	FinalAngle float64 `json:"final_angle"`
	Aborted    bool    `json:"aborted,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// aborted builds an aborted result for the given mode.
func (l *Loop) aborted(mode Mode, reason string) ModeResult {
	return ModeResult{
		Mode:       mode,
		FinalAngle: l.CurrentAngle(),
		Aborted:    true,
		Reason:     reason,
	}
}
