package aocs

// Filter applies one step of a single-pole complementary filter.
// alpha in (0,1): closer to 1 trusts history, closer to 0 trusts the
// new sample.
func Filter(previous, raw, alpha float64) float64 {
	return alpha*previous + (1-alpha)*raw
}

// LowPass holds complementary-filter state for one mode invocation.
// Reset at mode entry; never shared across maneuvers.
type LowPass struct {
	alpha float64
	value float64
}

// NewLowPass creates a filter with the given smoothing factor.
func NewLowPass(alpha float64) *LowPass {
	return &LowPass{alpha: alpha}
}

// Update feeds one raw sample and returns the new filtered value.
func (f *LowPass) Update(raw float64) float64 {
	f.value = Filter(f.value, raw, f.alpha)
	return f.value
}

// Value returns the current filtered value.
func (f *LowPass) Value() float64 {
	return f.value
}

// Reset clears the filter state.
func (f *LowPass) Reset() {
	f.value = 0
}
