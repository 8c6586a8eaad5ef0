package hardware

import (
	"math/rand"
	"sync"

	"github.com/astraios/go-aocs/pkg/aocs"
)

// SimPlant is a simulated single-axis platform for bench runs and tests.
// The commanded duty cycle maps to angular rate through RateScale with an
// optional first-order lag, and reads can carry gaussian noise and a
// fixed bias. Implements both aocs.RateSensor and aocs.Motor.
type SimPlant struct {
	mu sync.Mutex

	dir   int
	speed float64
	rate  float64 // current deg/s

	// RateScale converts duty-cycle percent to deg/s (default 1.0).
	// Lag in (0,1] is the fraction of the commanded rate adopted per
	// read; 1 means the plant responds instantly.
	RateScale float64
	Lag       float64
	NoiseStd  float64
	Bias      float64
}

// NewSimPlant creates an instantly-responding noise-free plant.
func NewSimPlant() *SimPlant {
	return &SimPlant{RateScale: 1.0, Lag: 1.0}
}

// ReadRate advances the plant one step and returns the sensed rate.
func (p *SimPlant) ReadRate() (aocs.RateReading, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	target := float64(p.dir) * p.speed * p.RateScale
	p.rate += (target - p.rate) * p.Lag

	z := p.rate + p.Bias
	if p.NoiseStd > 0 {
		z += rand.NormFloat64() * p.NoiseStd
	}
	return aocs.RateReading{Z: z}, nil
}

// SetDirection implements aocs.Motor.
func (p *SimPlant) SetDirection(dir int) error {
	p.mu.Lock()
	p.dir = dir
	p.mu.Unlock()
	return nil
}

// SetSpeed implements aocs.Motor.
func (p *SimPlant) SetSpeed(pct float64) error {
	p.mu.Lock()
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	p.speed = pct
	p.mu.Unlock()
	return nil
}

// Stop implements aocs.Motor.
func (p *SimPlant) Stop() error {
	p.mu.Lock()
	p.dir = 0
	p.speed = 0
	p.rate = 0
	p.mu.Unlock()
	return nil
}

// Rate returns the current true angular rate, for assertions.
func (p *SimPlant) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}
