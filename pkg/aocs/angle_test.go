package aocs

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestWrap(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"in range positive", 90, 90},
		{"in range negative", -90, -90},
		{"upper boundary stays", 180, 180},
		{"lower boundary wraps", -180, 180},
		{"just over", 181, -179},
		{"just under", -181, 179},
		{"full turn", 360, 0},
		{"negative full turn", -360, 0},
		{"multiple turns", 720 + 45, 45},
		{"multiple negative turns", -720 - 45, -45},
		{"one and a half turns", 540, 180},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Wrap(tc.in)
			if !floatEquals(got, tc.want) {
				t.Errorf("Wrap(%v): got %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestWrap_AlwaysInRange(t *testing.T) {
	for angle := -1000.0; angle <= 1000.0; angle += 7.3 {
		got := Wrap(angle)
		if got <= -180 || got > 180 {
			t.Fatalf("Wrap(%v) = %v, outside (-180, 180]", angle, got)
		}
	}
}

func TestWrap_Idempotent(t *testing.T) {
	for angle := -1000.0; angle <= 1000.0; angle += 13.7 {
		once := Wrap(angle)
		twice := Wrap(once)
		if !floatEquals(once, twice) {
			t.Fatalf("Wrap not idempotent at %v: %v then %v", angle, once, twice)
		}
	}
}

func TestIntegrate(t *testing.T) {
	// 10 deg/s for 20ms advances 0.2 degrees.
	got := Integrate(45, 10, 0.02)
	if !floatEquals(got, 45.2) {
		t.Errorf("got %v, want 45.2", got)
	}
}

func TestIntegrate_WrapsAtSeam(t *testing.T) {
	// Integrating across +180 lands on the negative side.
	got := Integrate(179.9, 10, 0.02)
	if !floatEquals(got, -179.9) {
		t.Errorf("got %v, want -179.9", got)
	}
}

func TestIntegrate_ZeroRateHoldsAngle(t *testing.T) {
	angle := 123.4
	for i := 0; i < 100; i++ {
		angle = Integrate(angle, 0, 0.02)
	}
	if !floatEquals(angle, 123.4) {
		t.Errorf("angle drifted to %v with zero rate", angle)
	}
}
