package aocs

import (
	"time"

	"github.com/astraios/go-aocs/pkg/vision"
)

// Observations older than this contribute nothing to the fused error.
const fusionStaleAfter = 500 * time.Millisecond

// Error magnitude at which vision fully dominates the blend.
const fusionFullWeightDeg = 10.0

// Fuse blends the gyro-derived angle error with an independent
// vision-derived one using a confidence weight. Near the target the gyro
// estimate is already trustworthy; far from it the gyro may have drifted,
// so vision dominates. Undetected or stale observations are ignored.
//
// This is a heuristic blend, not a Kalman filter.
func Fuse(gyroError float64, obs vision.Observation) float64 {
	if !obs.Detected || obs.Age > fusionStaleAfter {
		return gyroError
	}
	weight := clamp(abs(gyroError)/fusionFullWeightDeg, 0, 1)
	return weight*obs.AngleError + (1-weight)*gyroError
}
