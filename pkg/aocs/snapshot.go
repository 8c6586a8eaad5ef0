package aocs

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// Snapshot is the minimal persisted record written after a successful
// calibration and reference initialisation, and reloaded at the next
// start-up to seed the gyro bias.
type Snapshot struct {
	Timestamp    float64      `json:"timestamp"` // unix seconds
	InitialAngle float64      `json:"initial_angle"`
	GyroBias     float64      `json:"gyro_bias"`
	Status       SystemStatus `json:"status"`
}

// SaveSnapshot writes the current bias, angle and status to path.
func (l *Loop) SaveSnapshot(path string) error {
	l.mu.RLock()
	snap := Snapshot{
		Timestamp:    float64(time.Now().UnixNano()) / 1e9,
		InitialAngle: l.currentAngle,
		GyroBias:     l.bias,
		Status:       l.system,
	}
	l.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	log.Info("snapshot saved", "path", path, "bias", snap.GyroBias)
	return nil
}

// LoadSnapshot seeds the gyro bias from a persisted snapshot. A missing
// or corrupt file is non-fatal: the bias defaults to zero, a warning is
// logged, and the error is returned for callers that care.
func (l *Loop) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		l.SetBias(0)
		log.Warn("could not load snapshot, bias defaults to zero", "path", path, "err", err)
		return fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		l.SetBias(0)
		log.Warn("corrupt snapshot, bias defaults to zero", "path", path, "err", err)
		return fmt.Errorf("parse snapshot %s: %w", path, err)
	}

	l.SetBias(snap.GyroBias)
	log.Info("snapshot loaded", "path", path, "bias", snap.GyroBias)
	return nil
}
