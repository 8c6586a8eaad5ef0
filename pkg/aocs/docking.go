package aocs

import (
	"sync/atomic"
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// Vision data older than this cannot drive a docking decision; the
// supervisor waits for a fresh observation instead. Looser than the
// fusion threshold because a correction decision tolerates more latency
// than a per-tick blend.
const dockingStaleAfter = 2 * time.Second

// DockingResult is the terminal outcome of a docking attempt.
type DockingResult struct {
	Success     bool   `json:"success"`
	Corrections int    `json:"corrections"`
	Reason      string `json:"reason,omitempty"`
}

// DockingSupervisor sits above the control loop and issues bounded
// vision-driven correction maneuvers until the marker is aligned or the
// correction budget is exhausted.
type DockingSupervisor struct {
	loop   *Loop
	vision ObservationSource
	cancel atomic.Bool

	// SettleDelay is how long to wait after each correction before the
	// next vision read is trusted. RetryDelay paces the wait for a fresh
	// detection. Both exposed for bench runs with simulated plants.
	SettleDelay time.Duration
	RetryDelay  time.Duration
}

// NewDockingSupervisor creates a supervisor over the given loop and
// vision source.
func NewDockingSupervisor(loop *Loop, src ObservationSource) *DockingSupervisor {
	return &DockingSupervisor{
		loop:        loop,
		vision:      src,
		SettleDelay: 500 * time.Millisecond,
		RetryDelay:  100 * time.Millisecond,
	}
}

// Stop cancels an in-progress docking attempt, including any correction
// maneuver currently running on the loop.
func (d *DockingSupervisor) Stop() {
	d.cancel.Store(true)
	d.loop.Stop()
}

// Dock runs the docking procedure: wait for fresh vision, check
// alignment, and issue up to maxCorrections under-corrected maneuvers.
// Success requires the vision angle error inside the docking tolerance
// and the marker distance inside the closing threshold.
func (d *DockingSupervisor) Dock(maxCorrections int) DockingResult {
	d.cancel.Store(false)
	d.loop.setDocking(true)
	defer d.loop.setDocking(false)

	cfg := d.loop.Config()
	log.Info("docking started", "max_corrections", maxCorrections)

	corrections := 0
	for corrections < maxCorrections {
		if d.cancel.Load() {
			return DockingResult{Corrections: corrections, Reason: "cancelled"}
		}

		obs, ok := d.vision.Latest()
		if !ok || !obs.Detected {
			log.Debug("waiting for marker detection")
			time.Sleep(d.RetryDelay)
			continue
		}
		if obs.Age > dockingStaleAfter {
			log.Warn("vision data too old, waiting for update", "age", obs.Age)
			time.Sleep(d.RetryDelay)
			continue
		}

		log.Info("docking correction check",
			"correction", corrections+1, "angle_error", obs.AngleError, "distance", obs.Distance)

		if abs(obs.AngleError) < cfg.DockingTolerance && obs.Distance < cfg.DockingDistance {
			log.Info("docking successful, target aligned", "corrections", corrections)
			return DockingResult{Success: true, Corrections: corrections}
		}

		if abs(obs.AngleError) >= cfg.DockingTolerance {
			// Under-correct to damp overshoot between vision updates.
			correction := obs.AngleError * cfg.CorrectionGain
			log.Debug("issuing correction", "degrees", correction)

			res := d.loop.MoveToVisionAssisted(d.loop.CurrentAngle()+correction, cfg.DockingMaxSpeed)
			if res.Aborted {
				return DockingResult{Corrections: corrections, Reason: res.Reason}
			}
			corrections++
			time.Sleep(d.SettleDelay)
		} else {
			// Angle aligned; hold position while the distance closes.
			log.Debug("angle aligned, monitoring distance", "distance", obs.Distance)
			time.Sleep(d.RetryDelay)
		}
	}

	log.Error("docking failed, correction budget exhausted", "corrections", corrections)
	return DockingResult{Corrections: corrections, Reason: "max corrections reached"}
}
