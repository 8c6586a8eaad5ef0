package aocs

import (
	"sync"
	"testing"
	"time"

	"github.com/astraios/go-aocs/pkg/vision"
)

// stubVision serves a fixed observation, settable mid-test.
type stubVision struct {
	mu  sync.Mutex
	obs vision.Observation
	ok  bool
}

func (s *stubVision) set(obs vision.Observation) {
	s.mu.Lock()
	s.obs = obs
	s.ok = true
	s.mu.Unlock()
}

func (s *stubVision) Latest() (vision.Observation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.obs, s.ok
}

func newTestSupervisor(plant *benchPlant, src ObservationSource) (*DockingSupervisor, *Loop) {
	loop := NewLoop(plant, plant, benchConfig())
	loop.SetVision(src)
	d := NewDockingSupervisor(loop, src)
	d.SettleDelay = time.Millisecond
	d.RetryDelay = time.Millisecond
	return d, loop
}

func TestDock_AlreadyAligned(t *testing.T) {
	plant := newBenchPlant(1.0)
	src := &stubVision{}
	src.set(vision.Observation{AngleError: 0.5, Distance: 2.0, Detected: true})
	d, _ := newTestSupervisor(plant, src)

	res := d.Dock(3)

	if !res.Success {
		t.Fatalf("aligned target should dock immediately: %+v", res)
	}
	if res.Corrections != 0 {
		t.Errorf("corrections: got %d, want 0", res.Corrections)
	}
	if plant.commandCount() != 0 {
		t.Errorf("motor commanded %d times for an aligned target", plant.commandCount())
	}
}

func TestDock_ExhaustsCorrectionBudget(t *testing.T) {
	plant := newBenchPlant(3.0)
	src := &stubVision{}
	// The marker never moves: every correction leaves the same error.
	src.set(vision.Observation{AngleError: 10, Distance: 50, Detected: true})
	d, _ := newTestSupervisor(plant, src)

	res := d.Dock(5)

	if res.Success {
		t.Fatal("docking against an immovable error should fail")
	}
	if res.Corrections != 5 {
		t.Errorf("corrections: got %d, want 5", res.Corrections)
	}
	if res.Reason != "max corrections reached" {
		t.Errorf("reason: got %q", res.Reason)
	}
	if !plant.stopped() {
		t.Error("motor still running after failed docking")
	}
}

func TestDock_WaitsForDetectionUntilCancelled(t *testing.T) {
	plant := newBenchPlant(1.0)
	src := &stubVision{}
	src.set(vision.Observation{Detected: false})
	d, loop := newTestSupervisor(plant, src)

	done := make(chan DockingResult, 1)
	go func() { done <- d.Dock(1) }()

	time.Sleep(30 * time.Millisecond)
	if !loop.Status().Docking {
		t.Error("docking flag not set while waiting for detection")
	}
	d.Stop()

	select {
	case res := <-done:
		if res.Success || res.Reason != "cancelled" {
			t.Errorf("expected cancelled result, got %+v", res)
		}
		if res.Corrections != 0 {
			t.Errorf("corrections: got %d, want 0", res.Corrections)
		}
	case <-time.After(time.Second):
		t.Fatal("docking did not observe cancellation")
	}

	if plant.commandCount() != 0 {
		t.Error("motor commanded while no marker was detected")
	}
	if loop.Status().Docking {
		t.Error("docking flag still set after return")
	}
}

func TestDock_IgnoresStaleObservation(t *testing.T) {
	plant := newBenchPlant(1.0)
	src := &stubVision{}
	src.set(vision.Observation{AngleError: 10, Distance: 2, Detected: true, Age: 3 * time.Second})
	d, _ := newTestSupervisor(plant, src)

	done := make(chan DockingResult, 1)
	go func() { done <- d.Dock(3) }()

	time.Sleep(30 * time.Millisecond)
	d.Stop()
	res := <-done

	if res.Corrections != 0 {
		t.Errorf("stale vision drove %d corrections", res.Corrections)
	}
	if plant.commandCount() != 0 {
		t.Error("motor commanded on stale vision data")
	}
}

func TestDock_AngleAlignedDistanceOpen(t *testing.T) {
	plant := newBenchPlant(1.0)
	src := &stubVision{}
	// Angle inside tolerance but still far away: hold, no correction.
	src.set(vision.Observation{AngleError: 0.2, Distance: 40, Detected: true})
	d, _ := newTestSupervisor(plant, src)

	done := make(chan DockingResult, 1)
	go func() { done <- d.Dock(3) }()

	time.Sleep(30 * time.Millisecond)
	// The collaborator closes the gap; docking should now succeed.
	src.set(vision.Observation{AngleError: 0.2, Distance: 2, Detected: true})

	select {
	case res := <-done:
		if !res.Success {
			t.Fatalf("expected success once distance closed: %+v", res)
		}
		if res.Corrections != 0 {
			t.Errorf("corrections: got %d, want 0", res.Corrections)
		}
	case <-time.After(time.Second):
		t.Fatal("docking never completed after distance closed")
	}

	if plant.commandCount() != 0 {
		t.Error("motor commanded while holding an aligned angle")
	}
}
