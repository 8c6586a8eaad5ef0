package telemetry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/astraios/go-aocs/pkg/aocs"
	"github.com/astraios/go-aocs/pkg/hardware"
	"github.com/astraios/go-aocs/pkg/protocol"
	"github.com/astraios/go-aocs/pkg/vision"
)

func newTestServer(t *testing.T) (*Server, *vision.Feed) {
	t.Helper()
	plant := hardware.NewSimPlant()
	feed := vision.NewFeed()

	loop := aocs.NewLoop(plant, plant, aocs.DefaultConfig())
	loop.SetVision(feed)
	dock := aocs.NewDockingSupervisor(loop, feed)
	dock.RetryDelay = time.Millisecond

	s := NewServer("0", loop, dock, filepath.Join(t.TempDir(), "aocs_state.json"))
	t.Cleanup(func() {
		dock.Stop()
		loop.Stop()
		// Let background command goroutines observe cancellation.
		deadline := time.Now().Add(time.Second)
		for loop.Moving() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
	})
	return s, feed
}

func postJSON(t *testing.T, s *Server, path string, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, 2000)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestServer_Status(t *testing.T) {
	s, feed := newTestServer(t)
	feed.Publish(1.5, 12, true)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	resp, err := s.app.Test(req, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code: got %d, want 200", resp.StatusCode)
	}

	var data protocol.StatusData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Moving || data.Docking {
		t.Errorf("idle loop reported moving=%v docking=%v", data.Moving, data.Docking)
	}
	if data.Vision == nil || data.Vision.AngleError != 1.5 {
		t.Errorf("vision observation missing from status: %+v", data.Vision)
	}
}

func TestServer_MoveAccepted(t *testing.T) {
	s, _ := newTestServer(t)

	resp := postJSON(t, s, "/api/move", `{"angle": 45, "max_speed": 50}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status code: got %d, want 202", resp.StatusCode)
	}

	var body struct {
		Accepted bool   `json:"accepted"`
		Command  string `json:"command"`
		ID       string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Accepted || body.Command != "move" || body.ID == "" {
		t.Errorf("accept body: %+v", body)
	}
}

func TestServer_MoveValidation(t *testing.T) {
	s, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"angle": `},
		{"speed above cap", `{"angle": 10, "max_speed": 150}`},
		{"zero speed", `{"angle": 10, "max_speed": 0}`},
		{"negative speed", `{"angle": 10, "max_speed": -5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, s, "/api/move", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status code: got %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestServer_RotateValidation(t *testing.T) {
	s, _ := newTestServer(t)

	resp := postJSON(t, s, "/api/rotate", `{"rate": 0}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero rate: got %d, want 400", resp.StatusCode)
	}
}

func TestServer_DockValidation(t *testing.T) {
	s, _ := newTestServer(t)

	resp := postJSON(t, s, "/api/dock", `{"max_corrections": -1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative corrections: got %d, want 400", resp.StatusCode)
	}
}

func TestServer_MoveRejectedWhileDocking(t *testing.T) {
	s, _ := newTestServer(t)

	// Start docking with no marker published: it waits for detection,
	// holding the docking flag.
	resp := postJSON(t, s, "/api/dock", `{}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("dock accept: got %d, want 202", resp.StatusCode)
	}

	deadline := time.Now().Add(time.Second)
	for !s.loop.Status().Docking {
		if time.Now().After(deadline) {
			t.Fatal("docking flag never set")
		}
		time.Sleep(time.Millisecond)
	}

	resp = postJSON(t, s, "/api/move", `{"angle": 10}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("move during docking: got %d, want 409", resp.StatusCode)
	}

	resp = postJSON(t, s, "/api/dock", `{}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second dock: got %d, want 409", resp.StatusCode)
	}
}

func TestServer_Stop(t *testing.T) {
	s, _ := newTestServer(t)

	resp := postJSON(t, s, "/api/move", `{"angle": 170, "max_speed": 10}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("move accept: got %d, want 202", resp.StatusCode)
	}

	deadline := time.Now().Add(time.Second)
	for !s.loop.Moving() {
		if time.Now().After(deadline) {
			t.Fatal("move never started")
		}
		time.Sleep(time.Millisecond)
	}

	resp = postJSON(t, s, "/api/stop", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop: got %d, want 200", resp.StatusCode)
	}

	deadline = time.Now().Add(time.Second)
	for s.loop.Moving() {
		if time.Now().After(deadline) {
			t.Fatal("move did not stop")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestServer_WebsocketRouteRequiresUpgrade(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ws/telemetry", nil)
	resp, err := s.app.Test(req, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("plain GET on ws route: got %d, want 426", resp.StatusCode)
	}
}

func TestStatusToProto(t *testing.T) {
	st := aocs.Status{
		CurrentAngle: 10,
		TargetAngle:  20,
		System:       aocs.StatusInitialised,
		Vision:       &vision.Observation{AngleError: 3, Age: 250 * time.Millisecond},
	}
	data := statusToProto(st)
	if data.System != 1 {
		t.Errorf("system: got %d, want 1", data.System)
	}
	if data.Vision == nil || data.Vision.AgeMs != 250 {
		t.Errorf("vision age: %+v", data.Vision)
	}
}
