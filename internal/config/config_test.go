package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.HTTPPort != DefaultHTTPPort {
		t.Errorf("http port: got %q, want %q", cfg.HTTPPort, DefaultHTTPPort)
	}
	if cfg.PID.Kp != 1.2 {
		t.Errorf("kp: got %v, want 1.2", cfg.PID.Kp)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constants.json")
	body := `{"http_port": "9000", "pid": {"kp": 2.4, "ki": 0.05, "kd": 0.15}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPPort != "9000" {
		t.Errorf("http port: got %q, want 9000", cfg.HTTPPort)
	}
	if cfg.PID.Kp != 2.4 {
		t.Errorf("kp: got %v, want 2.4", cfg.PID.Kp)
	}
	// Untouched fields keep their defaults.
	if cfg.SerialBaud != DefaultSerialBaud {
		t.Errorf("baud: got %v, want %v", cfg.SerialBaud, DefaultSerialBaud)
	}
	if cfg.Ctl.CorrectionGain != 0.8 {
		t.Errorf("correction gain: got %v, want 0.8", cfg.Ctl.CorrectionGain)
	}
}

func TestLoad_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "constants.json")
	if err := os.WriteFile(path, []byte("{bad"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for corrupt config")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AOCS_HTTP_PORT", "7070")
	t.Setenv("AOCS_SNAPSHOT", "/var/lib/aocs/state.json")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPPort != "7070" {
		t.Errorf("http port: got %q, want 7070", cfg.HTTPPort)
	}
	if cfg.SnapshotPath != "/var/lib/aocs/state.json" {
		t.Errorf("snapshot path: got %q", cfg.SnapshotPath)
	}
}
