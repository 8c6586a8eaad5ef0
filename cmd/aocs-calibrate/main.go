// Command aocs-calibrate runs the health check, gyro calibration and
// reference initialisation on real hardware, then persists the snapshot
// that seeds later control sessions.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/astraios/go-aocs/internal/config"
	"github.com/astraios/go-aocs/internal/log"
	"github.com/astraios/go-aocs/pkg/aocs"
	"github.com/astraios/go-aocs/pkg/hardware"
)

func main() {
	configPath := flag.String("config", "constants.json", "Path to constants file")
	samples := flag.Int("samples", 100, "Calibration sample count")
	skipHealth := flag.Bool("skip-health", false, "Skip the motor/gyro health check")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	bridge, err := hardware.OpenSerialBridge(cfg.SerialPort, cfg.SerialBaud)
	if err != nil {
		log.Error("hardware setup failed", "err", err)
		os.Exit(1)
	}
	defer bridge.Close()

	loopCfg := aocs.DefaultConfig()
	loopCfg.Gains = aocs.Gains(cfg.PID)
	loop := aocs.NewLoop(bridge, bridge, loopCfg)

	fmt.Println("keep the platform stationary during calibration")

	if !*skipHealth {
		if loop.HealthCheck() == aocs.StatusFailed {
			fmt.Println("health check failed")
			os.Exit(1)
		}
	} else {
		if _, err := loop.Calibrate(*samples); err != nil {
			fmt.Printf("calibration failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := loop.InitialiseReference(); err != nil {
		fmt.Printf("reference initialisation failed: %v\n", err)
		os.Exit(1)
	}

	if err := loop.SaveSnapshot(cfg.SnapshotPath); err != nil {
		fmt.Printf("snapshot save failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("calibration complete, bias %.3f deg/s, snapshot at %s\n",
		loop.Bias(), cfg.SnapshotPath)
}
