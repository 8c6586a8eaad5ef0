// Command aocsd is the AOCS flight daemon: it owns the hardware, runs
// the attitude control loop, listens for vision observations and serves
// the command/telemetry API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/astraios/go-aocs/internal/config"
	"github.com/astraios/go-aocs/internal/log"
	"github.com/astraios/go-aocs/pkg/aocs"
	"github.com/astraios/go-aocs/pkg/hardware"
	"github.com/astraios/go-aocs/pkg/telemetry"
	"github.com/astraios/go-aocs/pkg/vision"
)

func main() {
	configPath := flag.String("config", "constants.json", "Path to constants file")
	sim := flag.Bool("sim", false, "Use the simulated plant instead of serial hardware")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)

	loopCfg := aocs.DefaultConfig()
	loopCfg.Gains = aocs.Gains(cfg.PID)
	loopCfg.FilterAlpha = cfg.Ctl.FilterAlpha
	loopCfg.DockingAlpha = cfg.Ctl.DockingAlpha
	loopCfg.PositionTolerance = cfg.Ctl.PositionTolerance
	loopCfg.DockingTolerance = cfg.Ctl.DockingTolerance
	loopCfg.Deadzone = cfg.Ctl.Deadzone
	loopCfg.DockingMaxSpeed = cfg.Ctl.DockingMaxSpeed
	loopCfg.DockingDistance = cfg.Ctl.DockingDistance
	loopCfg.CorrectionGain = cfg.Ctl.CorrectionGain

	// Hardware setup failure is fatal; there is no retry loop here.
	var sensor aocs.RateSensor
	var motor aocs.Motor
	if *sim {
		plant := hardware.NewSimPlant()
		sensor, motor = plant, plant
		log.Info("using simulated plant")
	} else {
		bridge, err := hardware.OpenSerialBridge(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			log.Error("hardware setup failed", "err", err)
			os.Exit(1)
		}
		defer bridge.Close()
		sensor, motor = bridge, bridge
		log.Info("serial bridge open", "port", cfg.SerialPort)
	}

	loop := aocs.NewLoop(sensor, motor, loopCfg)
	if err := loop.LoadSnapshot(cfg.SnapshotPath); err != nil {
		log.Warn("starting uncalibrated", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := vision.NewFeed()
	loop.SetVision(feed)
	listener := vision.NewListener(":"+cfg.VisionPort, feed)
	go func() {
		if err := listener.Run(ctx); err != nil {
			log.Error("vision listener failed", "err", err)
		}
	}()

	dock := aocs.NewDockingSupervisor(loop, feed)
	server := telemetry.NewServer(cfg.HTTPPort, loop, dock, cfg.SnapshotPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		dock.Stop()
		loop.Stop()
		cancel()
		if err := server.Shutdown(); err != nil {
			log.Warn("server shutdown", "err", err)
		}
	}()

	if err := server.Start(); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
