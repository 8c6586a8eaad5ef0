// Command aocs-sim runs a closed-loop maneuver against the simulated
// plant and prints the trajectory. Useful for gain tuning without
// hardware on the bench.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/astraios/go-aocs/internal/log"
	"github.com/astraios/go-aocs/pkg/aocs"
	"github.com/astraios/go-aocs/pkg/hardware"
)

func main() {
	target := flag.Float64("target", 45, "Target angle in degrees")
	maxSpeed := flag.Float64("max-speed", 50, "Maximum duty cycle percent")
	noise := flag.Float64("noise", 0.5, "Gyro noise standard deviation in deg/s")
	bias := flag.Float64("bias", 0.3, "Injected gyro bias in deg/s")
	calibrate := flag.Bool("calibrate", true, "Calibrate before the maneuver")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	plant := hardware.NewSimPlant()
	plant.NoiseStd = *noise
	plant.Bias = *bias
	plant.Lag = 0.3

	cfg := aocs.DefaultConfig()
	loop := aocs.NewLoop(plant, plant, cfg)

	fmt.Printf("aocs-sim: target=%.1f max_speed=%.0f noise=%.2f bias=%.2f\n",
		*target, *maxSpeed, *noise, *bias)

	if *calibrate {
		b, err := loop.Calibrate(100)
		if err != nil {
			fmt.Printf("calibration failed: %v\n", err)
			return
		}
		fmt.Printf("calibrated bias: %.3f deg/s (injected %.3f)\n", b, *bias)
	}

	done := make(chan aocs.ModeResult, 1)
	start := time.Now()
	go func() {
		done <- loop.MoveTo(*target, *maxSpeed)
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case res := <-done:
			st := loop.Status()
			fmt.Printf("\ndone in %.2fs: reached=%v final=%.2f° (target %.1f°)\n",
				time.Since(start).Seconds(), res.Reached, res.FinalAngle, *target)
			fmt.Printf("final rate: %.3f deg/s, bias estimate: %.3f deg/s\n",
				st.Rate, st.GyroBias)
			return
		case <-ticker.C:
			st := loop.Status()
			fmt.Printf("t=%5.1fs angle=%7.2f° rate=%6.2f deg/s\n",
				time.Since(start).Seconds(), st.CurrentAngle, st.Rate)
		}
	}
}
