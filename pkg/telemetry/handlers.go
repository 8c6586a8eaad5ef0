package telemetry

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/astraios/go-aocs/internal/log"
	"github.com/astraios/go-aocs/pkg/aocs"
	"github.com/astraios/go-aocs/pkg/protocol"
)

// Command defaults, matching the interactive console of the original
// ground procedure.
const (
	defaultMoveSpeed   = 50.0
	defaultVisionSpeed = 40.0
	defaultRotateRate  = 30.0
	defaultCorrections = 50
	defaultCalSamples  = 100
)

// handleStatus returns the current loop state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(statusToProto(s.loop.Status()))
}

// handleHost returns flight-computer host health.
func (s *Server) handleHost(c *fiber.Ctx) error {
	host, err := readHostStatus()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(host)
}

// moveRequest is the body for /api/move and /api/move/vision.
type moveRequest struct {
	Angle    float64  `json:"angle"`
	MaxSpeed *float64 `json:"max_speed"`
}

// handleMove starts a PID move to an absolute angle.
func (s *Server) handleMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid move request body")
	}
	speed := defaultMoveSpeed
	if req.MaxSpeed != nil {
		speed = *req.MaxSpeed
	}
	if err := validateMove(req.Angle, speed); err != "" {
		return badRequest(c, err)
	}
	if s.loop.Status().Docking {
		return busy(c, "docking in progress, stop it first")
	}

	return s.accept(c, "move", func() protocol.ResultData {
		res := s.loop.MoveTo(req.Angle, speed)
		return resultToProto("move", res)
	})
}

// handleMoveVision starts a vision-assisted move.
func (s *Server) handleMoveVision(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid move request body")
	}
	speed := defaultVisionSpeed
	if req.MaxSpeed != nil {
		speed = *req.MaxSpeed
	}
	if err := validateMove(req.Angle, speed); err != "" {
		return badRequest(c, err)
	}
	if s.loop.Status().Docking {
		return busy(c, "docking in progress, stop it first")
	}

	return s.accept(c, "move_vision", func() protocol.ResultData {
		res := s.loop.MoveToVisionAssisted(req.Angle, speed)
		return resultToProto("move_vision", res)
	})
}

// rotateRequest is the body for /api/rotate.
type rotateRequest struct {
	Rate *float64 `json:"rate"` // deg/s, sign selects direction
}

// handleRotate starts a full 360 rotation at a target rate.
func (s *Server) handleRotate(c *fiber.Ctx) error {
	var req rotateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid rotate request body")
	}
	rate := defaultRotateRate
	if req.Rate != nil {
		rate = *req.Rate
	}
	if rate == 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return badRequest(c, "rate must be a non-zero finite value")
	}
	if s.loop.Status().Docking {
		return busy(c, "docking in progress, stop it first")
	}

	return s.accept(c, "rotate360", func() protocol.ResultData {
		res := s.loop.Rotate360(rate)
		return resultToProto("rotate360", res)
	})
}

// handleDetumble starts rate regulation; it runs until /api/stop.
func (s *Server) handleDetumble(c *fiber.Ctx) error {
	if s.loop.Status().Docking {
		return busy(c, "docking in progress, stop it first")
	}
	return s.accept(c, "detumble", func() protocol.ResultData {
		res := s.loop.Detumble(nil)
		return resultToProto("detumble", res)
	})
}

// dockRequest is the body for /api/dock.
type dockRequest struct {
	MaxCorrections *int `json:"max_corrections"`
}

// handleDock starts the docking procedure.
func (s *Server) handleDock(c *fiber.Ctx) error {
	var req dockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid dock request body")
	}
	maxCorrections := defaultCorrections
	if req.MaxCorrections != nil {
		maxCorrections = *req.MaxCorrections
	}
	if maxCorrections <= 0 {
		return badRequest(c, "max_corrections must be positive")
	}
	if s.loop.Status().Docking {
		return busy(c, "docking already in progress")
	}

	return s.accept(c, "dock", func() protocol.ResultData {
		res := s.dock.Dock(maxCorrections)
		return protocol.ResultData{
			Command:    "dock",
			Success:    res.Success,
			Reached:    res.Success,
			FinalAngle: s.loop.CurrentAngle(),
			Aborted:    !res.Success && res.Reason == "cancelled",
			Reason:     res.Reason,
		}
	})
}

// handleStop cancels whatever is running. Observed within one tick.
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.dock.Stop()
	s.loop.Stop()
	log.Info("stop requested")
	return c.JSON(fiber.Map{"stopped": true})
}

// handleHealth runs the startup health-check sequence.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	if s.loop.Moving() || s.loop.Status().Docking {
		return busy(c, "cannot health-check while a maneuver is active")
	}
	return s.accept(c, "health", func() protocol.ResultData {
		status := s.loop.HealthCheck()
		return protocol.ResultData{
			Command: "health",
			Success: status != aocs.StatusFailed,
			Reason:  status.String(),
		}
	})
}

// calibrateRequest is the body for /api/calibrate.
type calibrateRequest struct {
	Samples *int `json:"samples"`
}

// handleCalibrate calibrates the gyro bias, initialises the reference
// position and persists the snapshot.
func (s *Server) handleCalibrate(c *fiber.Ctx) error {
	var req calibrateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid calibrate request body")
	}
	samples := defaultCalSamples
	if req.Samples != nil {
		samples = *req.Samples
	}
	if samples <= 0 {
		return badRequest(c, "samples must be positive")
	}
	if s.loop.Moving() || s.loop.Status().Docking {
		return busy(c, "cannot calibrate while a maneuver is active")
	}

	return s.accept(c, "calibrate", func() protocol.ResultData {
		if _, err := s.loop.Calibrate(samples); err != nil {
			return protocol.ResultData{Command: "calibrate", Reason: err.Error()}
		}
		if err := s.loop.InitialiseReference(); err != nil {
			return protocol.ResultData{Command: "calibrate", Reason: err.Error()}
		}
		if err := s.loop.SaveSnapshot(s.snapshotPath); err != nil {
			log.Warn("snapshot save failed", "err", err)
		}
		return protocol.ResultData{Command: "calibrate", Success: true}
	})
}

// accept runs a blocking command asynchronously, returning 202 with the
// command id. The terminal result is broadcast on the telemetry feed.
func (s *Server) accept(c *fiber.Ctx, command string, run func() protocol.ResultData) error {
	id := uuid.NewString()
	go func() {
		result := run()
		result.ID = id
		log.Info("command finished",
			"command", command, "id", id, "success", result.Success, "reason", result.Reason)
		if msg, err := protocol.NewResultMessage(result); err == nil {
			s.broadcastMessage(msg)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"accepted": true,
		"command":  command,
		"id":       id,
	})
}

// validateMove checks a move request; returns an error string or "".
func validateMove(angle, speed float64) string {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return "angle must be finite"
	}
	if speed <= 0 || speed > 100 {
		return "max_speed must be in (0, 100]"
	}
	return ""
}

// resultToProto converts a mode result to its wire form.
func resultToProto(command string, res aocs.ModeResult) protocol.ResultData {
	return protocol.ResultData{
		Command:    command,
		Reached:    res.Reached,
		Success:    res.Reached,
		FinalAngle: res.FinalAngle,
		Aborted:    res.Aborted,
		Reason:     res.Reason,
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func busy(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msg})
}
