package telemetry

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/astraios/go-aocs/internal/log"
	"github.com/astraios/go-aocs/pkg/aocs"
	"github.com/astraios/go-aocs/pkg/protocol"
)

// Broadcast cadences.
const (
	statusPeriod = 200 * time.Millisecond // 5 Hz loop state
	hostPeriod   = 5 * time.Second
)

// Server is the command/telemetry server over one control loop and its
// docking supervisor.
type Server struct {
	app  *fiber.App
	port string

	loop *aocs.Loop
	dock *aocs.DockingSupervisor

	snapshotPath string

	hub  *Hub
	stop chan struct{}
}

// NewServer wires the REST and websocket surface over the given loop.
// snapshotPath is where a successful calibration persists its result.
func NewServer(port string, loop *aocs.Loop, dock *aocs.DockingSupervisor, snapshotPath string) *Server {
	s := &Server{
		port:         port,
		loop:         loop,
		dock:         dock,
		snapshotPath: snapshotPath,
		hub:          newHub("telemetry"),
		stop:         make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "AOCS Daemon",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/host", s.handleHost)
	api.Post("/detumble", s.handleDetumble)
	api.Post("/rotate", s.handleRotate)
	api.Post("/move", s.handleMove)
	api.Post("/move/vision", s.handleMoveVision)
	api.Post("/dock", s.handleDock)
	api.Post("/stop", s.handleStop)
	api.Post("/health", s.handleHealth)
	api.Post("/calibrate", s.handleCalibrate)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(s.handleTelemetryWS))

	s.app = app
	return s
}

// Start runs the hub, the periodic broadcasters and the HTTP listener.
// Blocks; call in a goroutine if needed.
func (s *Server) Start() error {
	go s.hub.Run()
	go s.broadcastLoop()

	log.Info("command server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the HTTP listener and the broadcasters.
func (s *Server) Shutdown() error {
	close(s.stop)
	return s.app.Shutdown()
}

// Hub exposes the telemetry hub, mainly for tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

// broadcastLoop pushes loop status at 5 Hz and host status every 5s.
func (s *Server) broadcastLoop() {
	statusTick := time.NewTicker(statusPeriod)
	hostTick := time.NewTicker(hostPeriod)
	defer statusTick.Stop()
	defer hostTick.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-statusTick.C:
			if s.hub.ClientCount() == 0 {
				continue
			}
			msg, err := protocol.NewStatusMessage(statusToProto(s.loop.Status()))
			if err == nil {
				s.broadcastMessage(msg)
			}
		case <-hostTick.C:
			if s.hub.ClientCount() == 0 {
				continue
			}
			host, err := readHostStatus()
			if err != nil {
				log.Debug("host status unavailable", "err", err)
				continue
			}
			msg, err := protocol.NewHostMessage(host)
			if err == nil {
				s.broadcastMessage(msg)
			}
		}
	}
}

// broadcastMessage encodes and fans out one protocol message.
func (s *Server) broadcastMessage(msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	s.hub.Broadcast(data)
}

// handleTelemetryWS serves one websocket subscriber.
func (s *Server) handleTelemetryWS(conn *websocket.Conn) {
	c := newClient(s.hub, conn)
	c.run()
}

// statusToProto converts a loop snapshot to its wire form.
func statusToProto(st aocs.Status) protocol.StatusData {
	data := protocol.StatusData{
		CurrentAngle: st.CurrentAngle,
		TargetAngle:  st.TargetAngle,
		Rate:         st.Rate,
		GyroBias:     st.GyroBias,
		Moving:       st.Moving,
		Docking:      st.Docking,
		System:       int(st.System),
	}
	if st.Vision != nil {
		data.Vision = &protocol.VisionData{
			AngleError: st.Vision.AngleError,
			Distance:   st.Vision.Distance,
			Detected:   st.Vision.Detected,
			AgeMs:      st.Vision.Age.Milliseconds(),
		}
	}
	return data
}
