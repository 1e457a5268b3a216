package arena

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/logging"
)

// Server exposes a Hub over HTTP and websockets:
//
//	POST /debates           create a room
//	GET  /debates           list rooms
//	GET  /debates/:id       room transcript
//	GET  /ws/:id/:side      claim a side ("watch" to spectate), ?name=
type Server struct {
	app    *fiber.App
	hub    *Hub
	logger *logging.Logger
}

// NewServer builds the routes for hub.
func NewServer(hub *Hub, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Server{hub: hub, logger: logger.WithPhase("arena")}
	s.app = fiber.New(fiber.Config{
		AppName:               "podium arena",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Post("/debates", s.createDebate)
	s.app.Get("/debates", s.listDebates)
	s.app.Get("/debates/:id", s.getDebate)
	s.app.Get("/ws/:id/:side", s.upgrade, websocket.New(s.handleWebSocket))
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("arena listening", "address", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the listener and disconnects every room.
func (s *Server) Shutdown() error {
	s.hub.Close()
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

type createRequest struct {
	Topic  string `json:"topic"`
	Format string `json:"format"`
	Order  string `json:"order"`
	SideA  string `json:"side_a_name"`
	SideB  string `json:"side_b_name"`
}

type roomResponse struct {
	ID         string            `json:"id"`
	Transcript debate.Transcript `json:"transcript"`
	Seats      map[string]string `json:"seats"`
}

func (s *Server) createDebate(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.NewValidationError("request body must be a JSON object").WithCause(err)
	}
	format, err := debate.ParseFormat(req.Format)
	if err != nil {
		return err
	}
	order, err := debate.ParseSpeakingOrder(req.Order)
	if err != nil {
		return err
	}

	room, err := s.hub.Create(debate.Config{
		Topic:  req.Topic,
		Format: format,
		Order:  order,
		Participants: map[debate.Side]string{
			debate.SideA: req.SideA,
			debate.SideB: req.SideB,
		},
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(s.describe(room))
}

func (s *Server) listDebates(c *fiber.Ctx) error {
	return c.JSON(s.hub.List())
}

func (s *Server) getDebate(c *fiber.Ctx) error {
	room, err := s.hub.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(s.describe(room))
}

func (s *Server) describe(r *Room) roomResponse {
	return roomResponse{
		ID:         r.ID(),
		Transcript: r.session.Snapshot(),
		Seats: map[string]string{
			string(debate.SideA): "/ws/" + r.ID() + "/" + string(debate.SideA),
			string(debate.SideB): "/ws/" + r.ID() + "/" + string(debate.SideB),
			WatchSide:            "/ws/" + r.ID() + "/" + WatchSide,
		},
	}
}

// upgrade rejects plain HTTP, unknown rooms and taken seats before the
// websocket handshake so clients get a proper status code.
func (s *Server) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	room, err := s.hub.Get(c.Params("id"))
	if err != nil {
		return err
	}
	if err := room.CanJoin(c.Params("side")); err != nil {
		return err
	}
	c.Locals("room", room)
	return c.Next()
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	defer func() {
		_ = c.Close()
	}()

	room, ok := c.Locals("room").(*Room)
	if !ok {
		return
	}
	client, err := room.Join(c.Params("side"), c.Query("name"), c)
	if err != nil {
		// Lost the race for the seat after the pre-check.
		_ = c.WriteJSON(errorFrame(err))
		return
	}
	defer room.Leave(client)
	room.Serve(client, c)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("http request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	code := errorCode(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = "http_error"
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func statusFor(err error) int {
	var fe *fiber.Error
	var notFound *errors.NotFoundError
	var exists *errors.AlreadyExistsError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &exists), errors.Is(err, errors.ErrInvalidTurn):
		return fiber.StatusConflict
	case errors.Is(err, ErrRoomLimit):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, errors.ErrInvalidInput):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
