package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/novalabs/nova/pkg/chat"
	"github.com/novalabs/nova/pkg/voice"
)

// Server is the HTTP server for the nova backend.
type Server struct {
	config       Config
	orchestrator *chat.Orchestrator
	transcriber  voice.Transcriber
	speaker      voice.Speaker
	logger       *zap.Logger
	app          *fiber.App
}

// NewServer creates a new API server. Collaborators are injected so their
// lifecycles stay owned by the caller (constructed once per process, closed
// at shutdown).
func NewServer(config Config, orchestrator *chat.Orchestrator, transcriber voice.Transcriber, speaker voice.Speaker, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:       config,
		orchestrator: orchestrator,
		transcriber:  transcriber,
		speaker:      speaker,
		logger:       logger,
		app:          app,
	}

	app.Post("/chat", s.handleChat)
	app.Post("/speak", s.handleSpeak)
	app.Post("/stt", s.handleSTT)
	app.Get("/health", s.handleHealth)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting nova API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
