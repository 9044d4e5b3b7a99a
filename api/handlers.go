package api

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/novalabs/nova/pkg/chat"
)

// ErrorResponse is the JSON body returned for request-level failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// speakRequest is the body of a /speak call.
type speakRequest struct {
	Text string `json:"text"`
}

// sttResponse is the body returned by /stt. Error is set only on
// transcription failure; Text is always present.
type sttResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// handleChat runs one conversational turn. Only request-shape violations
// surface as 400s; the orchestrator converts collaborator failures into a
// safe assistant reply.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chat.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed request body"})
	}

	resp, err := s.orchestrator.ProcessTurn(c.Context(), &req)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		s.logger.Error("chat turn failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	return c.JSON(resp)
}

// handleSpeak synthesizes the given text. Unlike /chat, speech failures are
// reported directly to the caller.
func (s *Server) handleSpeak(c *fiber.Ctx) error {
	var req speakRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed request body"})
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return c.JSON(fiber.Map{"status": "no_text"})
	}

	if err := s.speaker.Speak(c.Context(), text); err != nil {
		s.logger.Error("speech synthesis failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// handleSTT transcribes an uploaded audio file. Failures keep the original
// contract: a 200 with an error field and empty text.
func (s *Server) handleSTT(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "audio file required"})
	}

	file, err := header.Open()
	if err != nil {
		return c.JSON(sttResponse{Text: "", Error: "could not read audio file"})
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		return c.JSON(sttResponse{Text: "", Error: "could not read audio file"})
	}

	text, err := s.transcriber.Transcribe(c.Context(), audio)
	if err != nil {
		s.logger.Error("transcription failed", zap.Error(err))
		return c.JSON(sttResponse{Text: "", Error: err.Error()})
	}

	return c.JSON(sttResponse{Text: text})
}

// handleHealth returns the static capability descriptor.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"service":         "Nova AI Backend",
		"ollama_endpoint": s.config.LLMTarget,
		"model":           s.config.Model,
		"features": []string{
			"chat",
			"memory_save",
			"memory_forget",
			"memory_list",
			"memory_search",
			"memory_count",
			"stt",
			"tts",
		},
	})
}
