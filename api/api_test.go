package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novalabs/nova/pkg/chat"
	"github.com/novalabs/nova/pkg/llm"
	novalogger "github.com/novalabs/nova/pkg/logger"
	"github.com/novalabs/nova/pkg/memory/inmemory"
	testutils "github.com/novalabs/nova/pkg/utils/test"
)

var _ = Describe("Server", func() {
	var (
		server      *Server
		store       *inmemory.Store
		embedder    *testutils.MockEmbedder
		generator   *testutils.MockGenerator
		updater     *testutils.MockUpdater
		transcriber *testutils.MockTranscriber
		speaker     *testutils.MockSpeaker
	)

	BeforeEach(func() {
		logger := novalogger.Nop()
		store = inmemory.NewStore()
		embedder = testutils.NewMockEmbedder()
		generator = &testutils.MockGenerator{
			Reply: llm.Reply{Response: "Hello there!"},
		}
		updater = &testutils.MockUpdater{}
		transcriber = &testutils.MockTranscriber{Text: "turn on the lights"}
		speaker = &testutils.MockSpeaker{}

		orchestrator := chat.NewOrchestrator(chat.Config{}, store, embedder, generator, updater, logger)
		server = NewServer(
			Config{
				ListenAddr: ":0",
				Model:      "dolphin3",
				LLMTarget:  "http://localhost:11434",
			},
			orchestrator,
			transcriber,
			speaker,
			logger,
		)
	})

	Describe("POST /chat", func() {
		It("returns the assistant reply for a valid turn", func() {
			payload, err := json.Marshal(chat.Request{
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi nova")},
				UserID:   42,
			})
			Expect(err).NotTo(HaveOccurred())

			req, err := http.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out chat.Response
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Role).To(Equal(llm.RoleAssistant))
			Expect(out.Content).To(Equal("Hello there!"))
		})

		It("returns 400 for a malformed body", func() {
			req, err := http.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("returns 400 when the message list is empty", func() {
			req, err := http.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"messages": []}`))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))

			var out ErrorResponse
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Error).NotTo(BeEmpty())
		})

		It("returns 200 with a fallback reply when generation fails", func() {
			generator.Err = errors.New("model exploded")

			payload, err := json.Marshal(chat.Request{
				Messages: []llm.Message{llm.NewMessage(llm.RoleUser, "hi nova")},
			})
			Expect(err).NotTo(HaveOccurred())

			req, err := http.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out chat.Response
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Content).NotTo(ContainSubstring("model exploded"))
		})
	})

	Describe("POST /speak", func() {
		It("synthesizes non-empty text", func() {
			req, err := http.NewRequest(http.MethodPost, "/speak", strings.NewReader(`{"text": "hello"}`))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out["status"]).To(Equal("ok"))
			Expect(speaker.Spoken).To(Equal([]string{"hello"}))
		})

		It("skips synthesis for blank text", func() {
			req, err := http.NewRequest(http.MethodPost, "/speak", strings.NewReader(`{"text": "   "}`))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out["status"]).To(Equal("no_text"))
			Expect(speaker.Spoken).To(BeEmpty())
		})

		It("returns 500 when synthesis fails", func() {
			speaker.Err = errors.New("piper down")

			req, err := http.NewRequest(http.MethodPost, "/speak", strings.NewReader(`{"text": "hello"}`))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
		})
	})

	Describe("POST /stt", func() {
		newUploadRequest := func(audio []byte) *http.Request {
			var body bytes.Buffer
			writer := multipart.NewWriter(&body)
			part, err := writer.CreateFormFile("file", "audio.wav")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(audio)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())

			req, err := http.NewRequest(http.MethodPost, "/stt", &body)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", writer.FormDataContentType())
			return req
		}

		It("transcribes an uploaded file", func() {
			resp, err := server.app.Test(newUploadRequest([]byte("fake-wav")))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out sttResponse
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Text).To(Equal("turn on the lights"))
			Expect(out.Error).To(BeEmpty())
		})

		It("returns 400 when no file is attached", func() {
			req, err := http.NewRequest(http.MethodPost, "/stt", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("reports transcription failures in the body, not the status", func() {
			transcriber.Err = errors.New("whisper offline")

			resp, err := server.app.Test(newUploadRequest([]byte("fake-wav")))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out sttResponse
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Text).To(BeEmpty())
			Expect(out.Error).To(ContainSubstring("whisper offline"))
		})
	})

	Describe("GET /health", func() {
		It("describes the service and its features", func() {
			req, err := http.NewRequest(http.MethodGet, "/health", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out map[string]any
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out["status"]).To(Equal("healthy"))
			Expect(out["service"]).To(Equal("Nova AI Backend"))
			Expect(out["model"]).To(Equal("dolphin3"))
			Expect(out["ollama_endpoint"]).To(Equal("http://localhost:11434"))
			Expect(out["features"]).To(ContainElements("chat", "memory_save", "stt", "tts"))
		})
	})
})
