package whisper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novalabs/nova/pkg/voice"
)

var _ = Describe("Transcriber", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("uploads the audio and returns the recognized text", func() {
		var uploaded []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			file, _, err := r.FormFile("file")
			Expect(err).NotTo(HaveOccurred())
			defer file.Close()
			uploaded, err = io.ReadAll(file)
			Expect(err).NotTo(HaveOccurred())

			_ = json.NewEncoder(w).Encode(inferenceResponse{Text: " hello world \n"})
		}))
		defer server.Close()

		transcriber, err := NewTranscriber(Config{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		text, err := transcriber.Transcribe(ctx, []byte("fake-wav-bytes"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("hello world"))
		Expect(uploaded).To(Equal([]byte("fake-wav-bytes")))
	})

	It("surfaces server-reported errors as ErrSpeech", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(inferenceResponse{Error: "no speech detected"})
		}))
		defer server.Close()

		transcriber, err := NewTranscriber(Config{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = transcriber.Transcribe(ctx, []byte("fake-wav-bytes"))
		Expect(err).To(MatchError(voice.ErrSpeech))
	})

	It("wraps transport failures in ErrSpeech", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		transcriber, err := NewTranscriber(Config{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = transcriber.Transcribe(ctx, []byte("fake-wav-bytes"))
		Expect(err).To(MatchError(voice.ErrSpeech))
	})
})
