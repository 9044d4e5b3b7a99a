package piper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novalabs/nova/pkg/voice"
)

var _ = Describe("Speaker", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("synthesizes and hands the audio to the player", func() {
		var got synthesizeRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte("RIFF-fake-wav"))
		}))
		defer server.Close()

		// "true" stands in for a real audio player: it accepts the file
		// argument and exits zero.
		speaker, err := NewSpeaker(Config{BaseURL: server.URL, Player: "true"})
		Expect(err).NotTo(HaveOccurred())

		Expect(speaker.Speak(ctx, "hello world")).To(Succeed())
		Expect(got.Text).To(Equal("hello world"))
	})

	It("wraps synthesis failures in ErrSpeech", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		speaker, err := NewSpeaker(Config{BaseURL: server.URL, Player: "true"})
		Expect(err).NotTo(HaveOccurred())

		Expect(speaker.Speak(ctx, "hello")).To(MatchError(voice.ErrSpeech))
	})

	It("rejects empty synthesized audio", func() {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		defer server.Close()

		speaker, err := NewSpeaker(Config{BaseURL: server.URL, Player: "true"})
		Expect(err).NotTo(HaveOccurred())

		Expect(speaker.Speak(ctx, "hello")).To(MatchError(voice.ErrSpeech))
	})

	It("reports player failures as ErrSpeech", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("RIFF-fake-wav"))
		}))
		defer server.Close()

		speaker, err := NewSpeaker(Config{BaseURL: server.URL, Player: "false"})
		Expect(err).NotTo(HaveOccurred())

		Expect(speaker.Speak(ctx, "hello")).To(MatchError(voice.ErrSpeech))
	})
})
