package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/novalabs/nova/pkg/embeddings"
)

var _ = Describe("Embedder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns one vector per input in input order", func() {
		var got embedRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			_ = json.NewEncoder(w).Encode(embedResponse{
				Embeddings: [][]float32{{1, 0}, {0, 1}},
			})
		}))
		defer server.Close()

		embedder, err := NewEmbedder(EmbedderConfig{BaseURL: server.URL, Model: "test-model"})
		Expect(err).NotTo(HaveOccurred())

		vectors, err := embedder.Embed(ctx, []string{"first", "second"})
		Expect(err).NotTo(HaveOccurred())
		Expect(vectors).To(Equal([][]float32{{1, 0}, {0, 1}}))
		Expect(got.Input).To(Equal([]string{"first", "second"}))
		Expect(got.Model).To(Equal("test-model"))
	})

	It("short-circuits an empty batch without a request", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			Fail("unexpected request")
		}))
		defer server.Close()

		embedder, err := NewEmbedder(EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		vectors, err := embedder.Embed(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(vectors).To(BeNil())
	})

	It("rejects a count mismatch", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(embedResponse{
				Embeddings: [][]float32{{1, 0}},
			})
		}))
		defer server.Close()

		embedder, err := NewEmbedder(EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(ctx, []string{"first", "second"})
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("wraps upstream failures in ErrEmbedding", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		embedder, err := NewEmbedder(EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(ctx, []string{"first"})
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})
})
