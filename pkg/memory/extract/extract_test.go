package extract

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/novalabs/nova/pkg/llm"
	"github.com/novalabs/nova/pkg/memory"
	"github.com/novalabs/nova/pkg/memory/inmemory"
	testutils "github.com/novalabs/nova/pkg/utils/test"
)

// stubCall returns the given model output for any prompt.
func stubCall(output string, err error) llm.CallFunc {
	return func(_ context.Context, _ string) (string, error) {
		return output, err
	}
}

var window = []llm.Message{
	llm.NewMessage(llm.RoleUser, "My favorite color is teal."),
	llm.NewMessage(llm.RoleAssistant, "Got it!"),
}

var _ = Describe("Extractor", func() {
	var (
		store    *inmemory.Store
		embedder *testutils.MockEmbedder
		ctx      context.Context
	)

	BeforeEach(func() {
		store = inmemory.NewStore()
		embedder = testutils.NewMockEmbedder()
		ctx = context.Background()
	})

	newExtractor := func(call llm.CallFunc) *Extractor {
		return NewExtractor(Config{}, store, embedder, call, zap.NewNop())
	}

	It("writes an extracted memory and reports the write", func() {
		extractor := newExtractor(stubCall(`{"memory": "User's favorite color is teal", "categories": ["preferences"]}`, nil))

		saved, err := extractor.Update(ctx, 7, window)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeTrue())

		memories, err := store.List(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(memories).To(HaveLen(1))
		Expect(memories[0].Text).To(Equal("User's favorite color is teal"))
		Expect(memories[0].Categories).To(ConsistOf("preferences"))
		Expect(memories[0].ID).NotTo(BeEmpty())
		Expect(memories[0].Date).To(MatchRegexp(`^\d{4}-\d{2}-\d{2}$`))
	})

	It("defaults categories to general", func() {
		extractor := newExtractor(stubCall(`{"memory": "User's favorite color is teal"}`, nil))

		saved, err := extractor.Update(ctx, 7, window)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeTrue())

		memories, _ := store.List(ctx, 7)
		Expect(memories[0].Categories).To(ConsistOf("general"))
	})

	It("declines when the model extracts nothing", func() {
		extractor := newExtractor(stubCall(`{"memory": null, "categories": []}`, nil))

		saved, err := extractor.Update(ctx, 7, window)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeFalse())

		count, _ := store.Count(ctx, 7)
		Expect(count).To(BeZero())
	})

	It("declines an empty window", func() {
		extractor := newExtractor(stubCall(`{"memory": "anything"}`, nil))

		saved, err := extractor.Update(ctx, 7, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeFalse())
	})

	It("skips a near-duplicate of an existing memory", func() {
		Expect(store.Insert(ctx, []memory.Memory{{
			ID:        "m1",
			UserID:    7,
			Text:      "User's favorite color is teal",
			Embedding: []float32{1, 0, 0},
		}})).To(Succeed())
		embedder.Embeddings["User's favorite color is teal"] = []float32{1, 0, 0}

		extractor := newExtractor(stubCall(`{"memory": "User's favorite color is teal"}`, nil))

		saved, err := extractor.Update(ctx, 7, window)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeFalse())

		count, _ := store.Count(ctx, 7)
		Expect(count).To(Equal(uint64(1)))
	})

	It("writes a distinct memory even when others exist", func() {
		Expect(store.Insert(ctx, []memory.Memory{{
			ID:        "m1",
			UserID:    7,
			Text:      "User has a golden retriever",
			Embedding: []float32{0, 1, 0},
		}})).To(Succeed())
		embedder.Embeddings["User's favorite color is teal"] = []float32{1, 0, 0}

		extractor := newExtractor(stubCall(`{"memory": "User's favorite color is teal"}`, nil))

		saved, err := extractor.Update(ctx, 7, window)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeTrue())

		count, _ := store.Count(ctx, 7)
		Expect(count).To(Equal(uint64(2)))
	})

	It("propagates extraction-call failures", func() {
		extractor := newExtractor(stubCall("", errors.New("model down")))

		saved, err := extractor.Update(ctx, 7, window)
		Expect(err).To(HaveOccurred())
		Expect(saved).To(BeFalse())
	})

	It("fails on unparsable model output", func() {
		extractor := newExtractor(stubCall("not json at all", nil))

		saved, err := extractor.Update(ctx, 7, window)
		Expect(err).To(HaveOccurred())
		Expect(saved).To(BeFalse())
	})
})
