package config

const (
	defaultListen = ":8001"

	defaultQdrantHost       = "localhost"
	defaultQdrantPort       = 6334
	defaultQdrantCollection = "nova_memories"

	defaultOllamaTarget        = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768
	defaultLLMModel            = "dolphin3"

	defaultRetrievalLimit     = 3
	defaultSaveWindow         = 6
	defaultDuplicateThreshold = 0.90

	defaultSTTTarget = "http://localhost:8178"
	defaultTTSTarget = "http://localhost:5000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Qdrant: QdrantConfig{
			Host:       defaultQdrantHost,
			Port:       defaultQdrantPort,
			Collection: defaultQdrantCollection,
		},
		Embedding: EmbeddingConfig{
			Target:     defaultOllamaTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Target: defaultOllamaTarget,
			Model:  defaultLLMModel,
		},
		Memory: MemoryConfig{
			RetrievalLimit:     defaultRetrievalLimit,
			SaveWindow:         defaultSaveWindow,
			DuplicateThreshold: defaultDuplicateThreshold,
		},
		Voice: VoiceConfig{
			STTTarget: defaultSTTTarget,
			TTSTarget: defaultTTSTarget,
		},
	}
}
