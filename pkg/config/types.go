// Package config provides the nova backend configuration: defaults, the
// config.toml file, and NOVA_-prefixed environment variables, layered via
// viper.
package config

// Config represents the full backend configuration. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Qdrant    QdrantConfig    `toml:"qdrant"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Memory    MemoryConfig    `toml:"memory"`
	Voice     VoiceConfig     `toml:"voice"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// QdrantConfig holds vector index settings.
type QdrantConfig struct {
	Host       string `toml:"host,omitempty"`
	Port       int    `toml:"port,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint64 `toml:"dimensions,omitempty"`
}

// LLMConfig holds language-model provider settings.
type LLMConfig struct {
	Target string `toml:"target,omitempty"`
	Model  string `toml:"model,omitempty"`
}

// MemoryConfig holds orchestration policy settings for the memory layer.
type MemoryConfig struct {
	RetrievalLimit     int     `toml:"retrieval_limit,omitempty"`
	SaveWindow         int     `toml:"save_window,omitempty"`
	DuplicateThreshold float64 `toml:"duplicate_threshold,omitempty"`
}

// VoiceConfig holds speech collaborator settings.
type VoiceConfig struct {
	STTTarget string `toml:"stt_target,omitempty"`
	TTSTarget string `toml:"tts_target,omitempty"`
	Player    string `toml:"player,omitempty"`
}
