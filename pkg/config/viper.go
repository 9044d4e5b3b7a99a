package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if one exists in configDir, defaulting to the working directory), and
// binds environment variables with the NOVA_ prefix.
//
// Config precedence (highest to lowest):
//  1. Environment variables (NOVA_SERVER_LISTEN, NOVA_QDRANT_HOST, etc.)
//  2. config.toml file values
//  3. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if configDir == "" {
		configDir = "."
	}
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("NOVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load materializes a Config from the viper instance.
func Load(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Listen: v.GetString("server.listen"),
		},
		Qdrant: QdrantConfig{
			Host:       v.GetString("qdrant.host"),
			Port:       v.GetInt("qdrant.port"),
			Collection: v.GetString("qdrant.collection"),
		},
		Embedding: EmbeddingConfig{
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint64("embedding.dimensions"),
		},
		LLM: LLMConfig{
			Target: v.GetString("llm.target"),
			Model:  v.GetString("llm.model"),
		},
		Memory: MemoryConfig{
			RetrievalLimit:     v.GetInt("memory.retrieval_limit"),
			SaveWindow:         v.GetInt("memory.save_window"),
			DuplicateThreshold: v.GetFloat64("memory.duplicate_threshold"),
		},
		Voice: VoiceConfig{
			STTTarget: v.GetString("voice.stt_target"),
			TTSTarget: v.GetString("voice.tts_target"),
			Player:    v.GetString("voice.player"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("server.listen", d.Server.Listen)

	v.SetDefault("qdrant.host", d.Qdrant.Host)
	v.SetDefault("qdrant.port", d.Qdrant.Port)
	v.SetDefault("qdrant.collection", d.Qdrant.Collection)

	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("llm.target", d.LLM.Target)
	v.SetDefault("llm.model", d.LLM.Model)

	v.SetDefault("memory.retrieval_limit", d.Memory.RetrievalLimit)
	v.SetDefault("memory.save_window", d.Memory.SaveWindow)
	v.SetDefault("memory.duplicate_threshold", d.Memory.DuplicateThreshold)

	v.SetDefault("voice.stt_target", d.Voice.STTTarget)
	v.SetDefault("voice.tts_target", d.Voice.TTSTarget)
	v.SetDefault("voice.player", d.Voice.Player)
}
