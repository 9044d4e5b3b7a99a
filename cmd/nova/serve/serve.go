// Package servecmder provides the nova serve cobra command.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/novalabs/nova/api"
	"github.com/novalabs/nova/pkg/chat"
	"github.com/novalabs/nova/pkg/config"
	ollamaembed "github.com/novalabs/nova/pkg/embeddings/ollama"
	ollamagen "github.com/novalabs/nova/pkg/llm/ollama"
	"github.com/novalabs/nova/pkg/logger"
	"github.com/novalabs/nova/pkg/memory/extract"
	"github.com/novalabs/nova/pkg/memory/qdrant"
	"github.com/novalabs/nova/pkg/voice/piper"
	"github.com/novalabs/nova/pkg/voice/whisper"
)

type serveCommander struct {
	listen    string
	configDir string
	debug     bool
	logger    *zap.Logger
}

const serveLongDesc string = `Run the Nova backend: the chat endpoint with per-user semantic memory,
plus the speech utility endpoints (/speak, /stt) and /health.`

const serveShortDesc string = "Run the Nova backend server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the server to listen on (overrides config)")
	cmd.Flags().StringVarP(&cmder.configDir, "config-dir", "c", "", "Directory containing config.toml (default: working directory)")

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	cfg := config.Load(v)
	if c.listen != "" {
		cfg.Server.Listen = c.listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Collaborators are constructed once per process and injected; each is
	// closed on the way out.
	store, err := qdrant.NewStore(qdrant.Config{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		Collection: cfg.Qdrant.Collection,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return fmt.Errorf("failed to create qdrant store: %w", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure memory collection: %w", err)
	}

	embedder, err := ollamaembed.NewEmbedder(ollamaembed.EmbedderConfig{
		BaseURL: cfg.Embedding.Target,
		Model:   cfg.Embedding.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer embedder.Close()

	generator, err := ollamagen.NewGenerator(ollamagen.GeneratorConfig{
		BaseURL: cfg.LLM.Target,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	defer generator.Close()

	updater := extract.NewExtractor(
		extract.Config{DuplicateThreshold: float32(cfg.Memory.DuplicateThreshold)},
		store,
		embedder,
		ollamagen.NewCallFunc(cfg.LLM.Target, cfg.LLM.Model),
		c.logger,
	)

	orchestrator := chat.NewOrchestrator(
		chat.Config{
			RetrievalLimit: cfg.Memory.RetrievalLimit,
			SaveWindow:     cfg.Memory.SaveWindow,
		},
		store,
		embedder,
		generator,
		updater,
		c.logger,
	)

	transcriber, err := whisper.NewTranscriber(whisper.Config{BaseURL: cfg.Voice.STTTarget})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}
	defer transcriber.Close()

	speaker, err := piper.NewSpeaker(piper.Config{
		BaseURL: cfg.Voice.TTSTarget,
		Player:  cfg.Voice.Player,
	})
	if err != nil {
		return fmt.Errorf("failed to create speaker: %w", err)
	}
	defer speaker.Close()

	server := api.NewServer(api.Config{
		ListenAddr: cfg.Server.Listen,
		Model:      cfg.LLM.Model,
		LLMTarget:  cfg.LLM.Target,
	}, orchestrator, transcriber, speaker, c.logger)

	c.logger.Info("nova backend ready",
		zap.String("listen", cfg.Server.Listen),
		zap.String("llm_target", cfg.LLM.Target),
		zap.String("model", cfg.LLM.Model),
		zap.String("qdrant", fmt.Sprintf("%s:%d", cfg.Qdrant.Host, cfg.Qdrant.Port)),
		zap.Strings("memory_commands", []string{"forget", "list", "search", "count", "clear"}),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down")
		return server.Shutdown()
	}
}
