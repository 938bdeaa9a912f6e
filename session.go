package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"daybook/commands"
	"daybook/config"
	"daybook/llm"
	"daybook/storage"
	"daybook/tasks"
)

// session is one run of the program: a loaded store over an open slot
type session struct {
	cfg    *config.Config
	slot   storage.Slot
	store  *tasks.Store
	client llm.Client
	logger *log.Logger
}

// loadConfig reads .env, the config file and the flag overrides
func loadConfig(opts *rootOptions) (*config.Config, error) {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	cfg, err := config.Load(configPath(opts))
	if err != nil {
		return nil, err
	}
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openSession opens the configured slot, loads the task store and wires
// the command registry to it
func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	logger := log.New(os.Stderr, "daybook: ", 0)

	slot, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	adapter := storage.NewAdapter(slot,
		storage.WithKey(cfg.Storage.Key),
		storage.WithLogger(logger),
		storage.WithVerbose(opts.verbose),
	)
	if opts.verbose {
		logger.Printf("using %s storage, key %s", cfg.Storage.Backend, adapter.Key())
	}
	store := tasks.NewStore(adapter)
	commands.SetStore(store)

	s := &session{cfg: cfg, slot: slot, store: store, logger: logger}

	if cfg.LLM.Enabled {
		client, err := llm.NewGeminiClient(ctx, &llm.Config{
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
		switch {
		case errors.Is(err, llm.ErrMissingAPIKey):
			// The assistant is optional
		case err != nil:
			logger.Printf("warning: assistant unavailable: %v", err)
		default:
			s.client = client
			commands.SetLLMClient(client)
		}
	}

	return s, nil
}

func (s *session) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return s.slot.Close()
}
