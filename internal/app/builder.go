package app

import (
	"context"
	"fmt"
	"log/slog"

	"pitchreel/internal/auth"
	"pitchreel/internal/gemini"
	"pitchreel/internal/generation"
	"pitchreel/internal/llm"
	"pitchreel/internal/media"
	"pitchreel/internal/storage"
	"pitchreel/pkg/config"
	"pitchreel/pkg/prompts"
)

func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := loadPrompts(cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(ctx, cfg, p)
	if err != nil {
		return nil, err
	}

	mediaClient, err := media.NewClient(ctx, media.Options{
		Project:      cfg.Project,
		Location:     cfg.Location,
		VideoModel:   cfg.Media.VideoModel,
		ImageModel:   cfg.Media.ImageModel,
		OutputGCSURI: cfg.Media.OutputGCSURI,
	})
	if err != nil {
		return nil, fmt.Errorf("create media client: %w", err)
	}

	gate := auth.NewGate(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.TokenPath)

	orch := generation.New(generation.Options{
		Gate:              gate,
		Jobs:              mediaClient,
		PollInterval:      cfg.Generation.PollInterval(),
		MaxTransientPolls: cfg.Generation.MaxTransientPolls,
		PollTimeout:       cfg.Generation.PollTimeout(),
	})

	localStorage := storage.NewLocalStorage(cfg.Output.Dir)
	if err := localStorage.EnsureDirectories(); err != nil {
		return nil, err
	}

	// GCS access is optional: without it gs:// results cannot be fetched,
	// but inline and HTTP results still work.
	var gcs *storage.GCSStore
	if g, err := storage.NewGCSStore(ctx); err != nil {
		slog.Warn("GCS unavailable, gs:// results will not be downloadable", "error", err)
	} else {
		gcs = g
	}

	assistant := NewAssistant(llmClient, p)

	return NewService(ServiceOptions{
		Config:    cfg,
		Assistant: assistant,
		Orch:      orch,
		Gate:      gate,
		Storage:   localStorage,
		Results:   storage.NewResultStore(gcs),
	}), nil
}

func loadPrompts(cfg *config.Config) (*prompts.Prompts, error) {
	if cfg.Prompts.Path != "" {
		return prompts.LoadFrom(cfg.Prompts.Path)
	}
	return prompts.Load()
}

func buildLLM(ctx context.Context, cfg *config.Config, p *prompts.Prompts) (llm.Client, error) {
	switch cfg.Assistant.Provider {
	case "groq":
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.Assistant.GroqModel, p)
	case "gemini":
		return gemini.NewClient(ctx, cfg.Project, cfg.Location, cfg.Assistant.Model, p)
	default:
		return nil, fmt.Errorf("unknown assistant provider %q", cfg.Assistant.Provider)
	}
}
