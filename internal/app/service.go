package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pitchreel/internal/auth"
	"pitchreel/internal/generation"
	"pitchreel/internal/storage"
	"pitchreel/pkg/config"
)

type Service struct {
	cfg       *config.Config
	assistant *Assistant
	orch      *generation.Orchestrator
	gate      *auth.Gate
	storage   *storage.LocalStorage
	results   *storage.ResultStore
}

type ServiceOptions struct {
	Config    *config.Config
	Assistant *Assistant
	Orch      *generation.Orchestrator
	Gate      *auth.Gate
	Storage   *storage.LocalStorage
	Results   *storage.ResultStore
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:       opts.Config,
		assistant: opts.Assistant,
		orch:      opts.Orch,
		gate:      opts.Gate,
		storage:   opts.Storage,
		results:   opts.Results,
	}
}

func (s *Service) Assistant() *Assistant                { return s.assistant }
func (s *Service) Orchestrator() *generation.Orchestrator { return s.orch }
func (s *Service) Gate() *auth.Gate                     { return s.gate }
func (s *Service) Storage() *storage.LocalStorage       { return s.storage }
func (s *Service) Config() *config.Config               { return s.cfg }

// Generate runs one generation job for the current script end to end and
// saves the script and the produced media under a fresh session directory.
// It returns the path the media was written to.
func (s *Service) Generate(ctx context.Context, kind generation.MediaKind) (string, error) {
	jobCfg := s.assistant.JobConfig(kind, s.cfg.Media.AspectRatio, s.cfg.Media.Resolution)

	result, err := s.orch.Request(ctx, jobCfg)
	if err != nil {
		if errors.Is(err, generation.ErrAuthPending) {
			return "", err
		}
		return "", fmt.Errorf("generation failed: %w", err)
	}

	sess := newSession(s.storage.OutputDir())
	if err := sess.finalize(s.scriptTitle()); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	if d := s.assistant.Script(); d != nil {
		if err := s.storage.Save(sess.scriptPath(), []byte(renderScriptMarkdown(d))); err != nil {
			slog.Warn("Could not save script alongside media", "error", err)
		}
	}

	mediaPath := sess.mediaPath(kind, result.MIMEType)
	if err := s.results.Save(ctx, result, mediaPath); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}

	slog.Info("Generation complete", "path", mediaPath)
	return mediaPath, nil
}

// SaveScript writes the current script to a fresh session directory and
// returns the file path.
func (s *Service) SaveScript() (string, error) {
	d := s.assistant.Script()
	if d == nil {
		return "", errors.New("no script to save")
	}

	sess := newSession(s.storage.OutputDir())
	if err := sess.finalize(d.Title); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	if err := s.storage.Save(sess.scriptPath(), []byte(renderScriptMarkdown(d))); err != nil {
		return "", fmt.Errorf("save script: %w", err)
	}
	return sess.scriptPath(), nil
}

// Reset discards the conversation and any finished or failed job outcome.
func (s *Service) Reset() {
	s.assistant.Reset()
	s.orch.Reset()
}

func (s *Service) scriptTitle() string {
	if d := s.assistant.Script(); d != nil {
		return d.Title
	}
	return "untitled"
}
