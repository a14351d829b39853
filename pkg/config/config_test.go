package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromYAML(t *testing.T) {
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	t.Setenv("GROQ_API_KEY", "key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	yaml := `
assistant:
  provider: groq
  groq_model: test-model
media:
  video_model: test-video-model
  aspect_ratio: "16:9"
generation:
  poll_interval_seconds: 2
  max_transient_polls: 3
output:
  dir: ./renders
`
	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte(yaml), 0644)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Assistant.Provider != "groq" {
		t.Errorf("Assistant.Provider = %q, want groq", cfg.Assistant.Provider)
	}
	if cfg.Assistant.GroqModel != "test-model" {
		t.Errorf("Assistant.GroqModel = %q, want test-model", cfg.Assistant.GroqModel)
	}
	if cfg.Media.VideoModel != "test-video-model" {
		t.Errorf("Media.VideoModel = %q, want test-video-model", cfg.Media.VideoModel)
	}
	if cfg.Media.AspectRatio != "16:9" {
		t.Errorf("Media.AspectRatio = %q, want 16:9", cfg.Media.AspectRatio)
	}
	if cfg.Generation.PollInterval() != 2*time.Second {
		t.Errorf("PollInterval() = %v, want 2s", cfg.Generation.PollInterval())
	}
	if cfg.Generation.MaxTransientPolls != 3 {
		t.Errorf("MaxTransientPolls = %d, want 3", cfg.Generation.MaxTransientPolls)
	}
	if cfg.Output.Dir != "./renders" {
		t.Errorf("Output.Dir = %q, want ./renders", cfg.Output.Dir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	t.Setenv("GROQ_API_KEY", "test-groq")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("GOOGLE_CLIENT_ID", "test-client")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.GroqAPIKey != "test-groq" {
		t.Errorf("GroqAPIKey = %q, want test-groq", cfg.GroqAPIKey)
	}
	if cfg.Project != "test-project" {
		t.Errorf("Project = %q, want test-project", cfg.Project)
	}
	if cfg.GoogleClientID != "test-client" {
		t.Errorf("GoogleClientID = %q, want test-client", cfg.GoogleClientID)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	t.Setenv("GROQ_API_KEY", "key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Assistant.Provider != defaultProvider {
		t.Errorf("Assistant.Provider = %q, want %q", cfg.Assistant.Provider, defaultProvider)
	}
	if cfg.Location != defaultLocation {
		t.Errorf("Location = %q, want %q", cfg.Location, defaultLocation)
	}
	if cfg.Media.AspectRatio != defaultAspectRatio {
		t.Errorf("Media.AspectRatio = %q, want %q", cfg.Media.AspectRatio, defaultAspectRatio)
	}
	if cfg.Generation.PollInterval() != defaultPollIntervalSecs*time.Second {
		t.Errorf("PollInterval() = %v, want %ds", cfg.Generation.PollInterval(), defaultPollIntervalSecs)
	}
	if cfg.Generation.PollTimeout() != defaultPollTimeoutMins*time.Minute {
		t.Errorf("PollTimeout() = %v, want %dm", cfg.Generation.PollTimeout(), defaultPollTimeoutMins)
	}
	if cfg.Output.Dir != defaultOutputDir {
		t.Errorf("Output.Dir = %q, want %q", cfg.Output.Dir, defaultOutputDir)
	}
	if cfg.TokenPath != defaultTokenPath {
		t.Errorf("TokenPath = %q, want %q", cfg.TokenPath, defaultTokenPath)
	}
}

func TestLoadMalformedYAMLKeepsDefaults(t *testing.T) {
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	t.Setenv("GROQ_API_KEY", "key")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	_ = os.WriteFile(filepath.Join(tmp, "config.yaml"), []byte("assistant: [not, a, map"), 0644)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Assistant.Provider != defaultProvider {
		t.Errorf("Assistant.Provider = %q, want %q", cfg.Assistant.Provider, defaultProvider)
	}
}
