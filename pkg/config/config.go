package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath        = "config.yaml"
	defaultOutputDir         = "./output"
	defaultTokenPath         = "./pitchreel_token.json"
	defaultLocation          = "us-central1"
	defaultProvider          = "gemini"
	defaultGeminiModel       = "gemini-2.0-flash"
	defaultGroqModel         = "llama-3.3-70b-versatile"
	defaultVideoModel        = "veo-2.0-generate-001"
	defaultImageModel        = "imagen-3.0-generate-002"
	defaultAspectRatio       = "9:16"
	defaultResolution        = "720p"
	defaultPollIntervalSecs  = 5
	defaultPollTimeoutMins   = 30
	defaultMaxTransientPolls = 6

	groqSecretName = "groq-api-key"
)

type Config struct {
	Project            string
	Location           string
	GroqAPIKey         string
	GoogleClientID     string
	GoogleClientSecret string
	TokenPath          string

	Assistant  AssistantConfig  `yaml:"assistant"`
	Media      MediaConfig      `yaml:"media"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Prompts    PromptsConfig    `yaml:"prompts"`
}

type AssistantConfig struct {
	Provider  string `yaml:"provider"` // "gemini" or "groq"
	Model     string `yaml:"model"`
	GroqModel string `yaml:"groq_model"`
}

type MediaConfig struct {
	VideoModel   string `yaml:"video_model"`
	ImageModel   string `yaml:"image_model"`
	AspectRatio  string `yaml:"aspect_ratio"`
	Resolution   string `yaml:"resolution"`
	OutputGCSURI string `yaml:"output_gcs_uri"`
}

type GenerationConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	PollTimeoutMinutes  int `yaml:"poll_timeout_minutes"`
	MaxTransientPolls   int `yaml:"max_transient_polls"`
}

func (g GenerationConfig) PollInterval() time.Duration {
	return time.Duration(g.PollIntervalSeconds) * time.Second
}

func (g GenerationConfig) PollTimeout() time.Duration {
	return time.Duration(g.PollTimeoutMinutes) * time.Minute
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type PromptsConfig struct {
	Path string `yaml:"path"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Project:            os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location:           getEnvOrDefault("GOOGLE_CLOUD_LOCATION", defaultLocation),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		TokenPath:          getEnvOrDefault("PITCHREEL_TOKEN_PATH", defaultTokenPath),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)
	resolveSecrets(ctx, cfg)

	return cfg, nil
}

func loadYAMLConfig(cfg *Config) {
	path := getEnvOrDefault("PITCHREEL_CONFIG", defaultConfigPath)
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applyAssistantDefaults(cfg)
	applyMediaDefaults(cfg)
	applyGenerationDefaults(cfg)
	applyOutputDefaults(cfg)
}

func applyAssistantDefaults(cfg *Config) {
	if cfg.Assistant.Provider == "" {
		cfg.Assistant.Provider = defaultProvider
	}
	if cfg.Assistant.Model == "" {
		cfg.Assistant.Model = defaultGeminiModel
	}
	if cfg.Assistant.GroqModel == "" {
		cfg.Assistant.GroqModel = defaultGroqModel
	}
}

func applyMediaDefaults(cfg *Config) {
	if cfg.Media.VideoModel == "" {
		cfg.Media.VideoModel = defaultVideoModel
	}
	if cfg.Media.ImageModel == "" {
		cfg.Media.ImageModel = defaultImageModel
	}
	if cfg.Media.AspectRatio == "" {
		cfg.Media.AspectRatio = defaultAspectRatio
	}
	if cfg.Media.Resolution == "" {
		cfg.Media.Resolution = defaultResolution
	}
}

func applyGenerationDefaults(cfg *Config) {
	if cfg.Generation.PollIntervalSeconds <= 0 {
		cfg.Generation.PollIntervalSeconds = defaultPollIntervalSecs
	}
	if cfg.Generation.PollTimeoutMinutes <= 0 {
		cfg.Generation.PollTimeoutMinutes = defaultPollTimeoutMins
	}
	if cfg.Generation.MaxTransientPolls <= 0 {
		cfg.Generation.MaxTransientPolls = defaultMaxTransientPolls
	}
}

func applyOutputDefaults(cfg *Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir
	}
}

// resolveSecrets fills API keys from Secret Manager when the environment
// left them empty and a project is configured. Failures degrade to a
// warning: the missing key may belong to a provider that is never used.
func resolveSecrets(ctx context.Context, cfg *Config) {
	if cfg.GroqAPIKey != "" || cfg.Project == "" {
		return
	}

	key, err := accessSecret(ctx, cfg.Project, groqSecretName)
	if err != nil {
		slog.Warn("Could not resolve groq API key from Secret Manager", "error", err)
		return
	}
	cfg.GroqAPIKey = key
}

func accessSecret(ctx context.Context, project, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}

	return string(resp.GetPayload().GetData()), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
