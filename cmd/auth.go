package cmd

import (
	"fmt"

	"pitchreel/internal/auth"
	"pitchreel/pkg/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with external services",
	Long:  `Authenticate with Google Cloud or check which services are configured.`,
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorize access to the generation service (OAuth)",
	Long:  `Complete the Google OAuth consent flow using credentials from .env.`,
	RunE:  runAuthGoogle,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	Long:  `Verify which services are configured and authenticated.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authGoogleCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(authInfoStyle.Render("\nService Authentication Status:\n"))

	gate := auth.NewGate(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.TokenPath)
	granted, checkErr := gate.Check(ctx)
	switch {
	case granted:
		fmt.Println(authSuccessStyle.Render("✓ Google Cloud: access granted"))
	case checkErr != nil:
		fmt.Println(authErrorStyle.Render("✗ Google Cloud: check failed: " + checkErr.Error()))
	case cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "":
		fmt.Println(authErrorStyle.Render("✗ Google Cloud: credentials set, but not authorized"))
		fmt.Println(authInfoStyle.Render("  Run: pitchreel auth google"))
	default:
		fmt.Println(authErrorStyle.Render("✗ Google Cloud: no application-default credentials and no OAuth client configured"))
	}

	if cfg.Project != "" {
		fmt.Println(authSuccessStyle.Render("✓ Vertex AI: project " + cfg.Project))
	} else {
		fmt.Println(authErrorStyle.Render("✗ Vertex AI: missing GOOGLE_CLOUD_PROJECT"))
	}

	if cfg.Assistant.Provider == "groq" {
		if cfg.GroqAPIKey != "" {
			fmt.Println(authSuccessStyle.Render("✓ Groq: API key configured"))
		} else {
			fmt.Println(authErrorStyle.Render("✗ Groq: missing GROQ_API_KEY"))
		}
	} else {
		fmt.Println(authInfoStyle.Render("○ Groq: not in use (assistant provider is " + cfg.Assistant.Provider + ")"))
	}

	fmt.Println()
	return nil
}

func runAuthGoogle(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	gate := auth.NewGate(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.TokenPath)

	fmt.Println(authInfoStyle.Render("\nOpening browser for Google authorization..."))
	if err := gate.Authorize(ctx); err != nil {
		return err
	}

	fmt.Println(authSuccessStyle.Render("✓ Google authorization complete"))
	fmt.Println(authSuccessStyle.Render("  Token saved to: " + cfg.TokenPath))
	return nil
}
