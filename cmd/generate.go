package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"pitchreel/internal/app"
	"pitchreel/internal/chat"
	"pitchreel/internal/generation"
	"pitchreel/pkg/config"

	"github.com/spf13/cobra"
)

var (
	generateTopic     string
	generateKind      string
	generateReference string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft a script and generate media from it",
	Long: `Ask the assistant for a script on a topic, then immediately run a
generation job from it. For an iterative session use "pitchreel chat".`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Product or topic to script")
	generateCmd.Flags().StringVarP(&generateKind, "kind", "k", "video", "Media kind: video or image")
	generateCmd.Flags().StringVarP(&generateReference, "reference", "r", "", "Image file to use as visual reference")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateTopic == "" {
		return errors.New("please provide --topic")
	}

	var kind generation.MediaKind
	switch generateKind {
	case "video":
		kind = generation.MediaVideo
	case "image":
		kind = generation.MediaImage
	default:
		return fmt.Errorf("unknown kind %q, want video or image", generateKind)
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	var attachment *chat.Attachment
	if generateReference != "" {
		attachment, err = chat.LoadAttachment(generateReference)
		if err != nil {
			return fmt.Errorf("load reference: %w", err)
		}
	}

	slog.Info("Drafting script...", "topic", generateTopic)
	if _, err := service.Assistant().Send(ctx, generateTopic, attachment, nil); err != nil {
		return err
	}

	d := service.Assistant().Script()
	if d == nil {
		return errors.New("the assistant did not produce a script for this topic")
	}
	slog.Info("Script ready", "title", d.Title, "style", d.VisualStyle)

	slog.Info("Generating media...")
	path, err := service.Generate(ctx, kind)
	if err != nil {
		if errors.Is(err, generation.ErrAuthPending) {
			slog.Warn("Authorization needed, complete the browser flow and re-run")
		}
		return err
	}

	slog.Info("Done", "path", path)
	return nil
}
