package cmd

import (
	"errors"
	"fmt"

	"pitchreel/internal/app"
	"pitchreel/pkg/config"

	"github.com/spf13/cobra"
)

var (
	draftTopic string
	draftNotes string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a script from a topic without generating media",
	Long: `Ask the assistant for a script on a topic and print the structured result.
The script is saved as script.md in a fresh session directory; nothing is
generated.`,
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().StringVarP(&draftTopic, "topic", "t", "", "Product or topic to script")
	draftCmd.Flags().StringVarP(&draftNotes, "notes", "n", "", "Extra direction for the final pass")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	if draftTopic == "" {
		return errors.New("please provide --topic")
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

	if _, err := service.Assistant().Send(ctx, draftTopic, nil, nil); err != nil {
		return err
	}
	if _, err := service.Assistant().Finalize(ctx, draftNotes, nil); err != nil {
		return err
	}

	d := service.Assistant().Script()
	if d == nil {
		return errors.New("the assistant did not produce a script for this topic")
	}

	printScript(d.Title, d.VisualStyle, d.Hook, d.Body, d.CTA)

	path, err := service.SaveScript()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("\n✓ Saved to " + path))
	return nil
}
