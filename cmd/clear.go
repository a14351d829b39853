package cmd

import (
	"fmt"

	"pitchreel/internal/storage"
	"pitchreel/pkg/config"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear saved sessions",
	Long:  `Remove all generated session directories from the output folder.`,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	local := storage.NewLocalStorage(cfg.Output.Dir)

	sessions, err := local.ListSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("Nothing to clear")
		return nil
	}

	if !clearForce {
		var confirm bool
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %d session(s) under %s?", len(sessions), cfg.Output.Dir)).
			Value(&confirm).
			Run(); err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	count, err := local.ClearSessions()
	if err != nil {
		return err
	}

	fmt.Printf("Cleared %d session(s)\n", count)
	return nil
}
