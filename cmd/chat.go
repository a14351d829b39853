package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"pitchreel/internal/app"
	"pitchreel/internal/chat"
	"pitchreel/internal/generation"
	"pitchreel/pkg/config"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("105"))
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive scriptwriting session",
	Long: `Chat with the assistant about your product. The latest script the
assistant produces is tracked automatically; generate media from it at any
point with /generate.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("🎬 Pitchreel"))
	fmt.Println(infoStyle.Render("Describe your product to start. Commands: /attach <path>, /script, /generate [image], /reset, /quit"))

	var pendingAttachment *chat.Attachment

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := handleCommand(cmd, service, line, &pendingAttachment)
			if err != nil {
				fmt.Println(errorStyle.Render("✗ " + err.Error()))
			}
			if done {
				return nil
			}
			continue
		}

		_, err := service.Assistant().Send(ctx, line, pendingAttachment, func(chunk string) {
			fmt.Print(assistantStyle.Render(chunk))
		})
		fmt.Println()
		if err != nil {
			fmt.Println(errorStyle.Render("✗ " + err.Error()))
			continue
		}
		pendingAttachment = nil

		if d := service.Assistant().Script(); d != nil {
			fmt.Println(infoStyle.Render(fmt.Sprintf("script: %q (%s)", d.Title, d.VisualStyle)))
		}
	}
}

func handleCommand(cmd *cobra.Command, service *app.Service, line string, pending **chat.Attachment) (done bool, err error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true, nil

	case "/reset":
		service.Reset()
		*pending = nil
		fmt.Println(infoStyle.Render("Conversation cleared."))
		return false, nil

	case "/attach":
		if arg == "" {
			return false, errors.New("usage: /attach <path>")
		}
		att, err := chat.LoadAttachment(arg)
		if err != nil {
			return false, err
		}
		*pending = att
		fmt.Println(successStyle.Render("✓ Attached " + arg + " (sent with your next message)"))
		return false, nil

	case "/script":
		d := service.Assistant().Script()
		if d == nil {
			fmt.Println(warnStyle.Render("No script yet. Keep chatting until the assistant drafts one."))
			return false, nil
		}
		printScript(d.Title, d.VisualStyle, d.Hook, d.Body, d.CTA)
		return false, nil

	case "/generate":
		kind := generation.MediaVideo
		if arg == "image" {
			kind = generation.MediaImage
		}
		return false, generateWithSpinner(cmd, service, kind)

	default:
		return false, fmt.Errorf("unknown command %s", name)
	}
}

func printScript(title, style, hook, body, cta string) {
	fmt.Println(titleStyle.Render(title))
	fmt.Println(infoStyle.Render("Style: " + style))
	for _, section := range []struct{ name, text string }{
		{"Hook", hook}, {"Body", body}, {"CTA", cta},
	} {
		if section.text != "" {
			fmt.Printf("\n%s\n%s\n", successStyle.Render(section.name), section.text)
		}
	}
}

func generateWithSpinner(cmd *cobra.Command, service *app.Service, kind generation.MediaKind) error {
	title := "Generating video..."
	if kind == generation.MediaImage {
		title = "Generating image..."
	}

	var (
		path   string
		genErr error
	)
	_ = spinner.New().
		Title(title).
		Action(func() { path, genErr = service.Generate(cmd.Context(), kind) }).
		Run()

	switch {
	case errors.Is(genErr, generation.ErrAuthPending):
		fmt.Println(warnStyle.Render("Authorization needed. Complete the browser flow, then /generate again."))
		return nil
	case errors.Is(genErr, generation.ErrBusy):
		fmt.Println(warnStyle.Render("A generation is already running. Wait for it to finish or /reset."))
		return nil
	case genErr != nil:
		return genErr
	}

	fmt.Println(successStyle.Render("✓ Saved to " + path))
	return nil
}
