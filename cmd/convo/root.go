package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thinkwright/convo/internal/archive"
	"github.com/thinkwright/convo/internal/config"
	"github.com/thinkwright/convo/internal/logger"
	"github.com/thinkwright/convo/internal/ui"
)

// globalFlags override config values for one run.
type globalFlags struct {
	serverURL string
	logLevel  string
}

func (g globalFlags) apply(cfg *config.Config) {
	if g.serverURL != "" {
		cfg.ServerURL = g.serverURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "convo",
		Short: "Browse an archived chat export in the terminal",
		Long: `convo browses an archive of exported chat conversations.

Run "convo serve" to index an export and serve the archive API, then "convo"
to browse it: filter titles, pick a group, read threads and search messages.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			flags.apply(&cfg)
			return runBrowse(cmd.Context(), cfg)
		},
	}
	root.SetVersionTemplate("convo {{.Version}}\n")
	root.PersistentFlags().StringVar(&flags.serverURL, "server", "", "archive server URL (default from config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newServeCmd(&flags),
		newImportCmd(&flags),
		newGroupsCmd(),
	)
	return root
}

func runBrowse(ctx context.Context, cfg config.Config) error {
	logPath := filepath.Join(config.DataDir(), "convo.log")
	f, err := logger.OpenFile(logPath)
	if err != nil {
		return err
	}
	defer f.Close()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Output: f})

	ensureTerminalSize()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// No client timeout: a hung request stays pending until the program exits.
	client := archive.NewClient(cfg.ServerURL, &http.Client{})
	log.Info().Str("server", client.BaseURL()).Msg("browser starting")

	p := tea.NewProgram(
		ui.NewModel(ui.Options{
			Backend: client,
			Config:  cfg,
			Logger:  log,
			Context: ctx,
		}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// ensureTerminalSize asks the terminal to grow when it is smaller than the
// dashboard layout needs.
func ensureTerminalSize() {
	const minCols, minRows = 100, 30
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || (w >= minCols && h >= minRows) {
		return
	}
	fmt.Fprintf(os.Stdout, "\x1b[8;%d;%dt", max(h, minRows), max(w, minCols))
}
