package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thinkwright/convo/internal/config"
	"github.com/thinkwright/convo/internal/logger"
	"github.com/thinkwright/convo/internal/metrics"
	"github.com/thinkwright/convo/internal/server"
	"github.com/thinkwright/convo/internal/store"
	"github.com/thinkwright/convo/internal/watcher"
)

type serveFlags struct {
	addr    string
	export  string
	pretty  bool
	noWatch bool
}

func newServeCmd(global *globalFlags) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Index the export and serve the archive API",
		Long: `serve imports the configured export into the local index, serves the
archive API the browser reads, and re-imports whenever the export file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			global.apply(&cfg)
			if flags.addr != "" {
				cfg.ListenAddr = flags.addr
			}
			if flags.export != "" {
				cfg.ExportPath = flags.export
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: flags.pretty})
			return runServe(cmd.Context(), cfg, !flags.noWatch, log)
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&flags.export, "export", "", "path to conversations.json (default from config)")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "human-readable console logs")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not re-import when the export changes")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config, watch bool, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(store.DBPath(config.DataDir()))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer db.Close()

	grouper, err := store.NewGrouper(cfg.Groups)
	if err != nil {
		return err
	}
	m := metrics.New()

	if cfg.ExportPath == "" {
		log.Warn().Msg("no export configured, serving the existing index")
	} else {
		reimport(db, grouper, m, log, cfg.ExportPath)
		if watch {
			go func() {
				err := watcher.Watch(ctx, cfg.ExportPath, watcher.DefaultDebounce, func() {
					reimport(db, grouper, m, log, cfg.ExportPath)
				})
				if err != nil {
					log.Error().Err(err).Str("op", "watch").Str("path", cfg.ExportPath).Msg("export watcher stopped")
				}
			}()
		}
	}

	srv := server.New(db, m, log, server.Config{Addr: cfg.ListenAddr, SearchLimit: cfg.SearchLimit})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// reimport brings the index up to date with the export. Failures are logged and
// the previous index keeps serving.
func reimport(db *store.Store, g *store.Grouper, m *metrics.Metrics, log zerolog.Logger, path string) {
	start := time.Now()
	changed, res, err := db.ImportChanged(path, g)
	if err == nil && !changed {
		log.Debug().Str("path", path).Msg("export unchanged")
		return
	}
	m.RecordImport(err, time.Since(start), db.ConversationCount(), db.MessageCount())
	if err != nil {
		log.Error().Err(err).Str("op", "import").Str("path", path).Msg("import failed")
		return
	}
	log.Info().
		Str("path", path).
		Int("conversations", res.Conversations).
		Int("messages", res.Messages).
		Dur("took", time.Since(start)).
		Msg("export imported")
}
