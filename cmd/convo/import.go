package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/thinkwright/convo/internal/config"
	"github.com/thinkwright/convo/internal/store"
)

func newImportCmd(global *globalFlags) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "import [conversations.json]",
		Short: "Import an export into the local index",
		Long: `import reads a conversations.json export into the local index. A path given
here becomes the configured export for later runs of "convo serve".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			global.apply(&cfg)
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				if abs != cfg.ExportPath {
					cfg.ExportPath = abs
					if err := config.Save(cfg); err != nil {
						return fmt.Errorf("save config: %w", err)
					}
				}
			}
			if cfg.ExportPath == "" {
				return fmt.Errorf("no export path: pass one or set export_path in the config")
			}

			db, err := store.Open(store.DBPath(config.DataDir()))
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			if reset {
				if err := db.Reset(); err != nil {
					return fmt.Errorf("reset index: %w", err)
				}
			}
			g, err := store.NewGrouper(cfg.Groups)
			if err != nil {
				return err
			}
			res, err := db.ImportFile(cfg.ExportPath, g)
			if err != nil {
				return fmt.Errorf("import %s: %w", cfg.ExportPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s conversations, %s messages from %s\n",
				humanize.Comma(int64(res.Conversations)), humanize.Comma(int64(res.Messages)), cfg.ExportPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop the whole index before importing")
	return cmd
}
