package command

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/tsengine/internal/config"
	"github.com/cayleygraph/tsengine/snapshot"
	"github.com/cayleygraph/tsengine/store"
)

// NewInitCmd creates an empty store and writes it to the configured
// snapshot path, the tsstore equivalent of cmd/cayley/command/database.go's
// NewInitDatabaseCmd, minus the backend-selection logic cayley needs and
// this single-backend store doesn't.
func NewInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty snapshot file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(viper.GetViper())
			if cfg.SnapshotPath == "" {
				fatalf("no snapshot path configured; pass --snapshot-path or set %s", config.KeySnapshotPath)
			}
			if !force {
				if _, err := os.Stat(cfg.SnapshotPath); err == nil {
					fatalf("snapshot %q already exists; pass --force to overwrite", cfg.SnapshotPath)
				}
			}
			f, err := os.Create(cfg.SnapshotPath)
			if err != nil {
				return err
			}
			defer f.Close()

			st := store.New(cfg.InitialCap)
			if ierr := snapshot.Dump(st, f); ierr != nil {
				return ierr
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing snapshot file")
	return cmd
}
