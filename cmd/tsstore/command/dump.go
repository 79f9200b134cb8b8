package command

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/tsengine/internal/config"
	"github.com/cayleygraph/tsengine/snapshot"
)

// NewDumpCmd round-trips the configured snapshot through Load/Dump, mostly
// useful for validating a snapshot file or re-serializing after a format
// fix. Grounded on cmd/cayley/command/database.go's NewDumpDatabaseCmd,
// minus the pluggable quad-writer format selection that package's dump
// supports: spec §4.3 defines exactly one on-disk format.
func NewDumpCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Re-serialize the configured snapshot to a new path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(viper.GetViper())
			if cfg.SnapshotPath == "" {
				fatalf("no snapshot path configured; pass --snapshot-path or set %s", config.KeySnapshotPath)
			}
			if out == "" {
				out = cfg.SnapshotPath
			}

			in, err := os.Open(cfg.SnapshotPath)
			if err != nil {
				return err
			}
			st, ierr := snapshot.Load(in)
			in.Close()
			if ierr != nil {
				return ierr
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if ierr := snapshot.Dump(st, f); ierr != nil {
				return ierr
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "destination path (defaults to overwriting the configured snapshot)")
	return cmd
}
