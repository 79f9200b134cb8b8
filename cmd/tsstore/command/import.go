package command

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/tsengine/clog"
	"github.com/cayleygraph/tsengine/internal/config"
	"github.com/cayleygraph/tsengine/snapshot"
)

// NewImportCmd appends one quad file's triples into the existing snapshot,
// using prefixID to keep this ingest session's blank node labels distinct
// from any earlier one's (parser.Import's prefixID parameter). Unlike
// `load`, the existing snapshot's contents are kept.
func NewImportCmd() *cobra.Command {
	var format string
	var prefixID uint32
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append a quad file's triples into the existing snapshot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(viper.GetViper())
			if cfg.SnapshotPath == "" {
				fatalf("no snapshot path configured; pass --snapshot-path or set %s", config.KeySnapshotPath)
			}

			in, err := os.Open(cfg.SnapshotPath)
			if os.IsNotExist(err) {
				return err
			} else if err != nil {
				return err
			}
			st, ierr := snapshot.Load(in)
			in.Close()
			if ierr != nil {
				return ierr
			}

			n, err := importFile(st, args[0], format, prefixID)
			if err != nil {
				return err
			}
			clog.Infof("tsstore: imported %d triples from %q (prefix_id=%d)", n, args[0], prefixID)

			f, err := os.Create(cfg.SnapshotPath)
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
	cmd.Flags().StringVar(&format, "format", "", `quad file format ("ntriples", "turtle", "nquads"); auto-detected from extension if unset`)
	cmd.Flags().Uint32Var(&prefixID, "prefix-id", 1, "blank node prefix id for this ingest session")
	return cmd
}
