package command

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/tsengine/clog"
	"github.com/cayleygraph/tsengine/internal/config"
	"github.com/cayleygraph/tsengine/parser"
	"github.com/cayleygraph/tsengine/snapshot"
	"github.com/cayleygraph/tsengine/store"
)

// NewLoadCmd replaces the configured snapshot's contents wholesale with one
// ingest file: it starts a fresh store, runs a single import into it, and
// overwrites the snapshot. This is the offline counterpart to the rejected
// in-protocol `load` verb (see command.Dispatch's ConstructionError for
// `load`/`dump`/`import`).
func NewLoadCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Replace the snapshot's contents with one quad file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(viper.GetViper())
			if cfg.SnapshotPath == "" {
				fatalf("no snapshot path configured; pass --snapshot-path or set %s", config.KeySnapshotPath)
			}

			st := store.New(cfg.InitialCap)
			n, err := importFile(st, args[0], format, 1)
			if err != nil {
				return err
			}
			clog.Infof("tsstore: loaded %d triples from %q", n, args[0])

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
	return cmd
}

// importFile opens path (transparently decompressing .gz/.bz2), sniffs or
// takes the named format, and runs parser.Import against st.
func importFile(st *store.Store, path, format string, prefixID uint32) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	fmtName := parser.Format(format)
	if fmtName == "" {
		fmtName = parser.DetectFormat(path)
	}
	adapter, err := parser.Open(f, fmtName)
	if err != nil {
		return 0, err
	}
	n, ierr := parser.Import(st, adapter, time.Now(), prefixID)
	if ierr != nil {
		return n, ierr
	}
	return n, nil
}
