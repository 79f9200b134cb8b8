package command

import (
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/tsengine/clog"
	"github.com/cayleygraph/tsengine/internal/adminhttp"
	"github.com/cayleygraph/tsengine/internal/config"
	"github.com/cayleygraph/tsengine/server"
	"github.com/cayleygraph/tsengine/snapshot"
	"github.com/cayleygraph/tsengine/store"
)

// NewServeCmd starts the query server: loads (or creates) the store,
// freezes it (spec §5), then runs the accept loop / worker pool and the
// admin listener side by side, mirroring cmd/cayley/command/http.go's
// NewHttpCmd but against the hand-framed query port instead of
// net/http.Server.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query port (and admin endpoints) over the configured store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(viper.GetViper())

			st, err := openOrCreateStore(cfg.SnapshotPath, cfg.InitialCap)
			if err != nil {
				return err
			}
			st.Freeze()
			clog.Infof("tsstore: store frozen: %d vertices, %d edges", st.NumVertices(), st.NumEdges())

			ln, err := net.Listen("tcp", cfg.ListenAddr)
			if err != nil {
				return err
			}
			clog.Infof("tsstore: query port listening on %s", cfg.ListenAddr)

			startedAt := time.Now()
			go func() {
				if err := adminhttp.Serve(cfg.AdminAddr, st, startedAt); err != nil {
					clog.Errorf("tsstore: admin listener stopped: %v", err)
				}
			}()

			handler := server.NewHandler(st, cfg.MaxBodyBytes)
			ring := server.NewRing(cfg.RingCapacity)
			pool := server.NewPool(handler, ring, cfg.Workers, cfg.AcceptThreads)
			pool.Run(ln)
			return nil
		},
	}
	bindServeFlags(cmd)
	return cmd
}

func bindServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("listen", "", "query port listen address (host:port)")
	cmd.Flags().String("admin-listen", "", "admin /healthz, /stats listen address (host:port)")
	cmd.Flags().Int("workers", 0, "fixed worker pool size")
	cmd.Flags().Int("ring-capacity", 0, "bounded connection ring capacity")
	cmd.Flags().Int("max-body-bytes", 0, "maximum accepted request body size")
	cmd.Flags().Int("accept-threads", 0, "number of concurrent accept loops")
	viper.BindPFlag(config.KeyListenAddr, cmd.Flags().Lookup("listen"))
	viper.BindPFlag(config.KeyAdminAddr, cmd.Flags().Lookup("admin-listen"))
	viper.BindPFlag(config.KeyWorkers, cmd.Flags().Lookup("workers"))
	viper.BindPFlag(config.KeyRingCapacity, cmd.Flags().Lookup("ring-capacity"))
	viper.BindPFlag(config.KeyMaxBodyBytes, cmd.Flags().Lookup("max-body-bytes"))
	viper.BindPFlag(config.KeyAcceptThreads, cmd.Flags().Lookup("accept-threads"))
}

// openOrCreateStore loads path if it exists, otherwise returns a fresh
// empty store of the given initial capacity (spec §4.3: a missing snapshot
// file is not an error — it just means "start empty").
func openOrCreateStore(path string, initialCap int) (*store.Store, error) {
	if path == "" {
		return store.New(initialCap), nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		clog.Infof("tsstore: no snapshot at %q, starting empty", path)
		return store.New(initialCap), nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	st, ierr := snapshot.Load(f)
	if ierr != nil {
		return nil, ierr
	}
	clog.Infof("tsstore: loaded snapshot %q", path)
	return st, nil
}
