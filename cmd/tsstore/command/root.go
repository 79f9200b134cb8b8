// Package command implements the tsstore CLI's subcommands (serve, load,
// dump, import, init), cobra/viper-wired in the same one-file-per-verb
// shape as cmd/cayley/command.
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/tsengine/internal/config"
)

var cfgFile string

// NewRootCmd assembles the tsstore command tree: serve/load/dump/import/init,
// each living in its own file the way cmd/cayley/command splits http.go,
// database.go, health.go apart.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tsstore",
		Short: "An in-memory RDF triple store with a raw-socket query server.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initViper(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (yaml/json/toml); falls back to flags and defaults")
	cmd.PersistentFlags().String("snapshot-path", "", "path to the on-disk snapshot file")
	viper.BindPFlag(config.KeySnapshotPath, cmd.PersistentFlags().Lookup("snapshot-path"))

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewLoadCmd())
	cmd.AddCommand(NewDumpCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

func initViper(cmd *cobra.Command) error {
	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("TSSTORE")
	viper.AutomaticEnv()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", cfgFile, err)
		}
	}
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
