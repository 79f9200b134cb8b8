// Command tsstore serves MemoryTripleStore: serve, init, load, dump and
// import subcommands over an in-memory RDF triple store.
package main

import (
	"os"

	_ "github.com/cayleygraph/tsengine/clog/glog"
	"github.com/cayleygraph/tsengine/cmd/tsstore/command"
)

func main() {
	if err := command.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
