package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/tsengine/version"
)

// NewVersionCmd prints build-stamped version info, grounded on cmd/cayley
// (cayley.go's "version" subcommand, which prints Version+BuildDate) —
// reassembled as a cobra leaf alongside the rest of this tree's commands.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if version.BuildDate != "" {
				fmt.Printf("tsstore %s (%s) built %s\n", version.Version, version.GitHash, version.BuildDate)
			} else {
				fmt.Printf("tsstore %s (%s)\n", version.Version, version.GitHash)
			}
			return nil
		},
	}
}
