// Package version holds build-stamped version information for tsstore,
// filled in at link time the same way the teacher stamps its own binary.
package version

var (
	Version = "0.1.0-alpha"

	// GitHash and BuildDate are filled by:
	// 	go build -ldflags="-X github.com/cayleygraph/tsengine/version.GitHash=xxxx -X github.com/cayleygraph/tsengine/version.BuildDate=yyyy"
	GitHash   = "dev snapshot"
	BuildDate string
)
