// Package config binds the tsstore server's runtime settings through
// viper, the way cmd/cayley/command/http.go binds --timeout into
// viper.GetDuration: flags, a config file, and environment variables all
// resolve through the same keys.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config keys, shared between cobra flag registration and viper lookups.
const (
	KeyListenAddr     = "listen"
	KeyAdminAddr      = "admin_listen"
	KeyWorkers        = "workers"
	KeyRingCapacity   = "ring_capacity"
	KeyMaxBodyBytes   = "max_body_bytes"
	KeyAcceptThreads  = "accept_threads"
	KeySnapshotPath   = "snapshot_path"
	KeyInitialCap     = "initial_capacity"
)

// Config is the resolved, typed view of the server's settings (spec §5,
// §4.6): listen address, worker pool size, the bounded SPMC ring's
// capacity, the per-connection read limit, and the on-disk snapshot path
// used by `load`/`dump`/`init`.
type Config struct {
	ListenAddr     string
	AdminAddr      string
	Workers        int
	RingCapacity   int
	MaxBodyBytes   int
	AcceptThreads  int
	SnapshotPath   string
	InitialCap     int
}

// SetDefaults registers the default value for every key, mirroring the
// teacher's practice of giving every viper key a sane zero-config default
// (cmd/cayley/command/http.go's `"127.0.0.1:64210"` default for --host).
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyListenAddr, "127.0.0.1:64210")
	v.SetDefault(KeyAdminAddr, "127.0.0.1:64211")
	v.SetDefault(KeyWorkers, 16)
	v.SetDefault(KeyRingCapacity, 256)
	v.SetDefault(KeyMaxBodyBytes, 1<<20) // 1 MiB (spec §4.6 "reject if it would overflow")
	v.SetDefault(KeyAcceptThreads, 1)
	v.SetDefault(KeySnapshotPath, "")
	v.SetDefault(KeyInitialCap, 1<<16)
}

// FromViper reads the resolved config out of v, after flags/env/config file
// have all been bound into it by the caller (cmd/tsstore's cobra wiring).
func FromViper(v *viper.Viper) Config {
	return Config{
		ListenAddr:    v.GetString(KeyListenAddr),
		AdminAddr:     v.GetString(KeyAdminAddr),
		Workers:       v.GetInt(KeyWorkers),
		RingCapacity:  v.GetInt(KeyRingCapacity),
		MaxBodyBytes:  v.GetInt(KeyMaxBodyBytes),
		AcceptThreads: v.GetInt(KeyAcceptThreads),
		SnapshotPath:  v.GetString(KeySnapshotPath),
		InitialCap:    v.GetInt(KeyInitialCap),
	}
}

// ReadTimeout is a fixed duration, not exposed as a config key (spec §5:
// "no per-query timeout in the core"). No reader in this module applies
// it: the query port's header and body reads carry no deadline.
const ReadTimeout = 30 * time.Second
