// Package config defines the explicit Config value threaded through every
// component instead of process-wide globals. It defines the shape every
// core component agrees on, and Load (load.go) builds one from a config
// file and DISTMAN_* environment variables; CLI flags are parsed in
// cmd/distman.
package config

import (
	"time"

	"github.com/drahosp/luadist/internal/logging"
)

// LayoutMode selects how a deployed dist's files are materialized at the
// deployment root.
type LayoutMode int

const (
	// LayoutSymlink copies installed files into the per-dist directory and
	// creates a relative symlink at the deployment root pointing into it.
	LayoutSymlink LayoutMode = iota
	// LayoutCopy copies installed files directly into the deployment root
	// and duplicates them into the per-dist directory.
	LayoutCopy
)

// Config is threaded by value (or pointer, read-only) through the manifest
// pipeline, resolver, package operations, and orchestrator. No component
// reads the environment, flags, or a config file directly.
type Config struct {
	// HostArch and HostType select which manifest candidates are eligible
	// and which arch/type branch of a keyed constraint list applies.
	HostArch string
	HostType string

	// TempRoot is the directory under which scratch build/install
	// directories are created. Debug preserves them on exit.
	TempRoot string
	Debug    bool

	// Layout selects symlink-mode vs copy-mode deployment.
	Layout LayoutMode

	// CacheTTL is how long a cached fetch result is served without
	// re-fetching. Zero disables caching.
	CacheTTL time.Duration

	// FetchTimeout bounds a single network fetch.
	FetchTimeout time.Duration

	// ProxyURL configures an HTTP(S) proxy for fetch, empty for none.
	ProxyURL string

	// InsecureSkipVerify disables TLS peer verification for HTTPS fetches.
	// Defaults to false (verification on); see DESIGN.md for the resolved
	// "HTTPS verification" decision. Kept as a documented compatibility
	// escape hatch for older repositories with self-signed certificates.
	InsecureSkipVerify bool

	// UserAgent is sent on every HTTP(S) fetch.
	UserAgent string

	// BuildVariables are configured CMake cache variables, overridden at
	// build time by per-call variables and then by the three reserved
	// overrides.
	BuildVariables map[string]string

	// CMakeCmd and MakeCmd name the build driver executables; CMakeDebugCmd
	// and MakeDebugCmd are their debug-build variants.
	CMakeCmd      string
	MakeCmd       string
	CMakeDebugCmd string
	MakeDebugCmd  string

	// HostProvides lists "name-version" strings treated as pre-installed
	// dists of host arch/type.
	HostProvides []string

	Logger *logging.Logger
}

// Default returns a Config with sensible defaults and the current runtime's
// GOOS-derived arch, for callers that don't load one from a file.
func Default() Config {
	return Config{
		HostArch:     hostArch(),
		HostType:     "binary",
		TempRoot:     "",
		Layout:       LayoutSymlink,
		CacheTTL:     24 * time.Hour,
		FetchTimeout: 30 * time.Second,
		UserAgent:    "LuaDist",
		CMakeCmd:     "cmake",
		MakeCmd:      "make",
		Logger:       logging.Discard(),
	}
}
