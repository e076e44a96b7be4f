package pkgops

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/drahosp/luadist/internal/config"
)

// BuildDriver invokes the external build tools against a source tree:
// "cd <build> && <cmake> -C cache.cmake <src>" then "cd <build> &&
// <make>". Abstracted behind an interface so tests can substitute a
// recording fake instead of spawning a real build toolchain.
type BuildDriver interface {
	WriteCache(buildDir string, vars map[string]string) error
	Configure(srcDir, buildDir string, debug bool) error
	Build(buildDir string, debug bool) error
}

// CommandDriver shells out to the configured cmake/make executables:
// "cmake -C cache.cmake <src>" followed by "make".
type CommandDriver struct {
	cmake      string
	make       string
	cmakeDebug string
	makeDebug  string
}

// NewCommandDriver builds a CommandDriver from cfg's configured
// executables, falling back to the debug variant only when debug mode is
// requested and a distinct debug command was configured.
func NewCommandDriver(cfg config.Config) *CommandDriver {
	return &CommandDriver{
		cmake:      cfg.CMakeCmd,
		make:       cfg.MakeCmd,
		cmakeDebug: cfg.CMakeDebugCmd,
		makeDebug:  cfg.MakeDebugCmd,
	}
}

// WriteCache writes buildDir/cache.cmake with one
// SET(<key> "<value>" CACHE STRING "" FORCE) line per entry of vars, in
// sorted key order for a deterministic, diffable cache file.
func (c *CommandDriver) WriteCache(buildDir string, vars map[string]string) error {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "SET(%s %q CACHE STRING \"\" FORCE)\n", k, vars[k])
	}

	path := filepath.Join(buildDir, "cache.cmake")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("pkgops: writing %s: %w", path, err)
	}
	return nil
}

func (c *CommandDriver) Configure(srcDir, buildDir string, debug bool) error {
	cmd := exec.Command(c.pick(c.cmake, c.cmakeDebug, debug), "-C", "cache.cmake", srcDir)
	cmd.Dir = buildDir
	return run(cmd)
}

func (c *CommandDriver) Build(buildDir string, debug bool) error {
	cmd := exec.Command(c.pick(c.make, c.makeDebug, debug))
	cmd.Dir = buildDir
	return run(cmd)
}

func (c *CommandDriver) pick(normal, debugCmd string, debug bool) string {
	if debug && debugCmd != "" {
		return debugCmd
	}
	return normal
}

func run(cmd *exec.Cmd) error {
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pkgops: running %s: %w", cmd.Path, err)
	}
	return nil
}
