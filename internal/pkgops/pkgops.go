// Package pkgops implements the four package operations on a dist: Unpack
// normalizes a selected DistInfo's path to a local extracted directory;
// Deploy installs or builds it into a deployment; Pack assembles a
// redistributable archive of an installed dist; Delete removes one.
package pkgops

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/drahosp/luadist/internal/config"
	"github.com/drahosp/luadist/internal/distinfo"
	"github.com/drahosp/luadist/internal/fetch"
	"github.com/drahosp/luadist/internal/logging"
	"github.com/drahosp/luadist/internal/sysfs"
)

// Ops bundles the configuration and collaborators every package operation
// needs: host arch/type, layout mode, temp root, the build driver, and the
// fetch client for remote path locators.
type Ops struct {
	cfg    config.Config
	fs     *sysfs.FS
	fetch  *fetch.Client
	log    *logging.Logger
	driver BuildDriver
}

// New builds an Ops from cfg. driver may be nil to use the default
// cmake/make CommandDriver built from cfg.
func New(cfg config.Config, client *fetch.Client, driver BuildDriver) *Ops {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	if driver == nil {
		driver = NewCommandDriver(cfg)
	}
	return &Ops{cfg: cfg, fs: sysfs.New(), fetch: client, log: log, driver: driver}
}

// Unpack normalizes d's Path to a local extracted directory: a directory
// passes through, an archive is extracted, and a remote URL is fetched
// first and then extracted when it names a .zip or .dist archive; any other
// remote URL yields the path of its downloaded cache file unchanged.
func (o *Ops) Unpack(d *distinfo.DistInfo, scratchDir string) (string, error) {
	path := d.Path
	archive := isArchivePath(path)
	if isRemote(path) {
		local, err := o.fetch.Resolve(path)
		if err != nil {
			return "", fmt.Errorf("pkgops: unpack %s-%s: %w", d.Name, d.Version, err)
		}
		path = local
	}

	if archive {
		dest := filepath.Join(scratchDir, fmt.Sprintf("%s-%s", d.Name, d.Version))
		top, err := sysfs.ExtractZip(path, dest)
		if err != nil {
			return "", fmt.Errorf("pkgops: extracting %s: %w", path, err)
		}
		return top, nil
	}

	return path, nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func isArchivePath(path string) bool {
	return strings.HasSuffix(path, ".zip") || strings.HasSuffix(path, ".dist")
}
