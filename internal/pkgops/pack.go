package pkgops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drahosp/luadist/internal/distinfo"
	"github.com/drahosp/luadist/internal/sysfs"
)

// Pack assembles a redistributable ZIP archive of an installed dist: copy
// its whole per-dist directory (which holds a copy of every installed entry
// in both layout modes) into a staging directory, strip Path and Files from
// the written metadata, and archive, excluding VCS and OS scratch files.
// d.Files is not consulted.
func (o *Ops) Pack(d *distinfo.DistInfo, deployRoot, destDir string) (string, error) {
	perDistDir := filepath.Join(deployRoot, "dists", d.Name+"-"+d.Version)

	scratch := o.cfg.TempRoot
	if scratch == "" {
		scratch = os.TempDir()
	}
	rootName := d.Name + "-" + d.Version
	staging := filepath.Join(scratch, "luadist-pack-"+rootName)
	if err := os.RemoveAll(staging); err != nil {
		return "", err
	}
	if !o.cfg.Debug {
		defer os.RemoveAll(staging)
	}

	if err := o.fs.CopyTree(perDistDir, staging); err != nil {
		return "", fmt.Errorf("pkgops: staging %s: %w", perDistDir, err)
	}

	packed := d.Clone()
	packed.Path = ""
	packed.Files = nil
	infoText := distinfo.SerializeRecord(packed)
	if err := os.WriteFile(filepath.Join(staging, "dist.info"), []byte(infoText), 0o644); err != nil {
		return "", fmt.Errorf("pkgops: writing dist.info: %w", err)
	}

	if err := o.fs.EnsureDir(destDir); err != nil {
		return "", err
	}
	archivePath := filepath.Join(destDir, rootName+".zip")
	if err := sysfs.CreateZip(staging, archivePath, rootName); err != nil {
		return "", fmt.Errorf("pkgops: archiving %s: %w", rootName, err)
	}
	return archivePath, nil
}
