package pkgops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drahosp/luadist/internal/config"
	"github.com/drahosp/luadist/internal/distinfo"
)

// Delete removes an installed dist from deployRoot: iterate d.Files (the
// top-level entries install recorded) in reverse order, removing each
// entry's deployment-root materialization (a symlink in LayoutSymlink mode,
// a copy in LayoutCopy mode) and its per-dist-directory copy, pruning
// directories left empty; finally remove the per-dist directory itself.
// Reverse order mirrors install's append order so the last thing
// installed is the first thing undone.
func (o *Ops) Delete(d *distinfo.DistInfo, deployRoot string) error {
	perDistDir := filepath.Join(deployRoot, "dists", d.Name+"-"+d.Version)

	for i := len(d.Files) - 1; i >= 0; i-- {
		name := d.Files[i]
		rootTarget := filepath.Join(deployRoot, name)

		if o.cfg.Layout == config.LayoutSymlink {
			if err := os.Remove(rootTarget); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("pkgops: removing %s: %w", rootTarget, err)
			}
		} else {
			if err := os.RemoveAll(rootTarget); err != nil {
				return fmt.Errorf("pkgops: removing %s: %w", rootTarget, err)
			}
			if err := o.fs.PruneEmptyParents(deployRoot, filepath.Dir(rootTarget)); err != nil {
				return err
			}
		}
	}

	// dists/ itself is part of the deployment layout and is left in place
	// even when empty, matching the pre-install snapshot.
	if err := os.RemoveAll(perDistDir); err != nil {
		return fmt.Errorf("pkgops: removing %s: %w", perDistDir, err)
	}
	return nil
}
