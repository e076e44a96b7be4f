// Package orchestrator composes the manifest pipeline, resolver, and
// package operations into four public operations: install, remove, pack,
// and getDeployed. Keeping this wiring in its own package rather than
// cmd/distman keeps the CLI a thin shell over it.
package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drahosp/luadist/internal/config"
	"github.com/drahosp/luadist/internal/distinfo"
	"github.com/drahosp/luadist/internal/fetch"
	"github.com/drahosp/luadist/internal/logging"
	"github.com/drahosp/luadist/internal/manifest"
	"github.com/drahosp/luadist/internal/pkgops"
	"github.com/drahosp/luadist/internal/resolver"
	"github.com/drahosp/luadist/internal/version"
)

// Orchestrator holds the configuration and collaborators every public
// operation composes.
type Orchestrator struct {
	cfg    config.Config
	loader *manifest.Loader
	ops    *pkgops.Ops
	log    *logging.Logger
}

// New builds an Orchestrator from cfg, wiring up a fetch.Client, a
// manifest.Loader, and a pkgops.Ops from it.
func New(cfg config.Config) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	client := fetch.New(cfg)
	return &Orchestrator{
		cfg:    cfg,
		loader: manifest.New(client, log),
		ops:    pkgops.New(cfg, client, nil),
		log:    log,
	}
}

// deployMetaPath returns the path to the record of installed dists kept
// alongside a deployment root, used to reconstruct the "deployed" manifest
// without re-walking dists/ and re-deriving arch/type every call.
func deployMetaPath(deployRoot string) string {
	return filepath.Join(deployRoot, "dists", "installed.manifest")
}

// loadDeployed reads the deployment's installed-dists record, returning an
// empty manifest if the deployment has never had anything installed.
func loadDeployed(deployRoot string) (distinfo.Manifest, error) {
	data, err := os.ReadFile(deployMetaPath(deployRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("orchestrator: reading installed-dists record: %w", err)
	}
	return distinfo.ParseManifestText(string(data))
}

func saveDeployed(deployRoot string, m distinfo.Manifest) error {
	path := deployMetaPath(deployRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(distinfo.SerializeManifest(m)), 0o644)
}

// Install resolves names against manifest (acquired from locators when
// manifest is nil) with the already-deployed dists prepended as candidates,
// then sequentially deploys each selected dist, aborting on the first
// failure with no rollback: dists deployed before the failing one stay
// deployed.
func (o *Orchestrator) Install(names []string, deployRoot string, locators []string, m distinfo.Manifest, variables map[string]string) (distinfo.Manifest, error) {
	if m == nil {
		loaded, err := o.loader.Load(locators)
		if err != nil {
			return nil, err
		}
		m = loaded
	}

	deployed, err := loadDeployed(deployRoot)
	if err != nil {
		return nil, err
	}
	augmented := append(append(distinfo.Manifest{}, deployed...), m...)

	reqs := make([]version.NameConstraint, len(names))
	for i, n := range names {
		reqs[i] = version.ParseConstraint(n)
	}

	r := resolver.NewResolver(o.cfg.HostArch, o.cfg.HostType, true, o.logTrace)
	selected, err := r.Resolve(reqs, augmented)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: install: %w", err)
	}

	scratch := o.cfg.TempRoot
	if scratch == "" {
		scratch = os.TempDir()
	}

	var installed distinfo.Manifest
	for _, d := range selected {
		if d.Provided != nil {
			continue // synthetic records are never deployed themselves
		}
		if alreadyDeployed(deployed, d) {
			installed = append(installed, d)
			continue
		}

		packageDir, err := o.ops.Unpack(d, scratch)
		if err != nil {
			return installed, o.abortInstall(deployRoot, deployed, installed, fmt.Errorf("orchestrator: install: %w", err))
		}
		result, err := o.ops.Deploy(packageDir, deployRoot, variables)
		if err != nil {
			return installed, o.abortInstall(deployRoot, deployed, installed, fmt.Errorf("orchestrator: install: %w", err))
		}
		installed = append(installed, result)
	}

	deployed = append(deployed, installed...)
	if err := saveDeployed(deployRoot, deployed); err != nil {
		return installed, err
	}
	return installed, nil
}

// abortInstall persists the dists deployed before a mid-loop failure so
// dists/installed.manifest reflects what actually landed on disk, then
// returns origErr unchanged. Without this, a failure partway through
// Install would leave already-materialized files and symlinks untracked,
// making them invisible to a later Remove and liable to collide with a
// retried Install.
func (o *Orchestrator) abortInstall(deployRoot string, deployed, installed distinfo.Manifest, origErr error) error {
	deployed = append(deployed, installed...)
	if err := saveDeployed(deployRoot, deployed); err != nil {
		o.log.Warnf("orchestrator: install: saving partial state after %v: %v", origErr, err)
	}
	return origErr
}

func alreadyDeployed(deployed distinfo.Manifest, d *distinfo.DistInfo) bool {
	for _, x := range deployed {
		if x.Name == d.Name && x.Version == d.Version {
			return true
		}
	}
	return false
}

func (o *Orchestrator) logTrace(format string, args ...interface{}) {
	o.log.Debugf(format, args...)
}

// Remove matches installed dists against names with constraint semantics
// and deletes each in turn.
func (o *Orchestrator) Remove(names []string, deployRoot string) error {
	deployed, err := loadDeployed(deployRoot)
	if err != nil {
		return err
	}

	matched, remaining := matchAgainst(names, deployed)
	for _, d := range matched {
		if err := o.ops.Delete(d, deployRoot); err != nil {
			return fmt.Errorf("orchestrator: remove: %w", err)
		}
	}
	return saveDeployed(deployRoot, remaining)
}

// Pack matches installed dists against names and packs each into destDir.
func (o *Orchestrator) Pack(names []string, deployRoot, destDir string) ([]string, error) {
	deployed, err := loadDeployed(deployRoot)
	if err != nil {
		return nil, err
	}
	matched, _ := matchAgainst(names, deployed)

	var archives []string
	for _, d := range matched {
		path, err := o.ops.Pack(d, deployRoot, destDir)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: pack: %w", err)
		}
		archives = append(archives, path)
	}
	return archives, nil
}

// matchAgainst splits deployed into dists matching any of names (under
// constraint semantics) and the remainder.
func matchAgainst(names []string, deployed distinfo.Manifest) (matched, remaining distinfo.Manifest) {
	constraints := make([]version.NameConstraint, len(names))
	for i, n := range names {
		constraints[i] = version.ParseConstraint(n)
	}

	for _, d := range deployed {
		hit := false
		for _, nc := range constraints {
			if nc.Name == d.Name && nc.Satisfies(d.Version) {
				hit = true
				break
			}
		}
		if hit {
			matched = append(matched, d)
		} else {
			remaining = append(remaining, d)
		}
	}
	return matched, remaining
}

// GetDeployed returns the deployment's installed dists plus synthetic
// records for every entry in their provides and for every entry in the
// configured host-provided list.
func (o *Orchestrator) GetDeployed(deployRoot string) (distinfo.Manifest, error) {
	deployed, err := loadDeployed(deployRoot)
	if err != nil {
		return nil, err
	}

	out := append(distinfo.Manifest{}, deployed...)
	for _, d := range deployed {
		for _, e := range d.Provides.Resolve(d.Arch, d.Type) {
			name, ver := version.ParseNameVersion(e)
			out = append(out, &distinfo.DistInfo{Name: name, Version: ver, Arch: d.Arch, Type: d.Type, Provided: d})
		}
	}
	hostDist := &distinfo.DistInfo{Name: "host", Version: "0", Arch: o.cfg.HostArch, Type: o.cfg.HostType}
	for _, e := range o.cfg.HostProvides {
		name, ver := version.ParseNameVersion(e)
		out = append(out, &distinfo.DistInfo{Name: name, Version: ver, Arch: o.cfg.HostArch, Type: o.cfg.HostType, Provided: hostDist})
	}
	return out, nil
}
