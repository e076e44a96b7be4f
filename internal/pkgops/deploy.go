package pkgops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drahosp/luadist/internal/config"
	"github.com/drahosp/luadist/internal/distinfo"
)

// reservedBuildVars are always set last, overriding any caller-supplied or
// configured value of the same key.
func reservedBuildVars(installPrefix, deployRoot string) map[string]string {
	return map[string]string{
		"CMAKE_INSTALL_PREFIX": installPrefix,
		"CMAKE_INCLUDE_PATH":   filepath.Join(deployRoot, "include"),
		"CMAKE_LIBRARY_PATH":   filepath.Join(deployRoot, "lib") + ";" + filepath.Join(deployRoot, "bin"),
	}
}

// Deploy installs packageDir (the directory Unpack produced) into
// deployRoot, branching on the freshly re-read dist.info's Type: deploy
// always trusts the package's own dist.info over whatever DistInfo the
// caller resolved against, since that's the authoritative copy that
// travels with the archive.
func (o *Ops) Deploy(packageDir, deployRoot string, variables map[string]string) (*distinfo.DistInfo, error) {
	infoPath := filepath.Join(packageDir, "dist.info")
	text, err := os.ReadFile(infoPath)
	if err != nil {
		return nil, fmt.Errorf("pkgops: reading %s: %w", infoPath, err)
	}
	info, err := distinfo.ParseRecordText(string(text))
	if err != nil {
		return nil, fmt.Errorf("pkgops: parsing %s: %w", infoPath, err)
	}
	if info.Type == "" {
		if _, err := os.Stat(filepath.Join(packageDir, "CMakeLists.txt")); err == nil {
			info.Arch = distinfo.DefaultArch
			info.Type = "source"
		}
	}
	distinfo.ApplyDefaults(info)

	if !distinfo.ArchTypeCompatible(info, o.cfg.HostArch, o.cfg.HostType) {
		return nil, fmt.Errorf("pkgops: %s-%s: arch %q / type %q incompatible with host %s/%s",
			info.Name, info.Version, info.Arch, info.Type, o.cfg.HostArch, o.cfg.HostType)
	}

	if info.Type == "source" {
		return o.build(info, packageDir, deployRoot, variables)
	}
	return o.install(info, packageDir, deployRoot)
}

// install materializes package's top-level entries (dist.info excepted)
// into deployRoot, in either symlink or copy LayoutMode.
func (o *Ops) install(info *distinfo.DistInfo, packageDir, deployRoot string) (*distinfo.DistInfo, error) {
	perDistDir := filepath.Join(deployRoot, "dists", info.Name+"-"+info.Version)
	if err := o.fs.EnsureDir(perDistDir); err != nil {
		return nil, err
	}

	entries, err := o.fs.TopLevelEntries(packageDir)
	if err != nil {
		return nil, fmt.Errorf("pkgops: listing %s: %w", packageDir, err)
	}

	var files []string
	for _, name := range entries {
		if name == "dist.info" {
			continue
		}
		src := filepath.Join(packageDir, name)
		perDistTarget := filepath.Join(perDistDir, name)
		rootTarget := filepath.Join(deployRoot, name)

		switch o.cfg.Layout {
		case config.LayoutSymlink:
			if err := o.fs.CopyTree(src, perDistTarget); err != nil {
				return nil, fmt.Errorf("pkgops: copying %s: %w", src, err)
			}
			if err := o.fs.Symlink(perDistTarget, rootTarget); err != nil {
				return nil, fmt.Errorf("pkgops: linking %s: %w", rootTarget, err)
			}
		case config.LayoutCopy:
			if err := o.fs.CopyTree(src, rootTarget); err != nil {
				return nil, fmt.Errorf("pkgops: copying %s: %w", src, err)
			}
			if err := o.fs.CopyTree(src, perDistTarget); err != nil {
				return nil, fmt.Errorf("pkgops: duplicating %s: %w", src, err)
			}
		}
		files = append(files, name)
	}

	info.Files = files
	info.Path = perDistDir

	infoText := distinfo.SerializeRecord(info)
	if err := os.WriteFile(filepath.Join(perDistDir, "dist.info"), []byte(infoText), 0o644); err != nil {
		return nil, fmt.Errorf("pkgops: writing dist.info: %w", err)
	}

	return info, nil
}

// build runs the cmake+make pipeline in a scratch build directory, stamps
// the resulting install prefix's dist.info with the host arch/type, and
// recurses into install.
func (o *Ops) build(info *distinfo.DistInfo, packageDir, deployRoot string, variables map[string]string) (*distinfo.DistInfo, error) {
	scratch := o.cfg.TempRoot
	if scratch == "" {
		scratch = os.TempDir()
	}
	base := filepath.Join(scratch, fmt.Sprintf("luadist-build-%s-%s", info.Name, info.Version))
	buildDir := filepath.Join(base, "build")
	installPrefix := filepath.Join(base, "install")
	if err := o.fs.EnsureDir(buildDir); err != nil {
		return nil, err
	}
	if err := o.fs.EnsureDir(installPrefix); err != nil {
		return nil, err
	}
	if !o.cfg.Debug {
		defer os.RemoveAll(base)
	}

	vars := map[string]string{}
	for k, v := range o.cfg.BuildVariables {
		vars[k] = v
	}
	for k, v := range variables {
		vars[k] = v
	}
	for k, v := range reservedBuildVars(installPrefix, deployRoot) {
		vars[k] = v
	}

	if err := o.driver.WriteCache(buildDir, vars); err != nil {
		return nil, err
	}
	if err := o.driver.Configure(packageDir, buildDir, o.cfg.Debug); err != nil {
		return nil, fmt.Errorf("pkgops: configuring %s-%s: %w", info.Name, info.Version, err)
	}
	if err := o.driver.Build(buildDir, o.cfg.Debug); err != nil {
		return nil, fmt.Errorf("pkgops: building %s-%s: %w", info.Name, info.Version, err)
	}

	built := info.Clone()
	built.Arch = o.cfg.HostArch
	built.Type = o.cfg.HostType

	infoText := distinfo.SerializeRecord(built)
	if err := os.WriteFile(filepath.Join(installPrefix, "dist.info"), []byte(infoText), 0o644); err != nil {
		return nil, fmt.Errorf("pkgops: writing dist.info: %w", err)
	}

	return o.install(built, installPrefix, deployRoot)
}
