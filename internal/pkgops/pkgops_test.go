package pkgops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drahosp/luadist/internal/config"
	"github.com/drahosp/luadist/internal/fetch"
)

func newOps(t *testing.T, layout config.LayoutMode) *Ops {
	cfg := config.Default()
	cfg.TempRoot = t.TempDir()
	cfg.HostArch = "Linux"
	cfg.HostType = "binary"
	cfg.Layout = layout
	return New(cfg, fetch.New(cfg), &fakeDriver{})
}

type fakeDriver struct {
	configured, built bool
	cacheVars         map[string]string
}

func (f *fakeDriver) WriteCache(buildDir string, vars map[string]string) error {
	f.cacheVars = vars
	return nil
}

func (f *fakeDriver) Configure(srcDir, buildDir string, debug bool) error {
	f.configured = true
	installPrefix := f.cacheVars["CMAKE_INSTALL_PREFIX"]
	return os.MkdirAll(installPrefix, 0o755)
}

func (f *fakeDriver) Build(buildDir string, debug bool) error {
	f.built = true
	installPrefix := f.cacheVars["CMAKE_INSTALL_PREFIX"]
	return os.WriteFile(filepath.Join(installPrefix, "bin.out"), []byte("built"), 0o644)
}

func writeDistInfo(t *testing.T, dir, name, ver, typ string) {
	os.MkdirAll(dir, 0o755)
	text := `name = "` + name + `"
version = "` + ver + `"
`
	if typ != "" {
		text += `type = "` + typ + `"
`
	}
	if err := os.WriteFile(filepath.Join(dir, "dist.info"), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDeploy_InstallSymlinkMode(t *testing.T) {
	o := newOps(t, config.LayoutSymlink)
	pkgDir := t.TempDir()
	writeDistInfo(t, pkgDir, "widget", "1.0", "binary")
	os.MkdirAll(filepath.Join(pkgDir, "bin"), 0o755)
	os.WriteFile(filepath.Join(pkgDir, "bin", "widget"), []byte("exe"), 0o755)

	deployRoot := t.TempDir()
	got, err := o.Deploy(pkgDir, deployRoot, nil)
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if len(got.Files) != 1 || got.Files[0] != "bin" {
		t.Fatalf("Files = %v, want [bin]", got.Files)
	}

	link := filepath.Join(deployRoot, "bin")
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("Lstat(%s) error = %v", link, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("expected a symlink at the deployment root in symlink mode")
	}

	perDist := filepath.Join(deployRoot, "dists", "widget-1.0")
	if _, err := os.Stat(filepath.Join(perDist, "bin", "widget")); err != nil {
		t.Errorf("per-dist copy missing: %v", err)
	}
}

func TestDeploy_InstallCopyMode(t *testing.T) {
	o := newOps(t, config.LayoutCopy)
	pkgDir := t.TempDir()
	writeDistInfo(t, pkgDir, "widget", "1.0", "binary")
	os.WriteFile(filepath.Join(pkgDir, "readme.txt"), []byte("hi"), 0o644)

	deployRoot := t.TempDir()
	_, err := o.Deploy(pkgDir, deployRoot, nil)
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}

	rootCopy := filepath.Join(deployRoot, "readme.txt")
	info, err := os.Lstat(rootCopy)
	if err != nil {
		t.Fatalf("Lstat(%s) error = %v", rootCopy, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("expected a plain copy at the deployment root in copy mode, got a symlink")
	}
}

func TestDeploy_RejectsIncompatibleArch(t *testing.T) {
	o := newOps(t, config.LayoutSymlink)
	pkgDir := t.TempDir()
	writeDistInfo(t, pkgDir, "x", "1.0", "binary")
	// Override arch to something incompatible post-hoc by writing a custom file.
	os.WriteFile(filepath.Join(pkgDir, "dist.info"), []byte(`name = "x"
version = "1.0"
arch = "Darwin"
type = "binary"
`), 0o644)

	_, err := o.Deploy(pkgDir, t.TempDir(), nil)
	if err == nil {
		t.Fatal("Deploy() should reject a Darwin-only dist on a Linux host")
	}
}

func TestDeploy_SourceBuildsThenInstalls(t *testing.T) {
	o := newOps(t, config.LayoutSymlink)
	fd := o.driver.(*fakeDriver)

	pkgDir := t.TempDir()
	writeDistInfo(t, pkgDir, "fromsrc", "1.0", "source")
	os.WriteFile(filepath.Join(pkgDir, "CMakeLists.txt"), []byte("project(fromsrc)"), 0o644)

	deployRoot := t.TempDir()
	got, err := o.Deploy(pkgDir, deployRoot, map[string]string{"FOO": "bar"})
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if !fd.configured || !fd.built {
		t.Error("Deploy() should invoke Configure then Build for a source dist")
	}
	if fd.cacheVars["FOO"] != "bar" {
		t.Errorf("caller variable FOO missing from cache vars: %v", fd.cacheVars)
	}
	if fd.cacheVars["CMAKE_INSTALL_PREFIX"] == "" {
		t.Error("CMAKE_INSTALL_PREFIX should be set")
	}
	if got.Type != "binary" {
		t.Errorf("installed record Type = %q, want host type after build", got.Type)
	}
	if _, err := os.Stat(filepath.Join(deployRoot, "bin.out")); err != nil {
		t.Errorf("built artifact not installed: %v", err)
	}
}

func TestDeploy_UntypedCMakeSourceOverridesArchToUniversal(t *testing.T) {
	o := newOps(t, config.LayoutSymlink)

	pkgDir := t.TempDir()
	os.WriteFile(filepath.Join(pkgDir, "dist.info"), []byte(`name = "fromsrc"
version = "1.0"
arch = "Windows"
`), 0o644)
	os.WriteFile(filepath.Join(pkgDir, "CMakeLists.txt"), []byte("project(fromsrc)"), 0o644)

	deployRoot := t.TempDir()
	got, err := o.Deploy(pkgDir, deployRoot, nil)
	if err != nil {
		t.Fatalf("Deploy() error = %v; an untyped dist carrying a CMakeLists.txt should be detected as a Universal source dist regardless of its declared arch", err)
	}
	if got.Type != "binary" {
		t.Errorf("installed record Type = %q, want host type after build", got.Type)
	}
}

func TestDeleteAfterDeploy_RoundTrips(t *testing.T) {
	o := newOps(t, config.LayoutSymlink)
	pkgDir := t.TempDir()
	writeDistInfo(t, pkgDir, "widget", "1.0", "binary")
	os.WriteFile(filepath.Join(pkgDir, "lib.so"), []byte("lib"), 0o644)

	deployRoot := t.TempDir()
	before, _ := os.ReadDir(deployRoot)

	got, err := o.Deploy(pkgDir, deployRoot, nil)
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if err := o.Delete(got, deployRoot); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	after, _ := os.ReadDir(deployRoot)
	// dists/ itself remains (now empty); the pre-install snapshot had no
	// entries at all, so exactly one more entry is expected afterwards.
	if len(after) != len(before)+1 {
		t.Fatalf("after = %v, before = %v: expected only an empty dists/ to remain", after, before)
	}
	entries, _ := os.ReadDir(filepath.Join(deployRoot, "dists"))
	if len(entries) != 0 {
		t.Errorf("dists/ should be empty after Delete, got %v", entries)
	}
}

func TestPack_ProducesArchiveWithoutPathOrFiles(t *testing.T) {
	o := newOps(t, config.LayoutSymlink)
	pkgDir := t.TempDir()
	writeDistInfo(t, pkgDir, "widget", "1.0", "binary")
	os.WriteFile(filepath.Join(pkgDir, "bin.out"), []byte("x"), 0o644)

	deployRoot := t.TempDir()
	got, err := o.Deploy(pkgDir, deployRoot, nil)
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}

	destDir := t.TempDir()
	archivePath, err := o.Pack(got, deployRoot, destDir)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if filepath.Base(archivePath) != "widget-1.0.zip" {
		t.Errorf("archivePath = %q", archivePath)
	}
	if _, err := os.Stat(archivePath); err != nil {
		t.Errorf("archive not created: %v", err)
	}
}
