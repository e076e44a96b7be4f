package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drahosp/luadist/internal/config"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, string) {
	cfg := config.Default()
	cfg.TempRoot = t.TempDir()
	cfg.HostArch = "Windows"
	cfg.HostType = "binary"
	return New(cfg), t.TempDir()
}

func writeDist(t *testing.T, repoDir, name, ver string, depends, conflicts, provides []string) {
	dir := filepath.Join(repoDir, name+"-"+ver)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	text := `name = "` + name + `"
version = "` + ver + `"
type = "binary"
`
	if len(depends) > 0 {
		text += "depends = {\n"
		for _, d := range depends {
			text += `  "` + d + "\",\n"
		}
		text += "}\n"
	}
	if len(conflicts) > 0 {
		text += "conflicts = {\n"
		for _, c := range conflicts {
			text += `  "` + c + "\",\n"
		}
		text += "}\n"
	}
	if len(provides) > 0 {
		text += "provides = {\n"
		for _, p := range provides {
			text += `  "` + p + "\",\n"
		}
		text += "}\n"
	}
	if err := os.WriteFile(filepath.Join(dir, "dist.info"), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, name+".bin"), []byte(name), 0o644)
}

func TestInstall_LinearChain(t *testing.T) {
	o, deployRoot := newTestOrchestrator(t)
	repo := t.TempDir()
	writeDist(t, repo, "a", "1.0", []string{"b"}, nil, nil)
	writeDist(t, repo, "b", "1.0", []string{"c"}, nil, nil)
	writeDist(t, repo, "c", "1.0", nil, nil, nil)

	installed, err := o.Install([]string{"a"}, deployRoot, []string{repo}, nil, nil)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	want := []string{"c-1.0", "b-1.0", "a-1.0"}
	if len(installed) != len(want) {
		t.Fatalf("installed = %v, want %v", installed, want)
	}
	for i, w := range want {
		got := installed[i].Name + "-" + installed[i].Version
		if got != w {
			t.Errorf("installed[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestInstall_VersionPreference(t *testing.T) {
	o, deployRoot := newTestOrchestrator(t)
	repo := t.TempDir()
	writeDist(t, repo, "lib", "1.0", nil, nil, nil)
	writeDist(t, repo, "lib", "2.0", nil, nil, nil)

	installed, err := o.Install([]string{"lib"}, deployRoot, []string{repo}, nil, nil)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if len(installed) != 1 || installed[0].Version != "2.0" {
		t.Errorf("installed = %v, want lib-2.0", installed)
	}
}

func TestInstall_ProvidesSatisfiesDependency(t *testing.T) {
	o, deployRoot := newTestOrchestrator(t)
	repo := t.TempDir()
	writeDist(t, repo, "app", "1.0", []string{"widget"}, nil, nil)
	writeDist(t, repo, "bundle", "1.0", nil, nil, []string{"widget-1.0"})

	installed, err := o.Install([]string{"app", "bundle"}, deployRoot, []string{repo}, nil, nil)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	for _, d := range installed {
		if d.Name == "widget" {
			t.Error("a standalone widget should never be deployed; only bundle provides it")
		}
	}
}

func TestInstall_ConflictBlocks(t *testing.T) {
	o, deployRoot := newTestOrchestrator(t)
	repo := t.TempDir()
	writeDist(t, repo, "a", "1.0", nil, []string{"b"}, nil)
	writeDist(t, repo, "b", "1.0", nil, nil, nil)

	_, err := o.Install([]string{"a", "b"}, deployRoot, []string{repo}, nil, nil)
	if err == nil {
		t.Fatal("Install() should fail when a conflicts with b")
	}
}

func TestInstall_ArchFilterExcludes(t *testing.T) {
	o, deployRoot := newTestOrchestrator(t)
	repo := t.TempDir()
	dir := filepath.Join(repo, "x-1.0")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "dist.info"), []byte(`name = "x"
version = "1.0"
arch = "Linux"
type = "binary"
`), 0o644)

	_, err := o.Install([]string{"x"}, deployRoot, []string{repo}, nil, nil)
	if err == nil {
		t.Fatal("Install() should fail: host is Windows, candidate is Linux-only")
	}
}

func TestRemove_RoundTripsToPreInstallSnapshot(t *testing.T) {
	o, deployRoot := newTestOrchestrator(t)
	repo := t.TempDir()
	writeDist(t, repo, "a", "1.0", nil, nil, nil)

	before, _ := os.ReadDir(deployRoot)

	if _, err := o.Install([]string{"a"}, deployRoot, []string{repo}, nil, nil); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if err := o.Remove([]string{"a"}, deployRoot); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	deployed, err := o.GetDeployed(deployRoot)
	if err != nil {
		t.Fatalf("GetDeployed() error = %v", err)
	}
	if len(deployed) != 0 {
		t.Errorf("deployed = %v, want none after Remove", deployed)
	}

	after, _ := os.ReadDir(deployRoot)
	if len(after) != len(before)+1 {
		t.Fatalf("after = %v, before = %v: expected only dists/ (holding installed.manifest) to remain", after, before)
	}
}

func TestGetDeployed_IncludesProvidesAndHostProvides(t *testing.T) {
	o, deployRoot := newTestOrchestrator(t)
	o.cfg.HostProvides = []string{"compiler-1.0"}
	repo := t.TempDir()
	writeDist(t, repo, "bundle", "1.0", nil, nil, []string{"widget-1.0"})

	if _, err := o.Install([]string{"bundle"}, deployRoot, []string{repo}, nil, nil); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	deployed, err := o.GetDeployed(deployRoot)
	if err != nil {
		t.Fatalf("GetDeployed() error = %v", err)
	}

	var sawWidget, sawCompiler bool
	for _, d := range deployed {
		if d.Name == "widget" {
			sawWidget = true
		}
		if d.Name == "compiler" {
			sawCompiler = true
		}
	}
	if !sawWidget {
		t.Error("GetDeployed() should include a synthetic widget record from bundle's provides")
	}
	if !sawCompiler {
		t.Error("GetDeployed() should include a synthetic record for the configured host-provided compiler")
	}
}
