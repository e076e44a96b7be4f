package resolver

import (
	"testing"

	"github.com/drahosp/luadist/internal/distinfo"
	"github.com/drahosp/luadist/internal/version"
)

func newResolver() *Resolver {
	return NewResolver("Windows", "binary", false, nil)
}

func d(name, ver, arch, typ string, depends, conflicts, provides []string) *distinfo.DistInfo {
	di := &distinfo.DistInfo{Name: name, Version: ver, Arch: arch, Type: typ}
	if len(depends) > 0 {
		di.Depends = distinfo.NewConstraintList(depends...)
	}
	if len(conflicts) > 0 {
		di.Conflicts = distinfo.NewConstraintList(conflicts...)
	}
	if len(provides) > 0 {
		di.Provides = distinfo.NewConstraintList(provides...)
	}
	return di
}

func reqs(names ...string) []version.NameConstraint {
	out := make([]version.NameConstraint, len(names))
	for i, n := range names {
		out[i] = version.ParseConstraint(n)
	}
	return out
}

func names(dists []*distinfo.DistInfo) []string {
	out := make([]string, len(dists))
	for i, x := range dists {
		out[i] = x.Name + "-" + x.Version
	}
	return out
}

func TestResolve_LinearChain(t *testing.T) {
	m := distinfo.Manifest{
		d("a", "1.0", "Universal", "source", []string{"b"}, nil, nil),
		d("b", "1.0", "Universal", "source", []string{"c"}, nil, nil),
		d("c", "1.0", "Universal", "source", nil, nil, nil),
	}
	distinfo.Sort(m)

	got, err := newResolver().Resolve(reqs("a"), m)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []string{"c-1.0", "b-1.0", "a-1.0"}
	gotNames := names(got)
	for i, w := range want {
		if gotNames[i] != w {
			t.Fatalf("install order = %v, want %v", gotNames, want)
		}
	}
}

func TestResolve_VersionPreference(t *testing.T) {
	m := distinfo.Manifest{
		d("lib", "1.0", "Universal", "source", nil, nil, nil),
		d("lib", "2.0", "Universal", "source", nil, nil, nil),
	}
	distinfo.Sort(m)

	got, err := newResolver().Resolve(reqs("lib<2"), m)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != 1 || got[0].Version != "1.0" {
		t.Errorf("got %v, want lib-1.0", names(got))
	}

	got, err = newResolver().Resolve(reqs("lib"), m)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != 1 || got[0].Version != "2.0" {
		t.Errorf("got %v, want lib-2.0 (highest preferred)", names(got))
	}
}

func TestResolve_ProvidesSatisfiesDependency(t *testing.T) {
	m := distinfo.Manifest{
		d("app", "1.0", "Universal", "source", []string{"widget"}, nil, nil),
		d("bundle", "1.0", "Universal", "source", nil, nil, []string{"widget-1.0"}),
	}
	distinfo.Sort(m)

	got, err := newResolver().Resolve(reqs("app", "bundle"), m)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for _, x := range got {
		if x.Name == "widget" && x.Provided == nil {
			t.Errorf("widget should only appear as a provided record, got %+v", x)
		}
	}
}

func TestResolve_ConflictBlocks(t *testing.T) {
	m := distinfo.Manifest{
		d("a", "1.0", "Universal", "source", nil, []string{"b"}, nil),
		d("b", "1.0", "Universal", "source", nil, nil, nil),
	}
	distinfo.Sort(m)

	_, err := newResolver().Resolve(reqs("a", "b"), m)
	if err == nil {
		t.Fatal("Resolve() should fail when a conflicts with b")
	}
}

func TestResolve_ArchFilterExcludes(t *testing.T) {
	m := distinfo.Manifest{
		d("x", "1.0", "Linux", "binary", nil, nil, nil),
	}
	distinfo.Sort(m)

	_, err := newResolver().Resolve(reqs("x"), m)
	if err == nil {
		t.Fatal("Resolve() should fail: host is Windows, candidate is Linux-only")
	}
}

func TestResolve_NoCandidate(t *testing.T) {
	_, err := newResolver().Resolve(reqs("missing"), distinfo.Manifest{})
	if err == nil {
		t.Fatal("Resolve() should fail for an empty manifest")
	}
}
