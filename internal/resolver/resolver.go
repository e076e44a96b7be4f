// Package resolver implements a recursive backtracking dependency
// resolver: given a list of name constraints and a sorted manifest, it
// produces an ordered list of DistInfo satisfying every requirement, every
// transitive dependency, and every conflict/consistency check.
package resolver

import (
	"fmt"

	"github.com/drahosp/luadist/internal/distinfo"
	"github.com/drahosp/luadist/internal/version"
)

// Resolver resolves a set of requirements against a manifest.
type Resolver struct {
	hostArch, hostType string
	logFn              func(string, ...interface{})
}

// NewResolver creates a Resolver bound to a host arch/type, used as the
// compatibility rule applied during candidate matching. When verbose is
// true, logFn receives a trace message at every candidate attempt and
// backtrack; otherwise tracing is silenced regardless of logFn.
func NewResolver(hostArch, hostType string, verbose bool, logFn func(string, ...interface{})) *Resolver {
	if !verbose || logFn == nil {
		logFn = func(string, ...interface{}) {}
	}
	return &Resolver{hostArch: hostArch, hostType: hostType, logFn: logFn}
}

// Resolve pops the head requirement, tries each
// matching candidate (in manifest order, so preferred candidates surface
// first), augment the pending list with the candidate's dependencies and
// the manifest with its synthetic "provided" records, recurse, and on
// success run the conflict/consistency checks against the accumulator.
//
// Sibling requirements are resolved ahead of a candidate's own dependencies
// (pending becomes rest-of-requirements ++ candidate's depends, not the
// reverse) so that a later sibling's provides can satisfy an earlier
// sibling's dependency before the resolver ever searches for it standalone
// — see the "Provides satisfies dep" scenario in DESIGN.md.
func (r *Resolver) Resolve(requirements []version.NameConstraint, manifest distinfo.Manifest) ([]*distinfo.DistInfo, error) {
	acc, err := r.resolve(requirements, manifest)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (r *Resolver) resolve(pending []version.NameConstraint, manifest distinfo.Manifest) ([]*distinfo.DistInfo, error) {
	if len(pending) == 0 {
		return nil, nil
	}
	req := pending[0]
	rest := pending[1:]

	candidates := matchCandidates(req, manifest, r.hostArch, r.hostType)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no suitable dist for %s", req.Name)
	}

	var lastErr error
	for _, c := range candidates {
		r.logFn("resolver: trying %s-%s for %s", c.Name, c.Version, req.Name)

		childPending := append(append([]version.NameConstraint{}, rest...), depsAsConstraints(c, manifest)...)
		augmented := augmentWithProvides(c, manifest)

		acc, err := r.resolve(childPending, augmented)
		if err != nil {
			r.logFn("resolver: %s-%s failed: %v", c.Name, c.Version, err)
			lastErr = err
			continue
		}

		if c.Provided != nil {
			acc = append(acc, c.Provided)
			return acc, nil
		}

		ok, conflictErr := checkConsistency(c, acc)
		if !ok {
			r.logFn("resolver: %s-%s conflicts: %v", c.Name, c.Version, conflictErr)
			lastErr = conflictErr
			continue
		}
		if conflictErr != nil {
			// already-provided short circuit: same name+version already in acc
			return acc, nil
		}

		return append(acc, c), nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no suitable dist for %s", req.Name)
}

// matchCandidates returns every manifest entry whose name matches req.Name,
// whose version satisfies req, and whose arch/type is eligible for
// hostArch/hostType, in manifest order (already sorted by distinfo.Sort:
// higher version, concrete arch, binary type first). Synthetic "provided"
// records always pass the arch/type check since they inherit it from the
// providing dist, which was itself checked when it matched as a candidate.
func matchCandidates(req version.NameConstraint, manifest distinfo.Manifest, hostArch, hostType string) []*distinfo.DistInfo {
	var out []*distinfo.DistInfo
	for _, d := range manifest {
		if d.Name != req.Name {
			continue
		}
		if !req.Satisfies(d.Version) {
			continue
		}
		if !distinfo.ArchTypeCompatible(d, hostArch, hostType) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// depsAsConstraints resolves c.Depends for c's own arch/type and parses
// each entry into a NameConstraint.
func depsAsConstraints(c *distinfo.DistInfo, manifest distinfo.Manifest) []version.NameConstraint {
	entries := c.Depends.Resolve(c.Arch, c.Type)
	out := make([]version.NameConstraint, len(entries))
	for i, e := range entries {
		out[i] = version.ParseConstraint(e)
	}
	return out
}

// augmentWithProvides prepends one synthetic DistInfo per entry of
// c.Provides ahead of manifest, each inheriting c's arch/type and carrying
// c as its Provided back-reference.
func augmentWithProvides(c *distinfo.DistInfo, manifest distinfo.Manifest) distinfo.Manifest {
	entries := c.Provides.Resolve(c.Arch, c.Type)
	if len(entries) == 0 {
		return manifest
	}
	synthetic := make(distinfo.Manifest, len(entries))
	for i, e := range entries {
		name, ver := version.ParseNameVersion(e)
		synthetic[i] = &distinfo.DistInfo{
			Name:     name,
			Version:  ver,
			Arch:     c.Arch,
			Type:     c.Type,
			Provided: c,
		}
	}
	out := make(distinfo.Manifest, 0, len(synthetic)+len(manifest))
	out = append(out, synthetic...)
	out = append(out, manifest...)
	return out
}

// checkConsistency runs the conflict/consistency checks of candidate c
// against every dist already in acc. The second return value
// is non-nil (but ok is true) when c is found to already be provided by an
// identical-version entry already in acc, signaling the caller to return
// acc unmodified rather than append c again.
func checkConsistency(c *distinfo.DistInfo, acc []*distinfo.DistInfo) (ok bool, alreadyProvided error) {
	for _, p := range acc {
		if p.Name == c.Name {
			if p.Version == c.Version {
				return true, fmt.Errorf("already provided by %s-%s", p.Name, p.Version)
			}
			return false, fmt.Errorf("%s-%s blocked by %s-%s", c.Name, c.Version, p.Name, p.Version)
		}

		for _, e := range p.Depends.Resolve(p.Arch, p.Type) {
			nc := version.ParseConstraint(e)
			if nc.Name == c.Name && !nc.Satisfies(c.Version) {
				return false, fmt.Errorf("%s-%s required by %s-%s but unsatisfied", c.Name, c.Version, p.Name, p.Version)
			}
		}
		for _, e := range p.Conflicts.Resolve(p.Arch, p.Type) {
			nc := version.ParseConstraint(e)
			if nc.Name == c.Name && nc.Satisfies(c.Version) {
				return false, fmt.Errorf("%s-%s conflicts with %s-%s", c.Name, c.Version, p.Name, p.Version)
			}
		}
		for _, e := range c.Conflicts.Resolve(c.Arch, c.Type) {
			nc := version.ParseConstraint(e)
			if nc.Name == p.Name && nc.Satisfies(p.Version) {
				return false, fmt.Errorf("%s-%s conflicts with %s-%s", c.Name, c.Version, p.Name, p.Version)
			}
		}
	}
	return true, nil
}
