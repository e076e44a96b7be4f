package distinfo

import "github.com/drahosp/luadist/internal/version"

// ConstraintSpec is the tagged-variant form of a constraint list: either a
// bare sequence of "<name> [<op> <ver>]…" entries, or a map keyed first by
// arch and then by type that selects the variant applying on the host.
// The tree is kept as loaded; Resolve descends it on every call, with the
// arch and type the caller passes.
type ConstraintSpec struct {
	List  []string
	Keyed map[string]*ConstraintSpec
}

// IsKeyed reports whether this node is an arch/type map rather than a bare
// list.
func (s *ConstraintSpec) IsKeyed() bool {
	return s != nil && s.Keyed != nil
}

// Resolve descends this constraint tree for the given host arch and type:
// first by arch if that key exists, then by type if that key exists,
// otherwise the current level is treated as the list. A nil receiver
// resolves to an empty list (no constraints).
func (s *ConstraintSpec) Resolve(hostArch, hostType string) []string {
	node := s
	if node == nil {
		return nil
	}
	if node.IsKeyed() {
		if next, ok := node.Keyed[hostArch]; ok {
			node = next
		}
	}
	if node != nil && node.IsKeyed() {
		if next, ok := node.Keyed[hostType]; ok {
			node = next
		}
	}
	if node == nil || node.IsKeyed() {
		return nil
	}
	return node.List
}

// ResolveParsed is Resolve followed by parsing each entry into a
// NameConstraint.
func (s *ConstraintSpec) ResolveParsed(hostArch, hostType string) []version.NameConstraint {
	raw := s.Resolve(hostArch, hostType)
	out := make([]version.NameConstraint, 0, len(raw))
	for _, entry := range raw {
		out = append(out, version.ParseConstraint(entry))
	}
	return out
}

// NewConstraintList builds a bare (non-keyed) ConstraintSpec.
func NewConstraintList(entries ...string) *ConstraintSpec {
	return &ConstraintSpec{List: entries}
}
