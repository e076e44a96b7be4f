// Package distinfo defines the DistInfo metadata record, the constraint-list
// polymorphism carried by its depends/conflicts/provides fields, and the
// Manifest ordering rule.
package distinfo

import "github.com/drahosp/luadist/internal/metacodec"

// DistInfo is the immutable metadata describing one artifact. Path is
// populated by the manifest pipeline, Files by package operations, and
// Provided by the resolver and orchestrator when they synthesize provides
// records; they are never author-written fields of a dist.info source file.
type DistInfo struct {
	Name    string
	Version string
	Arch    string
	Type    string

	Depends   *ConstraintSpec
	Conflicts *ConstraintSpec
	Provides  *ConstraintSpec

	URL        string
	Desc       string
	Author     string
	Maintainer string
	License    string
	Message    string

	// Path is the origin locator: a repository-relative path, a local
	// directory, or a remote URL. Populated by the manifest pipeline.
	Path string

	// Files is the ordered sequence of paths this dist installed outside
	// its own per-dist directory. Populated by package operations.
	Files []string

	// Provided back-references the DistInfo this record was synthesized
	// from when it represents a "provides" entry rather than an
	// author-authored dist. Never set on a record loaded from disk.
	Provided *DistInfo

	// raw carries any dist.info field this type doesn't name explicitly
	// (vendors occasionally add custom keys such as homepage), captured by
	// FromNode and re-emitted by ToNode, after the known fields, so a record
	// keeps fields this package has never heard of when it is re-serialized.
	// The output is not byte-identical to the input: ToNode writes fields in
	// its own fixed order. The resolver and orchestrator never read it.
	raw []metacodec.Field
}

// DefaultArch and DefaultType are applied by the manifest pipeline's
// validator when a candidate omits them.
const (
	DefaultArch = "Universal"
	DefaultType = "source"
)

// ApplyDefaults fills Arch and Type with their mandated defaults when
// unset. It is idempotent.
func ApplyDefaults(d *DistInfo) {
	if d.Arch == "" {
		d.Arch = DefaultArch
	}
	if d.Type == "" {
		d.Type = DefaultType
	}
}

// Clone returns a shallow copy of d suitable for mutation (e.g. stamping
// Path or Files): the Files and raw slices get fresh backing arrays, while
// the Depends/Conflicts/Provides specs are shared with the original.
func (d *DistInfo) Clone() *DistInfo {
	c := *d
	c.Files = append([]string(nil), d.Files...)
	c.raw = append([]metacodec.Field(nil), d.raw...)
	return &c
}
