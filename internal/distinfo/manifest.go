package distinfo

import (
	"sort"

	"github.com/drahosp/luadist/internal/version"
)

// Manifest is a finite ordered sequence of DistInfo records.
type Manifest []*DistInfo

// Sort orders m in place per its stable sort key: name ascending, then
// version descending, then arch with "Universal" preferred last among ties
// (the concrete arch wins), then type with "source" preferred last among
// ties (binary beats source when both are present). The sort is stable so
// that, among equal keys, earlier entries (e.g. from a higher-priority
// repository) keep their relative order.
func Sort(m Manifest) {
	sort.SliceStable(m, func(i, j int) bool {
		return Less(m[i], m[j])
	})
}

// Less reports whether a sorts before b under the manifest ordering.
func Less(a, b *DistInfo) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if c := version.Compare(a.Version, b.Version); c != 0 {
		return c > 0 // descending
	}
	if ak, bk := archRank(a.Arch), archRank(b.Arch); ak != bk {
		return ak < bk
	}
	if tk, bk := typeRank(a.Type), typeRank(b.Type); tk != bk {
		return tk < bk
	}
	return false
}

// archRank sorts "Universal" after any concrete arch among ties.
func archRank(arch string) int {
	if arch == DefaultArch {
		return 1
	}
	return 0
}

// typeRank sorts "source" after any binary type among ties.
func typeRank(typ string) int {
	if typ == DefaultType {
		return 1
	}
	return 0
}
