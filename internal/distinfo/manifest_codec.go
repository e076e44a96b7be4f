package distinfo

import "github.com/drahosp/luadist/internal/metacodec"

// SerializeRecord renders a single DistInfo as dist.info text.
func SerializeRecord(d *DistInfo) string {
	return metacodec.WriteRecord(d.ToNode())
}

// ParseRecordText parses dist.info text into a DistInfo.
func ParseRecordText(src string) (*DistInfo, error) {
	n, err := metacodec.ParseRecord(src)
	if err != nil {
		return nil, err
	}
	return FromNode(n), nil
}

// SerializeManifest renders a Manifest as dist.manifest text.
func SerializeManifest(m Manifest) string {
	items := make([]*metacodec.Node, len(m))
	for i, d := range m {
		items[i] = d.ToNode()
	}
	return metacodec.WriteManifest(metacodec.Array(items...))
}

// ParseManifestText parses dist.manifest text into a Manifest, in file
// order (unsorted).
func ParseManifestText(src string) (Manifest, error) {
	n, err := metacodec.ParseManifest(src)
	if err != nil {
		return nil, err
	}
	m := make(Manifest, len(n.Items))
	for i, item := range n.Items {
		m[i] = FromNode(item)
	}
	return m, nil
}
