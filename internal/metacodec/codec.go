package metacodec

import "fmt"

// ParseRecord parses a dist.info-style text into a table Node.
func ParseRecord(src string) (*Node, error) {
	n, err := NewParser(src).ParseRecord()
	if err != nil {
		return nil, fmt.Errorf("metacodec: parsing record: %w", err)
	}
	return n, nil
}

// ParseManifest parses a dist.manifest-style text into an array Node whose
// items are each a dist record table.
func ParseManifest(src string) (*Node, error) {
	n, err := NewParser(src).ParseManifest()
	if err != nil {
		return nil, fmt.Errorf("metacodec: parsing manifest: %w", err)
	}
	return n, nil
}
