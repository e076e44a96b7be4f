// Package metacodec implements the round-trip text format used for
// dist.info records and dist.manifest files: a tree of scalars, ordered
// sequences, and string-keyed maps, written as table literals.
//
// Loading never evaluates the source as code: it parses the grammar
// directly with a dedicated recursive-descent parser, so there is no scope
// in which loaded text could reference anything at all, let alone an
// ambient binding.
package metacodec

// Kind identifies which of the table-literal's four shapes a Node holds.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindArray
	KindTable
)

// Node is one value in a parsed table-literal tree: a quoted/long-bracket
// string, a bare number, an ordered sequence, or a string-keyed table.
// Sequences and maps share this single type; Kind tells them apart, with
// sequence entries held in Items and keyed entries in Fields.
type Node struct {
	Kind Kind

	Str string
	Num float64

	Items  []*Node // populated when Kind == KindArray
	Fields []Field // populated when Kind == KindTable
}

// Field is one key/value entry of a KindTable node.
type Field struct {
	Key   string
	Value *Node
}

// String builds a KindString leaf.
func String(s string) *Node { return &Node{Kind: KindString, Str: s} }

// Number builds a KindNumber leaf.
func Number(n float64) *Node { return &Node{Kind: KindNumber, Num: n} }

// Array builds a KindArray node from its items, in order.
func Array(items ...*Node) *Node { return &Node{Kind: KindArray, Items: items} }

// Table builds a KindTable node from its fields, in order.
func Table(fields ...Field) *Node { return &Node{Kind: KindTable, Fields: fields} }

// Get returns the value of the first field named key, if any.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindTable {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// IsEmpty reports whether an array or table node carries no entries, or a
// nil node (field absent entirely).
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case KindArray:
		return len(n.Items) == 0
	case KindTable:
		return len(n.Fields) == 0
	default:
		return false
	}
}
