package metacodec

import (
	"fmt"
	"strconv"
	"strings"
)

var identRe = identMatcher()

func identMatcher() func(string) bool {
	return func(s string) bool {
		if s == "" {
			return false
		}
		for i, r := range s {
			if i == 0 {
				if !isIdentStart(r) {
					return false
				}
				continue
			}
			if !isIdentCont(r) {
				return false
			}
		}
		return true
	}
}

// WriteRecord renders a table node as a dist.info-style sequence of
// top-level "key = value" assignments, one per line.
func WriteRecord(n *Node) string {
	var b strings.Builder
	for _, f := range n.Fields {
		b.WriteString(writeKey(f.Key))
		b.WriteString(" = ")
		writeValue(&b, f.Value, 0)
		b.WriteString("\n")
	}
	return b.String()
}

// WriteManifest renders an array node as a dist.manifest-style
// "return { ... }true" expression. The trailing "true" sentinel is emitted
// exactly as the format requires, for bit-compatibility with existing
// published manifests.
func WriteManifest(n *Node) string {
	var b strings.Builder
	b.WriteString("return ")
	writeValue(&b, n, 0)
	b.WriteString("true\n")
	return b.String()
}

func writeKey(key string) string {
	if identRe(key) {
		return key
	}
	return fmt.Sprintf("_G['%s']", strings.ReplaceAll(key, "'", "\\'"))
}

func writeValue(b *strings.Builder, n *Node, indent int) {
	switch n.Kind {
	case KindString:
		b.WriteString(quoteString(n.Str))
	case KindNumber:
		b.WriteString(formatNumber(n.Num))
	case KindArray:
		writeArray(b, n, indent)
	case KindTable:
		writeTable(b, n, indent)
	}
}

func quoteString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func pad(indent int) string {
	return strings.Repeat("  ", indent)
}

func writeArray(b *strings.Builder, n *Node, indent int) {
	if len(n.Items) == 0 {
		b.WriteString("{ }")
		return
	}
	// a short sequence of scalars prints on one line; anything deeper
	// (nested tables, e.g. a manifest's array of dist records) prints one
	// entry per line for readability.
	if allScalars(n.Items) {
		b.WriteString("{ ")
		for i, item := range n.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item, indent)
		}
		b.WriteString(" }")
		return
	}

	b.WriteString("{\n")
	for _, item := range n.Items {
		b.WriteString(pad(indent + 1))
		writeValue(b, item, indent+1)
		b.WriteString(",\n")
	}
	b.WriteString(pad(indent))
	b.WriteString("}")
}

func allScalars(items []*Node) bool {
	for _, it := range items {
		if it.Kind == KindArray || it.Kind == KindTable {
			return false
		}
	}
	return true
}

func writeTable(b *strings.Builder, n *Node, indent int) {
	if len(n.Fields) == 0 {
		b.WriteString("{ }")
		return
	}
	b.WriteString("{\n")
	for _, f := range n.Fields {
		b.WriteString(pad(indent + 1))
		b.WriteString(writeKey(f.Key))
		b.WriteString(" = ")
		writeValue(b, f.Value, indent+1)
		b.WriteString(",\n")
	}
	b.WriteString(pad(indent))
	b.WriteString("}")
}
