// Package version implements the dotted/dashed version tokenizer, total-order
// comparison, and constraint satisfaction used by the manifest pipeline and
// the resolver.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Tokenize splits a version string on '.' and '-' into its component tokens.
func Tokenize(v string) []string {
	if v == "" {
		return nil
	}
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

// Compare returns a total order over two version strings: negative if a < b,
// zero if equal, positive if a > b.
//
// Corresponding tokens are compared numerically when both are numeric,
// lexicographically otherwise. Where one side has run out of tokens, a
// missing token is lower than a numeric one ("2" < "2.0" < "2.0.1") but
// higher than a non-numeric qualifier: an unqualified release (e.g. "1.0")
// outranks the same prefix carrying a trailing qualifier (e.g. "1.0-beta"),
// mirroring how a missing pre-release tag is read as "final" rather than as
// "nothing". See DESIGN.md for this policy.
func Compare(a, b string) int {
	at := Tokenize(a)
	bt := Tokenize(b)

	max := len(at)
	if len(bt) > max {
		max = len(bt)
	}

	for i := 0; i < max; i++ {
		hasA := i < len(at)
		hasB := i < len(bt)
		switch {
		case hasA && !hasB:
			if _, numeric := asNumber(at[i]); numeric {
				return 1
			}
			return -1
		case !hasA && hasB:
			if _, numeric := asNumber(bt[i]); numeric {
				return -1
			}
			return 1
		default:
			if c := compareToken(at[i], bt[i]); c != 0 {
				return c
			}
		}
	}
	return 0
}

// Equal reports whether a and b are equal after tokenization.
func Equal(a, b string) bool {
	return Compare(a, b) == 0
}

func compareToken(a, b string) int {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func asNumber(tok string) (int64, bool) {
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Op is a constraint relational operator.
type Op string

const (
	OpEQ Op = "="
	OpEQ2 Op = "=="
	OpLT Op = "<"
	OpLE Op = "<="
	OpGT Op = ">"
	OpGE Op = ">="
	OpNE Op = "~="
	OpNE2 Op = "!="
)

// Constraint is a single (operator, version) pair.
type Constraint struct {
	Op      Op
	Version string
}

// Holds reports whether version v satisfies this single constraint.
func (c Constraint) Holds(v string) bool {
	cmp := Compare(v, c.Version)
	switch c.Op {
	case OpEQ, OpEQ2:
		return cmp == 0
	case OpNE, OpNE2:
		return cmp != 0
	case OpLT:
		return cmp < 0
	case OpLE:
		return cmp <= 0
	case OpGT:
		return cmp > 0
	case OpGE:
		return cmp >= 0
	default:
		return false
	}
}

// NameConstraint is the parsed form of one constraint-list entry: a bare
// name plus zero or more (op, version) pairs. The empty constraint matches
// every version.
type NameConstraint struct {
	Name        string
	Constraints []Constraint
}

// Satisfies reports whether ver satisfies every constraint in nc. A
// NameConstraint with no Constraints always holds.
func (nc NameConstraint) Satisfies(ver string) bool {
	for _, c := range nc.Constraints {
		if !c.Holds(ver) {
			return false
		}
	}
	return true
}

var opRe = regexp.MustCompile(`^(==|~=|!=|<=|>=|<|>|=)([A-Za-z0-9_.:\-]+)`)

// opBoundary finds the index of the first character that can start an
// operator token, i.e. where the bare name ends.
func opBoundary(s string) int {
	for i, r := range s {
		switch r {
		case '=', '<', '>', '~', '!':
			return i
		}
	}
	return len(s)
}

// ParseConstraint parses one constraint-list entry of the form
// "<name> [<op> <ver>]…" with no separators between adjacent (op, version)
// pairs, e.g. "name>=1.2<2" yields Name "name" and Constraints
// [(>=, "1.2"), (<, "2")]. Order of the pairs within the string is
// insignificant to satisfaction: all of them must hold.
func ParseConstraint(raw string) NameConstraint {
	raw = strings.TrimSpace(raw)
	idx := opBoundary(raw)
	nc := NameConstraint{Name: strings.TrimSpace(raw[:idx])}

	rest := raw[idx:]
	for rest != "" {
		m := opRe.FindStringSubmatch(rest)
		if m == nil {
			break
		}
		nc.Constraints = append(nc.Constraints, Constraint{Op: Op(m[1]), Version: m[2]})
		rest = rest[len(m[0]):]
	}
	return nc
}

// ParseNameVersion splits a "name-version" entry such as "widget-1.0" or a
// host-provides entry, as opposed to a constraint entry like "widget>=1.0".
// It finds the last '-' after which the remainder begins with a digit,
// since dist names may themselves contain dashes (e.g. "lua-cjson") while a
// version always starts numerically.
func ParseNameVersion(raw string) (name, ver string) {
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] != '-' {
			continue
		}
		if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '9' {
			return raw[:i], raw[i+1:]
		}
	}
	return raw, ""
}
