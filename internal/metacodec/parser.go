package metacodec

import "fmt"

// Parser parses the table-literal grammar into a Node tree. It never
// evaluates anything; it only recognizes strings, numbers, arrays, and
// tables, plus two top-level shapes: a bare sequence of "key = value"
// assignments (dist.info) and a "return { ... }true" expression
// (dist.manifest).
type Parser struct {
	lex  *lexer
	cur  token
	peek token
	have bool
}

// NewParser creates a parser over src.
func NewParser(src string) *Parser {
	return &Parser{lex: newLexer(src)}
}

func (p *Parser) advance() error {
	if p.have {
		p.cur = p.peek
		p.have = false
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *Parser) peekToken() (token, error) {
	if !p.have {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peek = t
		p.have = true
	}
	return p.peek, nil
}

// ParseRecord parses a dist.info-style file: top-level "key = value"
// assignments with no enclosing braces, terminated by EOF.
func (p *Parser) ParseRecord() (*Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	var fields []Field
	for p.cur.kind != tokEOF {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokEquals {
			return nil, fmt.Errorf("metacodec: expected '=' after key %q", key)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Value: val})

		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return &Node{Kind: KindTable, Fields: fields}, nil
}

// ParseManifest parses a dist.manifest-style file: "return { ... }true".
// The trailing "true" is a historical sentinel kept only for
// bit-compatibility with existing published manifests; it carries no data
// and is discarded once recognized.
func (p *Parser) ParseManifest() (*Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.kind != tokReturn {
		return nil, fmt.Errorf("metacodec: expected 'return' at start of manifest")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	arr, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if arr.Kind != KindArray && !arr.IsEmpty() {
		// a manifest is a table of dist records: treat a non-array table as
		// a single-element array for tolerance with hand-edited files.
		arr = &Node{Kind: KindArray, Items: []*Node{arr}}
	}

	if p.cur.kind != tokTrue {
		return nil, fmt.Errorf("metacodec: expected trailing 'true' sentinel in manifest")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, fmt.Errorf("metacodec: unexpected trailing content after manifest")
	}

	return arr, nil
}

func (p *Parser) parseKey() (string, error) {
	switch p.cur.kind {
	case tokIdent:
		if p.cur.text == "_G" {
			return p.parseGlobalKey()
		}
		name := p.cur.text
		if err := p.advance(); err != nil {
			return "", err
		}
		return name, nil
	default:
		return "", fmt.Errorf("metacodec: expected identifier key, got token kind %d", p.cur.kind)
	}
}

// parseGlobalKey parses the _G['<key>'] form used for keys containing
// characters that would not be valid bare identifiers.
func (p *Parser) parseGlobalKey() (string, error) {
	if err := p.advance(); err != nil { // consume "_G"
		return "", err
	}
	if p.cur.kind != tokLBracket {
		return "", fmt.Errorf("metacodec: expected '[' after _G")
	}
	if err := p.advance(); err != nil {
		return "", err
	}
	if p.cur.kind != tokString {
		return "", fmt.Errorf("metacodec: expected quoted key inside _G[...]")
	}
	key := p.cur.text
	if err := p.advance(); err != nil {
		return "", err
	}
	if p.cur.kind != tokRBracket {
		return "", fmt.Errorf("metacodec: expected ']' closing _G[...]")
	}
	if err := p.advance(); err != nil {
		return "", err
	}
	return key, nil
}

func (p *Parser) parseValue() (*Node, error) {
	switch p.cur.kind {
	case tokString:
		n := String(p.cur.text)
		return n, p.advance()
	case tokNumber:
		n := Number(p.cur.num)
		return n, p.advance()
	case tokLBrace:
		return p.parseTableLiteral()
	default:
		return nil, fmt.Errorf("metacodec: unexpected token kind %d where a value was expected", p.cur.kind)
	}
}

// parseTableLiteral parses a "{ ... }" literal. Entries with an explicit key
// become Table fields; bare entries become Array items. A literal that
// mixes the two is rejected with an error (mirrors the data model: a
// constraint list is either a bare sequence or an arch/type-keyed map,
// never both at once).
func (p *Parser) parseTableLiteral() (*Node, error) {
	if err := p.advance(); err != nil { // consume "{"
		return nil, err
	}

	var items []*Node
	var fields []Field
	isTable := false

	for p.cur.kind != tokRBrace {
		keyed, err := p.looksLikeKeyedEntry()
		if err != nil {
			return nil, err
		}
		if keyed {
			isTable = true
			key, err := p.parseKey()
			if err != nil {
				return nil, err
			}
			if p.cur.kind != tokEquals {
				return nil, fmt.Errorf("metacodec: expected '=' after key %q", key)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Key: key, Value: val})
		} else {
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}

		if p.cur.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	if p.cur.kind != tokRBrace {
		return nil, fmt.Errorf("metacodec: expected '}' closing table literal")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if isTable && len(items) > 0 {
		return nil, fmt.Errorf("metacodec: table literal mixes keyed and bare entries")
	}
	if isTable {
		return &Node{Kind: KindTable, Fields: fields}, nil
	}
	return &Node{Kind: KindArray, Items: items}, nil
}

// looksLikeKeyedEntry peeks ahead to distinguish "key = value" from a bare
// value entry without consuming tokens on the non-matching path.
func (p *Parser) looksLikeKeyedEntry() (bool, error) {
	if p.cur.kind != tokIdent {
		return false, nil
	}
	if p.cur.text == "_G" {
		return true, nil
	}
	next, err := p.peekToken()
	if err != nil {
		return false, err
	}
	return next.kind == tokEquals, nil
}
