package parser

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wat/internal/token"
)

func (p *Parser) parseModule() (*Module, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	if t := p.next(); t == nil || t.Type != token.Ident || t.Value != "module" {
		return nil, fmt.Errorf("expected 'module'")
	}
	p.mod = &Module{}
	if name := p.optionalName(); name != "" {
		p.mod.Name = name[1:]
	}
	if err := p.prescanTypes(); err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t == nil {
			return nil, fmt.Errorf("unexpected end of input")
		}
		if t.Type == token.RParen {
			p.next()
			break
		}
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		kw, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}

		switch kw.Value {
		case "type":
			st, err := p.parseTypeDef()
			if err != nil {
				return nil, err
			}
			p.mod.Groups = append(p.mod.Groups, []gctype.SubType{st})
		case "rec":
			var group []gctype.SubType
			for p.peekKeyword("type") {
				p.pos += 2
				st, err := p.parseTypeDef()
				if err != nil {
					return nil, err
				}
				group = append(group, st)
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
			if len(group) > 0 {
				p.mod.Groups = append(p.mod.Groups, group)
			}
		default:
			// Functions, memories and the rest carry no type definitions.
			if err := p.skipRest(); err != nil {
				return nil, err
			}
		}
	}

	if t := p.peek(); t != nil {
		return nil, fmt.Errorf("line %d: unexpected %q after module", t.Line, t.Value)
	}
	return p.mod, nil
}

// prescanTypes assigns indices to all type definitions so that references
// may point forward, as recursive types need.
func (p *Parser) prescanTypes() error {
	saved := p.pos
	defer func() { p.pos = saved }()

	var idx uint32
	define := func() error {
		t := p.peek()
		if t != nil && t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
			if _, dup := p.typeMap[t.Value]; dup {
				return fmt.Errorf("line %d: duplicate type %s", t.Line, t.Value)
			}
			p.typeMap[t.Value] = idx
			if p.mod.TypeNames == nil {
				p.mod.TypeNames = make(map[uint32]string)
			}
			p.mod.TypeNames[idx] = t.Value[1:]
		}
		idx++
		return p.skipRest()
	}

	for {
		t := p.peek()
		if t == nil || t.Type == token.RParen {
			return nil
		}
		if t.Type != token.LParen {
			p.next()
			continue
		}
		switch {
		case p.peekKeyword("type"):
			p.pos += 2
			if err := define(); err != nil {
				return err
			}
		case p.peekKeyword("rec"):
			p.pos += 2
			for p.peekKeyword("type") {
				p.pos += 2
				if err := define(); err != nil {
					return err
				}
			}
			if err := p.skipRest(); err != nil {
				return err
			}
		default:
			p.next()
			if err := p.skipRest(); err != nil {
				return err
			}
		}
	}
}

// parseTypeDef parses the rest of (type $name? <subtype>) after 'type'.
func (p *Parser) parseTypeDef() (gctype.SubType, error) {
	p.optionalName()
	if _, err := p.expect(token.LParen); err != nil {
		return gctype.SubType{}, err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return gctype.SubType{}, err
	}

	var st gctype.SubType
	if kw.Value == "sub" {
		st, err = p.parseSub()
	} else {
		st.Composite, err = p.parseCompType(kw)
	}
	if err != nil {
		return st, err
	}
	_, err = p.expect(token.RParen)
	return st, err
}

// parseSub parses the rest of (sub final? <typeidx>* <comptype>).
func (p *Parser) parseSub() (gctype.SubType, error) {
	var st gctype.SubType
	if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == "final" {
		p.next()
		st.Final = true
	}
	for p.isTypeIdx() {
		idx, err := p.parseTypeIdx()
		if err != nil {
			return st, err
		}
		st.Parents = append(st.Parents, idx)
	}
	if _, err := p.expect(token.LParen); err != nil {
		return st, err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return st, err
	}
	if st.Composite, err = p.parseCompType(kw); err != nil {
		return st, err
	}
	_, err = p.expect(token.RParen)
	return st, err
}

// parseCompType parses a composite type after its keyword, including the
// closing ')'.
func (p *Parser) parseCompType(kw *token.Token) (gctype.CompositeType, error) {
	switch kw.Value {
	case "struct":
		return p.parseStruct()
	case "array":
		elem, err := p.parseFieldType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return &gctype.ArrayType{Elem: elem}, nil
	case "func":
		return p.parseFunc()
	}
	return nil, fmt.Errorf("line %d: unknown type form %q", kw.Line, kw.Value)
}

func (p *Parser) parseStruct() (*gctype.StructType, error) {
	st := &gctype.StructType{}
	for p.peekKeyword("field") {
		p.pos += 2
		named := p.optionalName() != ""
		n := 0
		for {
			t := p.peek()
			if t == nil {
				return nil, fmt.Errorf("unexpected end of input")
			}
			if t.Type == token.RParen {
				p.next()
				break
			}
			f, err := p.parseFieldType()
			if err != nil {
				return nil, err
			}
			st.Fields = append(st.Fields, f)
			n++
		}
		if named && n != 1 {
			return nil, fmt.Errorf("named field must have exactly one type")
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) parseFunc() (*gctype.FuncType, error) {
	ft := &gctype.FuncType{}
	for p.peekKeyword("param") {
		p.pos += 2
		vals, err := p.parseValTypeList(p.optionalName() != "")
		if err != nil {
			return nil, err
		}
		ft.Params = append(ft.Params, vals...)
	}
	for p.peekKeyword("result") {
		p.pos += 2
		vals, err := p.parseValTypeList(false)
		if err != nil {
			return nil, err
		}
		ft.Results = append(ft.Results, vals...)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return ft, nil
}

func (p *Parser) parseValTypeList(named bool) ([]gctype.ValueType, error) {
	var out []gctype.ValueType
	for {
		t := p.peek()
		if t == nil {
			return nil, fmt.Errorf("unexpected end of input")
		}
		if t.Type == token.RParen {
			p.next()
			break
		}
		v, err := p.parseValType()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if named && len(out) != 1 {
		return nil, fmt.Errorf("named parameter must have exactly one type")
	}
	return out, nil
}
