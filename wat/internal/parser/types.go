package parser

import (
	"fmt"

	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wat/internal/token"
)

var numTypes = map[string]gctype.NumType{
	"i32":  gctype.I32,
	"i64":  gctype.I64,
	"f32":  gctype.F32,
	"f64":  gctype.F64,
	"v128": gctype.V128,
}

var abstractHeaps = map[string]gctype.AbstractHeap{
	"func":   gctype.HeapFunc,
	"extern": gctype.HeapExtern,
	"any":    gctype.HeapAny,
	"eq":     gctype.HeapEq,
	"i31":    gctype.HeapI31,
	"data":   gctype.HeapData,
}

// Shorthand reference types.
var refShorthands = map[string]func() *gctype.RefType{
	"funcref":   func() *gctype.RefType { return gctype.RefNull(gctype.HeapFunc) },
	"externref": func() *gctype.RefType { return gctype.RefNull(gctype.HeapExtern) },
	"anyref":    func() *gctype.RefType { return gctype.RefNull(gctype.HeapAny) },
	"eqref":     func() *gctype.RefType { return gctype.RefNull(gctype.HeapEq) },
	"i31ref":    func() *gctype.RefType { return gctype.RefNonNull(gctype.HeapI31) },
	"dataref":   func() *gctype.RefType { return gctype.RefNonNull(gctype.HeapData) },
}

// parseFieldType parses storagetype or (mut storagetype).
func (p *Parser) parseFieldType() (gctype.FieldType, error) {
	if p.peekKeyword("mut") {
		p.pos += 2
		v, err := p.parseStorageType()
		if err != nil {
			return gctype.FieldType{}, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return gctype.FieldType{}, err
		}
		return gctype.FieldType{Type: v, Mutable: true}, nil
	}
	v, err := p.parseStorageType()
	return gctype.FieldType{Type: v}, err
}

func (p *Parser) parseStorageType() (gctype.ValueType, error) {
	if t := p.peek(); t != nil && t.Type == token.Ident {
		switch t.Value {
		case "i8":
			p.next()
			return gctype.I8, nil
		case "i16":
			p.next()
			return gctype.I16, nil
		}
	}
	return p.parseValType()
}

func (p *Parser) parseValType() (gctype.ValueType, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if t.Type == token.Ident {
		if nt, ok := numTypes[t.Value]; ok {
			return nt, nil
		}
		if ref, ok := refShorthands[t.Value]; ok {
			return ref(), nil
		}
		return nil, fmt.Errorf("line %d: unknown value type: %s", t.Line, t.Value)
	}
	if t.Type != token.LParen {
		return nil, fmt.Errorf("line %d: expected value type, got %q", t.Line, t.Value)
	}

	kw, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	var ref *gctype.RefType
	switch kw.Value {
	case "ref":
		ref = &gctype.RefType{}
		if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == "null" {
			p.next()
			ref.Nullable = true
		}
		if ref.Heap, err = p.parseHeapType(); err != nil {
			return nil, err
		}
	case "rtt":
		ref, err = p.parseRTT()
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("line %d: unknown value type: %s", kw.Line, kw.Value)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return ref, nil
}

// parseRTT parses the rest of (rtt n? typeidx).
func (p *Parser) parseRTT() (*gctype.RefType, error) {
	depthGiven := p.peek() != nil && p.peek().Type == token.Number
	first, err := p.parseTypeIdx()
	if err != nil {
		return nil, err
	}
	if !depthGiven || !p.isTypeIdx() {
		return &gctype.RefType{Heap: gctype.RTT(first)}, nil
	}
	idx, err := p.parseTypeIdx()
	if err != nil {
		return nil, err
	}
	return &gctype.RefType{Heap: gctype.RTTN(first, idx)}, nil
}

func (p *Parser) parseHeapType() (gctype.HeapType, error) {
	t := p.peek()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if h, ok := abstractHeaps[t.Value]; ok && t.Type == token.Ident {
		p.next()
		return h, nil
	}
	if !p.isTypeIdx() {
		return nil, fmt.Errorf("line %d: unknown heap type %q", t.Line, t.Value)
	}
	idx, err := p.parseTypeIdx()
	if err != nil {
		return nil, err
	}
	return gctype.Concrete(idx), nil
}
