package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wat/internal/token"
)

// Module is the type content of a parsed WAT module.
type Module struct {
	Name      string
	Groups    [][]gctype.SubType
	TypeNames map[uint32]string
}

type Parser struct {
	mod     *Module
	typeMap map[string]uint32
	tokens  []token.Token
	pos     int
}

func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		typeMap: make(map[string]uint32),
	}
}

func (p *Parser) Parse() (*Module, error) {
	return p.parseModule()
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

// peekKeyword reports whether the token after the current '(' is kw.
func (p *Parser) peekKeyword(kw string) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	t := p.tokens[p.pos+1]
	return p.tokens[p.pos].Type == token.LParen && t.Type == token.Ident && t.Value == kw
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if t.Type != typ {
		return nil, fmt.Errorf("line %d: expected %v, got %q", t.Line, typ, t.Value)
	}
	return t, nil
}

func (p *Parser) expectKeyword(kw string) error {
	t := p.next()
	if t == nil {
		return fmt.Errorf("unexpected end of input")
	}
	if t.Type != token.Ident || t.Value != kw {
		return fmt.Errorf("line %d: expected '%s', got %q", t.Line, kw, t.Value)
	}
	return nil
}

// optionalName consumes a $name if one follows.
func (p *Parser) optionalName() string {
	if t := p.peek(); t != nil && t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		p.next()
		return t.Value
	}
	return ""
}

// skipRest consumes tokens up to and including the ')' closing the
// s-expression whose '(' was already consumed.
func (p *Parser) skipRest() error {
	depth := 1
	for depth > 0 {
		t := p.next()
		if t == nil {
			return fmt.Errorf("unexpected end of input")
		}
		switch t.Type {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		}
	}
	return nil
}

func (p *Parser) parseU32() (uint32, error) {
	t, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	s := strings.ReplaceAll(t.Value, "_", "")
	val, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid number: %s", t.Line, t.Value)
	}
	return uint32(val), nil
}

// parseTypeIdx reads a type index, numeric or $name.
func (p *Parser) parseTypeIdx() (uint32, error) {
	t := p.peek()
	if t == nil {
		return 0, fmt.Errorf("expected type index")
	}
	if t.Type == token.Ident && strings.HasPrefix(t.Value, "$") {
		p.next()
		if idx, ok := p.typeMap[t.Value]; ok {
			return idx, nil
		}
		return 0, fmt.Errorf("line %d: unknown type %s", t.Line, t.Value)
	}
	return p.parseU32()
}

func (p *Parser) isTypeIdx() bool {
	t := p.peek()
	return t != nil && (t.Type == token.Number || (t.Type == token.Ident && strings.HasPrefix(t.Value, "$")))
}
