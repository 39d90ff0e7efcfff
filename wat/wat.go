package wat

import (
	wasmerrors "github.com/wippyai/wasm-gc/errors"
	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wasm"
	"github.com/wippyai/wasm-gc/wat/internal/parser"
	"github.com/wippyai/wasm-gc/wat/internal/token"
)

// Parse reads the type definitions of a WAT module into a wasm.Module.
// Options are passed to the type table, so gctype.WithCanonicalSet shares
// reference descriptors with other modules.
func Parse(source string, opts ...gctype.TableOption) (*wasm.Module, error) {
	p := parser.New(token.Tokenize(source))
	parsed, err := p.Parse()
	if err != nil {
		return nil, wasmerrors.Wrap(wasmerrors.PhaseDecode, wasmerrors.KindInvalidData, err, "text format")
	}

	tbl, err := gctype.NewTableGroups(parsed.Groups, opts...)
	if err != nil {
		return nil, wasmerrors.Load("type definitions", err)
	}
	return &wasm.Module{
		Types:     tbl,
		Name:      parsed.Name,
		TypeNames: parsed.TypeNames,
	}, nil
}

// Compile converts WAT type definitions into a binary module holding the
// type section and a name section.
func Compile(source string) ([]byte, error) {
	mod, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return mod.Encode()
}
