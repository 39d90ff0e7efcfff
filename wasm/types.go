package wasm

import (
	"strconv"

	"github.com/wippyai/wasm-gc/gctype"
)

// Module is a decoded core module reduced to what type relations need: the
// type table, optional names, and every other section kept verbatim so the
// module can be encoded again.
type Module struct {
	// Types holds the module's type section. It is never nil after a
	// successful parse; a module without a type section yields an empty table.
	Types *gctype.Table

	// Name is the module name from the name section, if present.
	Name string

	// TypeNames maps type indices to names from the name section.
	TypeNames map[uint32]string

	// Sections holds all sections other than the type section and a
	// well-formed name section, in their original order.
	Sections []Section
}

// Section is a raw module section.
type Section struct {
	ID   byte
	Name string // custom sections only
	Data []byte
}

// CustomSections returns the custom sections carried by the module.
func (m *Module) CustomSections() []Section {
	var out []Section
	for _, s := range m.Sections {
		if s.ID == SectionCustom {
			out = append(out, s)
		}
	}
	return out
}

// TypeName returns the name of type i, or an empty string.
func (m *Module) TypeName(i uint32) string {
	return m.TypeNames[i]
}

// TypeLabel returns the name of type i, falling back to its index in
// text-format notation.
func (m *Module) TypeLabel(i uint32) string {
	if name := m.TypeNames[i]; name != "" {
		return "$" + name
	}
	return "$" + strconv.FormatUint(uint64(i), 10)
}
