package wasm

import (
	"fmt"

	wasmerrors "github.com/wippyai/wasm-gc/errors"
	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wasm/internal/binary"
)

// Encode encodes the module to WebAssembly binary format. The type section
// is rebuilt from Types, followed by the raw sections and a name section
// when names are present.
func (m *Module) Encode() ([]byte, error) {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	if m.Types != nil && m.Types.Len() > 0 {
		sec := binary.NewWriter()
		if err := m.writeTypeSection(sec); err != nil {
			return nil, err
		}
		w.WriteSection(SectionType, sec.Bytes())
	}

	for _, s := range m.Sections {
		if s.ID != SectionCustom {
			w.WriteSection(s.ID, s.Data)
			continue
		}
		sec := binary.NewWriter()
		sec.WriteName(s.Name)
		sec.WriteBytes(s.Data)
		w.WriteSection(SectionCustom, sec.Bytes())
	}

	if m.Name != "" || len(m.TypeNames) > 0 {
		sec := binary.NewWriter()
		sec.WriteName(NameSectionName)
		m.writeNames(sec)
		w.WriteSection(SectionCustom, sec.Bytes())
	}
	return w.Bytes(), nil
}

func (m *Module) writeTypeSection(w *binary.Writer) error {
	groups := m.Types.Groups()
	w.WriteU32(uint32(len(groups)))
	for _, g := range groups {
		if g.Len != 1 {
			w.Byte(RecTypeByte)
			w.WriteU32(g.Len)
		}
		for i := g.Start; i < g.End(); i++ {
			st, _ := m.Types.Type(i)
			if err := m.writeSubType(w, st); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Module) writeNames(w *binary.Writer) {
	if m.Name != "" {
		sub := binary.NewWriter()
		sub.WriteName(m.Name)
		w.WriteSection(NameSubModule, sub.Bytes())
	}
	if len(m.TypeNames) == 0 {
		return
	}
	sub := binary.NewWriter()
	var n uint32
	names := binary.NewWriter()
	for i := range uint32(m.Types.Len()) {
		name, ok := m.TypeNames[i]
		if !ok {
			continue
		}
		names.WriteU32(i)
		names.WriteName(name)
		n++
	}
	sub.WriteU32(n)
	sub.WriteBytes(names.Bytes())
	w.WriteSection(NameSubType, sub.Bytes())
}

func (m *Module) writeSubType(w *binary.Writer, st *gctype.SubType) error {
	if len(st.Parents) > 0 || st.Final {
		if st.Final {
			w.Byte(SubFinalByte)
		} else {
			w.Byte(SubTypeByte)
		}
		w.WriteU32(uint32(len(st.Parents)))
		for _, p := range st.Parents {
			w.WriteU32(p)
		}
	}

	switch c := st.Composite.(type) {
	case *gctype.FuncType:
		w.Byte(FuncTypeByte)
		if err := m.writeValTypes(w, c.Params); err != nil {
			return err
		}
		return m.writeValTypes(w, c.Results)
	case *gctype.StructType:
		w.Byte(StructTypeByte)
		w.WriteU32(uint32(len(c.Fields)))
		for _, f := range c.Fields {
			if err := m.writeFieldType(w, f); err != nil {
				return err
			}
		}
		return nil
	case *gctype.ArrayType:
		w.Byte(ArrayTypeByte)
		return m.writeFieldType(w, c.Elem)
	}
	return wasmerrors.Unsupported(wasmerrors.PhaseEncode, fmt.Sprintf("composite type %T", st.Composite))
}

func (m *Module) writeValTypes(w *binary.Writer, types []gctype.ValueType) error {
	w.WriteU32(uint32(len(types)))
	for _, v := range types {
		if err := m.writeValType(w, v); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) writeFieldType(w *binary.Writer, f gctype.FieldType) error {
	switch f.Type {
	case gctype.I8:
		w.Byte(PackedI8)
	case gctype.I16:
		w.Byte(PackedI16)
	default:
		if err := m.writeValType(w, f.Type); err != nil {
			return err
		}
	}
	if f.Mutable {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
	return nil
}

func (m *Module) writeValType(w *binary.Writer, v gctype.ValueType) error {
	switch v := v.(type) {
	case gctype.NumType:
		w.Byte(byte(v))
		return nil
	case *gctype.RefType:
		code := v.Code()
		switch code {
		case gctype.RefCodeHTNullable, gctype.RefCodeHTNonNullable:
			w.Byte(byte(code))
			if h, ok := v.Heap.(gctype.AbstractHeap); ok {
				w.WriteS33(int64(h))
				return nil
			}
			idx, err := m.localIndex(v.Heap.(gctype.ConcreteHeap), typesEqual)
			if err != nil {
				return err
			}
			w.WriteS33(int64(idx))
		case gctype.RefCodeRTTN:
			h := v.Heap.(gctype.RTTNHeap)
			idx, err := m.localIndex(h.Type, rttTypesEqual)
			if err != nil {
				return err
			}
			w.Byte(byte(code))
			w.WriteU32(h.Depth)
			w.WriteU32(idx)
		case gctype.RefCodeRTT:
			idx, err := m.localIndex(v.Heap.(gctype.RTTHeap).Type, rttTypesEqual)
			if err != nil {
				return err
			}
			w.Byte(byte(code))
			w.WriteU32(idx)
		case 0:
			return wasmerrors.NilPointer(wasmerrors.PhaseEncode, nil, "heap type")
		default:
			w.Byte(byte(code))
		}
		return nil
	}
	return wasmerrors.Unsupported(wasmerrors.PhaseEncode, fmt.Sprintf("value type %T", v))
}

func typesEqual(a, b gctype.ConcreteHeap) bool {
	return gctype.TypesEqual(a.Table, a.Index, b.Table, b.Index)
}

// rttTypesEqual also requires equal declared supertype chains, so a token
// keeps its meaning when mapped to a local type.
func rttTypesEqual(a, b gctype.ConcreteHeap) bool {
	return gctype.RTTTypesEqual(gctype.RTTHeap{Type: a}, gctype.RTTHeap{Type: b})
}

// localIndex maps a concrete heap type to an index of m.Types. Tables built
// with a shared canonical set may hold descriptors owned by another table;
// those are mapped to the first local type equal under eq.
func (m *Module) localIndex(h gctype.ConcreteHeap, eq func(a, b gctype.ConcreteHeap) bool) (uint32, error) {
	if h.Table == m.Types {
		return h.Index, nil
	}
	if h.Table != nil {
		local := func(j uint32) gctype.ConcreteHeap { return gctype.ConcreteHeap{Table: m.Types, Index: j} }
		if int(h.Index) < m.Types.Len() && eq(h, local(h.Index)) {
			return h.Index, nil
		}
		for j := range uint32(m.Types.Len()) {
			if eq(h, local(j)) {
				return j, nil
			}
		}
	}
	return 0, wasmerrors.Unsupported(wasmerrors.PhaseEncode,
		fmt.Sprintf("reference to %s index %d has no equal type in this module", h.Table, h.Index))
}
