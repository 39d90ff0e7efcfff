package wasm

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	wasmerrors "github.com/wippyai/wasm-gc/errors"
	"github.com/wippyai/wasm-gc/gctype"
	"github.com/wippyai/wasm-gc/wasm/internal/binary"
)

// Parsing errors returned by ParseModule.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// ParseModule parses a WebAssembly binary module and builds its type table.
func ParseModule(data []byte) (*Module, error) {
	return parseModule(data)
}

// ParseModuleCanonical is like ParseModule but canonicalizes every
// reference type of the type table through set, so equal references across
// all modules parsed with the same set share one descriptor.
func ParseModuleCanonical(data []byte, set *gctype.Set) (*Module, error) {
	if set == nil {
		return nil, wasmerrors.InvalidInput(wasmerrors.PhaseLoad, "nil canonical set")
	}
	return parseModule(data, gctype.WithCanonicalSet(set))
}

func parseModule(data []byte, opts ...gctype.TableOption) (*Module, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{}
	var groups [][]gctype.SubType
	var lastSectionOrder int

	for {
		sectionID, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, r.WrapError("section header", err)
		}

		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, r.WrapError("section header",
					wasmerrors.InvalidData(wasmerrors.PhaseDecode, nil, fmt.Sprintf("unknown section ID: 0x%02x", sectionID)))
			}
			if order <= lastSectionOrder {
				return nil, r.WrapError("section header",
					wasmerrors.InvalidData(wasmerrors.PhaseDecode, nil, fmt.Sprintf("section %d appears out of order", sectionID)))
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		sectionData, err := r.ReadBytes(int(sectionSize))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}

		sr := binary.NewReader(sectionData)
		switch sectionID {
		case SectionType:
			groups, err = parseTypeSection(sr)
			if err != nil {
				return nil, sr.WrapError("type section", truncated(err))
			}
		case SectionCustom:
			if err := parseCustomSection(sr, m); err != nil {
				return nil, sr.WrapError("custom section", truncated(err))
			}
		default:
			m.Sections = append(m.Sections, Section{ID: sectionID, Data: sectionData})
		}
	}

	m.Types, err = gctype.NewTableGroups(groups, opts...)
	if err != nil {
		return nil, wasmerrors.Load("type section", err)
	}
	for idx := range m.TypeNames {
		if int(idx) >= m.Types.Len() {
			delete(m.TypeNames, idx)
		}
	}
	return m, nil
}

// sectionOrder returns the canonical position of a known section, or 0.
// The order differs from the IDs: tag sits before global and data count
// before code.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

func parseCustomSection(r *binary.Reader, m *Module) error {
	name, err := r.ReadName()
	if err != nil {
		return err
	}
	rest, err := r.ReadRemaining()
	if err != nil {
		return err
	}
	// A malformed name section is kept as an opaque custom section.
	if name == NameSectionName && m.TypeNames == nil && m.Name == "" {
		if modName, types, err := parseNameSection(binary.NewReader(rest)); err == nil {
			m.Name = modName
			m.TypeNames = types
			return nil
		}
	}
	m.Sections = append(m.Sections, Section{ID: SectionCustom, Name: name, Data: rest})
	return nil
}

func parseNameSection(r *binary.Reader) (string, map[uint32]string, error) {
	var modName string
	var types map[uint32]string
	for r.Remaining() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return "", nil, err
		}
		size, err := r.ReadU32()
		if err != nil {
			return "", nil, err
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return "", nil, err
		}
		sub := binary.NewReader(payload)
		switch id {
		case NameSubModule:
			if modName, err = sub.ReadName(); err != nil {
				return "", nil, err
			}
		case NameSubType:
			if types, err = parseNameMap(sub); err != nil {
				return "", nil, err
			}
		}
	}
	return modName, types, nil
}

func parseNameMap(r *binary.Reader) (map[uint32]string, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	names := make(map[uint32]string, min(count, 1024))
	for range count {
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		name, err := r.ReadName()
		if err != nil {
			return nil, err
		}
		names[idx] = name
	}
	return names, nil
}

// parseTypeSection reads the type section into recursive groups. A
// subtype outside a rec block forms a group of its own.
func parseTypeSection(r *binary.Reader) ([][]gctype.SubType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	var groups [][]gctype.SubType
	var next uint32
	for range count {
		form, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if form != RecTypeByte {
			st, err := readSubTypeWithPrefix(r, form, next)
			if err != nil {
				return nil, err
			}
			groups = append(groups, []gctype.SubType{st})
			next++
			continue
		}

		n, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			continue
		}
		group := make([]gctype.SubType, 0, min(n, 1024))
		for range n {
			prefix, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			st, err := readSubTypeWithPrefix(r, prefix, next)
			if err != nil {
				return nil, err
			}
			group = append(group, st)
			next++
		}
		groups = append(groups, group)
	}
	if r.Remaining() != 0 {
		return nil, invalid(nil, fmt.Sprintf("%d trailing bytes", r.Remaining()))
	}
	return groups, nil
}

func readSubTypeWithPrefix(r *binary.Reader, prefix byte, idx uint32) (gctype.SubType, error) {
	path := []string{"type[" + strconv.FormatUint(uint64(idx), 10) + "]"}
	var st gctype.SubType
	switch prefix {
	case SubTypeByte, SubFinalByte:
		st.Final = prefix == SubFinalByte
		n, err := r.ReadU32()
		if err != nil {
			return st, err
		}
		st.Parents = make([]uint32, 0, min(n, 16))
		for range n {
			p, err := r.ReadU32()
			if err != nil {
				return st, err
			}
			st.Parents = append(st.Parents, p)
		}
		form, err := r.ReadByte()
		if err != nil {
			return st, err
		}
		prefix = form
	}
	comp, err := readCompType(r, prefix, path)
	if err != nil {
		return st, err
	}
	st.Composite = comp
	return st, nil
}

func readCompType(r *binary.Reader, form byte, path []string) (gctype.CompositeType, error) {
	switch form {
	case FuncTypeByte:
		params, err := readValTypes(r, append(path, "params"))
		if err != nil {
			return nil, err
		}
		results, err := readValTypes(r, append(path, "results"))
		if err != nil {
			return nil, err
		}
		return &gctype.FuncType{Params: params, Results: results}, nil
	case StructTypeByte:
		n, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		fields := make([]gctype.FieldType, 0, min(n, 1024))
		for i := range n {
			f, err := readFieldType(r, append(path, "field["+strconv.FormatUint(uint64(i), 10)+"]"))
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		return &gctype.StructType{Fields: fields}, nil
	case ArrayTypeByte:
		elem, err := readFieldType(r, append(path, "elem"))
		if err != nil {
			return nil, err
		}
		return &gctype.ArrayType{Elem: elem}, nil
	default:
		return nil, invalid(path, fmt.Sprintf("unknown type form 0x%02x", form))
	}
}

func readValTypes(r *binary.Reader, path []string) ([]gctype.ValueType, error) {
	n, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]gctype.ValueType, 0, min(n, 1024))
	for range n {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == PackedI8 || b == PackedI16 {
			return nil, invalid(path, "packed type outside storage")
		}
		v, err := readValType(r, b, path)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func readFieldType(r *binary.Reader, path []string) (gctype.FieldType, error) {
	var f gctype.FieldType
	b, err := r.ReadByte()
	if err != nil {
		return f, err
	}
	switch b {
	case PackedI8:
		f.Type = gctype.I8
	case PackedI16:
		f.Type = gctype.I16
	default:
		if f.Type, err = readValType(r, b, path); err != nil {
			return f, err
		}
	}
	mut, err := r.ReadByte()
	if err != nil {
		return f, err
	}
	switch mut {
	case 0:
	case 1:
		f.Mutable = true
	default:
		return f, invalid(path, fmt.Sprintf("invalid mutability 0x%02x", mut))
	}
	return f, nil
}

func readValType(r *binary.Reader, b byte, path []string) (gctype.ValueType, error) {
	switch gctype.NumType(b) {
	case gctype.I32, gctype.I64, gctype.F32, gctype.F64, gctype.V128:
		return gctype.NumType(b), nil
	}

	switch gctype.RefCode(b) {
	case gctype.RefCodeFuncRef:
		return gctype.RefNull(gctype.HeapFunc), nil
	case gctype.RefCodeExternRef:
		return gctype.RefNull(gctype.HeapExtern), nil
	case gctype.RefCodeAnyRef:
		return gctype.RefNull(gctype.HeapAny), nil
	case gctype.RefCodeEqRef:
		return gctype.RefNull(gctype.HeapEq), nil
	case gctype.RefCodeI31Ref:
		return gctype.RefNonNull(gctype.HeapI31), nil
	case gctype.RefCodeDataRef:
		return gctype.RefNonNull(gctype.HeapData), nil
	case gctype.RefCodeHTNullable, gctype.RefCodeHTNonNullable:
		h, err := readHeapType(r, path)
		if err != nil {
			return nil, err
		}
		return &gctype.RefType{Heap: h, Nullable: gctype.RefCode(b) == gctype.RefCodeHTNullable}, nil
	case gctype.RefCodeRTTN:
		depth, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		return &gctype.RefType{Heap: gctype.RTTN(depth, idx)}, nil
	case gctype.RefCodeRTT:
		idx, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		return &gctype.RefType{Heap: gctype.RTT(idx)}, nil
	}
	return nil, invalid(path, fmt.Sprintf("unknown value type 0x%02x", b))
}

func readHeapType(r *binary.Reader, path []string) (gctype.HeapType, error) {
	v, err := r.ReadS33()
	if err != nil {
		return nil, err
	}
	if v >= 0 {
		return gctype.Concrete(uint32(v)), nil
	}
	h := gctype.AbstractHeap(v)
	if !h.Valid() {
		return nil, invalid(path, fmt.Sprintf("unknown heap type %d", v))
	}
	return h, nil
}

// truncated reports running out of section bytes as io.ErrUnexpectedEOF;
// a clean io.EOF only ends the section loop.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func invalid(path []string, detail string) error {
	return wasmerrors.InvalidData(wasmerrors.PhaseDecode, path, detail)
}
