// Package wasm decodes the type section of WebAssembly modules that use the
// GC proposal's draft binary encoding.
//
// Only the parts needed to relate types are decoded: the type section is
// turned into a gctype.Table and type names are read from the name custom
// section. Every other section is kept as raw bytes so that Encode writes
// an equivalent module back.
//
// # Type Section
//
// The decoder accepts function, struct and array definitions, rec groups,
// sub and sub final declarations with a supertype vector, packed i8 and
// i16 storage, and the reference forms funcref, externref, anyref, eqref,
// i31ref, dataref, (ref null ht), (ref ht), (rtt n $t) and (rtt $t).
//
// # Parsing
//
//	data, _ := os.ReadFile("module.wasm")
//	m, err := wasm.ParseModule(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i := range uint32(m.Types.Len()) {
//	    st, _ := m.Types.Type(i)
//	    fmt.Println(m.TypeLabel(i), st)
//	}
//
// Modules that should share canonical reference types are parsed with one
// set:
//
//	set, _ := gctype.NewSet(0)
//	a, _ := wasm.ParseModuleCanonical(dataA, set)
//	b, _ := wasm.ParseModuleCanonical(dataB, set)
//
// # Errors
//
// Malformed input is reported with its byte position, wrapping an
// errors.Error with PhaseDecode or a truncation error such as
// io.ErrUnexpectedEOF. Type tables that decode but fail validation return
// an errors.Error with PhaseLoad whose cause has PhaseValidate.
package wasm
