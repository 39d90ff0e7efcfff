package wasm_test

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func uleb(v uint32) []byte {
	var out []byte
	for v >= 0x80 {
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func module(sections ...[]byte) []byte {
	return cat(append([][]byte{header}, sections...)...)
}

func section(id byte, body ...[]byte) []byte {
	b := cat(body...)
	return cat([]byte{id}, uleb(uint32(len(b))), b)
}

func name(s string) []byte {
	return cat(uleb(uint32(len(s))), []byte(s))
}

// typeSection wraps entries with their count.
func typeSection(entries ...[]byte) []byte {
	return section(0x01, uleb(uint32(len(entries))), cat(entries...))
}

func customSection(n string, body ...[]byte) []byte {
	return section(0x00, name(n), cat(body...))
}

func nameSection(modName string, types map[uint32]string, order ...uint32) []byte {
	var subs []byte
	if modName != "" {
		payload := name(modName)
		subs = cat(subs, []byte{0x00}, uleb(uint32(len(payload))), payload)
	}
	if len(order) > 0 {
		payload := uleb(uint32(len(order)))
		for _, i := range order {
			payload = cat(payload, uleb(i), name(types[i]))
		}
		subs = cat(subs, []byte{0x04}, uleb(uint32(len(payload))), payload)
	}
	return customSection("name", subs)
}

var (
	i32Field = []byte{0x7F, 0x00}
	i64Field = []byte{0x7E, 0x00}
)

// point2D is (struct i32 i32); point3D is (sub 0 (struct i32 i32 i32)).
var (
	point2D = cat([]byte{0x5F, 0x02}, i32Field, i32Field)
	point3D = cat([]byte{0x50, 0x01, 0x00, 0x5F, 0x03}, i32Field, i32Field, i32Field)
)
