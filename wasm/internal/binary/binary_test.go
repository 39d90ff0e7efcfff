package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Remaining() != 0 {
		t.Errorf("Remaining: got %d, want 0", r.Remaining())
	}
	if _, err := r.ReadByte(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}

	if _, err := r.ReadBytes(10); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadBytes past end: got %v, want unexpected EOF", err)
	}
	if r.Position() != 3 {
		t.Errorf("failed read moved position to %d", r.Position())
	}
}

func TestReaderReadU32(t *testing.T) {
	tests := []struct {
		data []byte
		want uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff},
	}

	for _, tt := range tests {
		got, err := NewReader(tt.data).ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%v): %v", tt.data, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%v) = %d, want %d", tt.data, got, tt.want)
		}
	}
}

func TestReaderReadU32Errors(t *testing.T) {
	_, err := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}).ReadU32()
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("overlong: got %v, want ErrOverflow", err)
	}

	_, err = NewReader([]byte{0x80, 0x80}).ReadU32()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated: got %v, want unexpected EOF", err)
	}
}

func TestReaderReadS33(t *testing.T) {
	tests := []struct {
		data []byte
		want int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x70}, -0x10},
		{[]byte{0x6d}, -0x13},
		{[]byte{0x2a}, 42},
		{[]byte{0xc0, 0x00}, 64},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 1<<32 - 1},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x70}, -(1 << 32)},
	}

	for _, tt := range tests {
		got, err := NewReader(tt.data).ReadS33()
		if err != nil {
			t.Errorf("ReadS33(%v): %v", tt.data, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadS33(%v) = %d, want %d", tt.data, got, tt.want)
		}
	}
}

func TestReaderReadS33Errors(t *testing.T) {
	_, err := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}).ReadS33()
	if !errors.Is(err, ErrOverflow) {
		t.Errorf("overlong: got %v, want ErrOverflow", err)
	}

	_, err = NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x10}).ReadS33()
	if !errors.Is(err, ErrS33Range) {
		t.Errorf("2^32: got %v, want ErrS33Range", err)
	}

	_, err = NewReader([]byte{0xff}).ReadS33()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("truncated: got %v, want unexpected EOF", err)
	}
}

func TestReaderReadName(t *testing.T) {
	r := NewReader([]byte{0x05, 'h', 'e', 'l', 'l', 'o', 0x00})
	got, err := r.ReadName()
	if err != nil {
		t.Fatalf("ReadName: %v", err)
	}
	if got != "hello" {
		t.Errorf("ReadName: got %q, want %q", got, "hello")
	}
	if got, _ := r.ReadName(); got != "" {
		t.Errorf("empty ReadName: got %q", got)
	}

	if _, err := NewReader([]byte{0x02, 0xff, 0xfe}).ReadName(); !errors.Is(err, ErrInvalidName) {
		t.Errorf("invalid UTF-8: got %v, want ErrInvalidName", err)
	}
	if _, err := NewReader([]byte{0x05, 'h'}).ReadName(); err == nil {
		t.Error("expected error for truncated name")
	}
}

func TestReaderReadU32LE(t *testing.T) {
	r := NewReader([]byte{0x00, 0x61, 0x73, 0x6d, 0x01})
	got, err := r.ReadU32LE()
	if err != nil {
		t.Fatalf("ReadU32LE: %v", err)
	}
	if got != 0x6d736100 {
		t.Errorf("ReadU32LE: got 0x%08x, want 0x6d736100", got)
	}
	if _, err := r.ReadU32LE(); err == nil {
		t.Error("expected error for truncated value")
	}
}

func TestReaderReadRemaining(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	r.ReadByte()
	r.ReadByte()

	remaining, err := r.ReadRemaining()
	if err != nil {
		t.Fatalf("ReadRemaining: %v", err)
	}
	if !bytes.Equal(remaining, []byte{0x03, 0x04, 0x05}) {
		t.Errorf("ReadRemaining: got %v, want [3 4 5]", remaining)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining: got %d, want 0", r.Remaining())
	}
}

func TestReaderWrapError(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	r.ReadByte()
	r.ReadByte()

	cause := errors.New("test error")
	err := r.WrapError("test section", cause)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Position != 2 {
		t.Errorf("Position: got %d, want 2", pe.Position)
	}
	if !errors.Is(err, cause) {
		t.Error("ParseError should unwrap to its cause")
	}
	if got := pe.Error(); got != "wasm: test section at position 2: test error" {
		t.Errorf("Error(): got %q", got)
	}

	pe = &ParseError{Position: 5, Err: cause}
	if got := pe.Error(); got != "wasm: at position 5: test error" {
		t.Errorf("Error(): got %q", got)
	}
}

func TestWriterBasic(t *testing.T) {
	w := NewWriter()
	if w.Len() != 0 {
		t.Errorf("initial Len: got %d, want 0", w.Len())
	}

	w.Byte(0x42)
	w.WriteBytes([]byte{0x01, 0x02, 0x03})
	if w.Len() != 4 {
		t.Errorf("Len: got %d, want 4", w.Len())
	}
	if want := []byte{0x42, 0x01, 0x02, 0x03}; !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes: got %v, want %v", w.Bytes(), want)
	}
}

func TestWriterWriteU32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{0xffffffff, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.WriteU32(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteU32(%d) = %v, want %v", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriterWriteS33(t *testing.T) {
	tests := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{-0x10, []byte{0x70}},
		{-0x19, []byte{0x67}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-65, []byte{0xbf, 0x7f}},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.WriteS33(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteS33(%d) = %v, want %v", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriterWriteSection(t *testing.T) {
	w := NewWriter()
	w.WriteSection(1, []byte{0xaa, 0xbb})
	if want := []byte{0x01, 0x02, 0xaa, 0xbb}; !bytes.Equal(w.Bytes(), want) {
		t.Errorf("WriteSection: got %v, want %v", w.Bytes(), want)
	}
}

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x6d736100)
	w.WriteU32(300)
	w.WriteS33(-0x13)
	w.WriteS33(1<<32 - 1)
	w.WriteName("point")

	r := NewReader(w.Bytes())
	if v, err := r.ReadU32LE(); err != nil || v != 0x6d736100 {
		t.Errorf("ReadU32LE: got 0x%x, %v", v, err)
	}
	if v, err := r.ReadU32(); err != nil || v != 300 {
		t.Errorf("ReadU32: got %d, %v", v, err)
	}
	if v, err := r.ReadS33(); err != nil || v != -0x13 {
		t.Errorf("ReadS33: got %d, %v", v, err)
	}
	if v, err := r.ReadS33(); err != nil || v != 1<<32-1 {
		t.Errorf("ReadS33: got %d, %v", v, err)
	}
	if v, err := r.ReadName(); err != nil || v != "point" {
		t.Errorf("ReadName: got %q, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining: got %d, want 0", r.Remaining())
	}
}
