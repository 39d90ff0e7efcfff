package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseValidate,
				Kind:   KindOutOfBounds,
				Path:   []string{"type", "3", "field", "1"},
				Type:   "(ref null 9)",
				Detail: "index outside table",
			},
			contains: []string{"[validate]", "out_of_bounds", "type.3.field.1", "(ref null 9)", "index outside table"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInvalidData,
			},
			contains: []string{"[decode]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCanon,
				Kind:   KindAllocation,
				Detail: "memory full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[canon]", "allocation", "memory full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseValidate,
		Kind:  KindCycle,
		Path:  []string{"type", "2"},
	}

	if !err.Is(&Error{Phase: PhaseValidate, Kind: KindCycle}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindCycle}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseValidate, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
	if !err.Is(&Error{Kind: KindCycle}) {
		t.Error("Is should match any phase when target phase is empty")
	}
}

func TestErrOutOfMemory(t *testing.T) {
	err := AllocationFailed(PhaseCanon, 12, 4)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Error("allocation failure should match ErrOutOfMemory")
	}

	wrapped := Wrap(PhaseLoad, KindInvalidData, err, "canonicalize field")
	if !errors.Is(wrapped, ErrOutOfMemory) {
		t.Error("wrapped allocation failure should match ErrOutOfMemory")
	}

	if errors.Is(InvalidInput(PhaseCanon, "nil"), ErrOutOfMemory) {
		t.Error("invalid input should not match ErrOutOfMemory")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseValidate, KindTypeMismatch).
		Path("type", "4").
		Type("struct").
		Value(4).
		Cause(cause).
		Detail("declared supertype %d is %s", 1, "array").
		Build()

	if err.Phase != PhaseValidate {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseValidate)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "type" || err.Path[1] != "4" {
		t.Errorf("Path = %v, want [type 4]", err.Path)
	}
	if err.Type != "struct" {
		t.Errorf("Type = %v, want 'struct'", err.Type)
	}
	if err.Value != 4 {
		t.Errorf("Value = %v, want 4", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "declared supertype 1 is array" {
		t.Errorf("Detail = %v, want 'declared supertype 1 is array'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseValidate, []string{"type", "1"}, "struct", "not a subtype")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.Type != "struct" {
			t.Errorf("Type = %v", err.Type)
		}
	})

	t.Run("AllocationFailed", func(t *testing.T) {
		err := AllocationFailed(PhaseAlloc, 1024, 8)
		if err.Kind != KindAllocation {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAllocation)
		}
		if !strings.Contains(err.Detail, "1024") {
			t.Errorf("Detail = %v, should contain size", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseDecode, "type form 0x4e")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseValidate, []string{"type", "0"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		err := Cycle(PhaseValidate, []string{"type", "2"}, 2)
		if err.Kind != KindCycle {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCycle)
		}
		if !strings.Contains(err.Error(), "cyclic") {
			t.Errorf("Error() = %q, should mention cycle", err.Error())
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseCanon, []string{"candidate"}, "*gctype.RefType")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		err := Closed(PhaseCanon, "set")
		if err.Kind != KindClosed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindClosed)
		}
	})

	t.Run("Load", func(t *testing.T) {
		cause := errors.New("eof")
		err := Load("read type section", cause)
		if err.Phase != PhaseLoad || !errors.Is(err, cause) {
			t.Errorf("Load() = %v", err)
		}
	})
}
