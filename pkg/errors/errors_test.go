package errors

import (
	"errors"
	"fmt"
	"testing"
)

// unitMissing stands in for error types in other packages that report a
// code through Coder.
type unitMissing struct{ name string }

func (e unitMissing) Error() string { return "unit " + e.name + " not found" }
func (unitMissing) Code() Code      { return ErrCodeUnitNotFound }

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidUnit, "bad name %q", "a..b"), `INVALID_UNIT: bad name "a..b"`},
		{Wrap(ErrCodeInvalidSource, errors.New("line 3: expected ';'"), "parse %s", "A.java"), "INVALID_SOURCE: parse A.java: line 3: expected ';'"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeFileNotFound, cause, "config %s", "sourcepath.toml")

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain", errors.New("plain"), ""},
		{"coded", New(ErrCodeInvalidConfig, "x"), ErrCodeInvalidConfig},
		{"outermost wins", Wrap(ErrCodeInvalidConfig, New(ErrCodeInvalidPath, "inner"), "outer"), ErrCodeInvalidConfig},
		{"coder", unitMissing{"a.B"}, ErrCodeUnitNotFound},
		{"coder behind fmt wrap", fmt.Errorf("build: %w", unitMissing{"a.B"}), ErrCodeUnitNotFound},
		{"coded behind fmt wrap", fmt.Errorf("invalid options: %w", New(ErrCodeInvalidInput, "no entries")), ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(err, %q) = false", tt.want)
			}
		})
	}
	if Is(nil, ErrCodeInvalidInput) {
		t.Error("Is(nil, ...) = true")
	}
	if Is(New(ErrCodeInvalidInput, "x"), ErrCodeInvalidUnit) {
		t.Error("Is matched the wrong code")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidInput, "no entry points given"), "no entry points given"},
		{"wrapped coded", fmt.Errorf("invalid options: %w", New(ErrCodeInvalidInput, "no entry points given")), "no entry points given"},
		{"coder", unitMissing{"a.B"}, "unit a.B not found"},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
