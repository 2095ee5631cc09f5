package errors

import (
	"testing"
)

func TestValidateUnitName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"root namespace", "Main", false},
		{"nested", "com.example.Main", false},
		{"dollar", "a.b.Outer$Inner", false},
		{"underscore", "my_pkg.Util", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"empty segment", "com..Main", true},
		{"leading dot", ".Main", true},
		{"trailing dot", "com.", true},
		{"digit start", "com.1x.Main", true},
		{"slash", "com/example/Main", true},
		{"space", "com.ex ample.Main", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUnitName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUnitName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidUnit) {
				t.Errorf("ValidateUnitName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Main.java", false},
		{"valid nested", "com/example/Main.java", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateSuffix(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{".java", false},
		{".class", false},
		{"", true},
		{".", true},
		{"java", true},
		{".a/b", true},
		{".tar.gz", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateSuffix(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSuffix(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidUnit,
		ErrCodeInvalidPath,
		ErrCodeInvalidSource,
		ErrCodeInvalidConfig,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeBuildNotFound,
		ErrCodeUnitNotFound,
		ErrCodeNamespaceMismatch,
		ErrCodeOutputRootMissing,
		ErrCodeCompileFailed,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
