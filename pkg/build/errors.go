package build

import (
	"fmt"
	"strings"

	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// Error is returned by [Driver.Build] when a build fails. It wraps the first
// failure and lists the units compiled before it; their artifacts stay on disk.
type Error struct {
	Err      error
	Compiled []unit.Name
}

func (e *Error) Error() string {
	if len(e.Compiled) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (%d unit(s) compiled before failure)", e.Err, len(e.Compiled))
}

func (e *Error) Unwrap() error { return e.Err }

// UnitNotFoundError means no search-path root contains the unit.
// Referrer is zero for entry points.
type UnitNotFoundError struct {
	Name     unit.Name
	Referrer unit.Name
}

func (e *UnitNotFoundError) Error() string {
	if e.Referrer.IsZero() {
		return fmt.Sprintf("entry point %s not found on search path", e.Name)
	}
	return fmt.Sprintf("unit %s not found on search path (referenced by %s)", e.Name, e.Referrer)
}

func (e *UnitNotFoundError) Code() errors.Code { return errors.ErrCodeUnitNotFound }

// NamespaceMismatchError means a source file declares a namespace other
// than the one implied by its directory.
type NamespaceMismatchError struct {
	Unit     unit.Name
	Path     string
	Expected string
	Actual   string
}

func (e *NamespaceMismatchError) Error() string {
	return fmt.Sprintf("%s declares namespace %s, expected %s",
		e.Path, displayNamespace(e.Actual), displayNamespace(e.Expected))
}

func (e *NamespaceMismatchError) Code() errors.Code { return errors.ErrCodeNamespaceMismatch }

// OutputRootMissingError means the output root does not exist or is not a
// directory. It is reported before anything is compiled.
type OutputRootMissingError struct {
	Path string
}

func (e *OutputRootMissingError) Error() string {
	return fmt.Sprintf("output root %s does not exist or is not a directory", e.Path)
}

func (e *OutputRootMissingError) Code() errors.Code { return errors.ErrCodeOutputRootMissing }

// CompileError means the compiler rejected a unit. Output holds the
// compiler's diagnostics when it produced any.
type CompileError struct {
	Unit   unit.Name
	Output string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Unit, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func (e *CompileError) Code() errors.Code { return errors.ErrCodeCompileFailed }

func displayNamespace(ns string) string {
	if strings.TrimSpace(ns) == "" {
		return "(root)"
	}
	return fmt.Sprintf("%q", ns)
}
