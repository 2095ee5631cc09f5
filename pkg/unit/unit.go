// Package unit models fully-qualified source unit names and the on-disk
// paths derived from them.
//
// A name such as "com.example.Main" has the namespace "com.example" and the
// simple name "Main". Namespace segments become nested directories and the
// simple name plus a suffix becomes the file name, so the same name always
// maps to the same relative path under any root:
//
//	n, _ := unit.Parse("com.example.Main")
//	n.Path(".java")  // com/example/Main.java
//	n.Path(".class") // com/example/Main.class
package unit

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/sourcepath/pkg/errors"
)

// Name is a fully-qualified unit name. The zero value is not valid.
type Name struct {
	Namespace []string // Namespace segments, empty for the root namespace
	Simple    string   // Unit name within the namespace
}

// Parse splits a dot-separated fully-qualified name into a Name.
func Parse(s string) (Name, error) {
	if err := errors.ValidateUnitName(s); err != nil {
		return Name{}, err
	}
	parts := strings.Split(s, ".")
	return Name{
		Namespace: parts[:len(parts)-1:len(parts)-1],
		Simple:    parts[len(parts)-1],
	}, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Name {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// New builds a Name from a dot-separated namespace and a simple name.
// An empty namespace denotes the root namespace.
func New(namespace, simple string) (Name, error) {
	if namespace == "" {
		return Parse(simple)
	}
	return Parse(namespace + "." + simple)
}

// String returns the dot-separated form, e.g. "com.example.Main".
func (n Name) String() string {
	if len(n.Namespace) == 0 {
		return n.Simple
	}
	return strings.Join(n.Namespace, ".") + "." + n.Simple
}

// NamespaceString returns the dot-separated namespace, or "" for the root namespace.
func (n Name) NamespaceString() string {
	return strings.Join(n.Namespace, ".")
}

// Dir returns the namespace-derived directory relative to a root.
// The root namespace maps to ".".
func (n Name) Dir() string {
	if len(n.Namespace) == 0 {
		return "."
	}
	return filepath.Join(n.Namespace...)
}

// Path returns the namespace-derived file path for the given suffix,
// relative to a root.
func (n Name) Path(suffix string) string {
	return filepath.Join(n.Dir(), n.Simple+suffix)
}

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool {
	return n.Simple == "" && len(n.Namespace) == 0
}

// Equal reports whether two names denote the same unit.
func (n Name) Equal(o Name) bool {
	return n.Simple == o.Simple && slices.Equal(n.Namespace, o.Namespace)
}

// HasPrefix reports whether the dotted form of n starts with any of the
// given prefixes. Prefixes are matched literally ("java." matches
// "java.util.List" but not "javax.swing.JPanel").
func (n Name) HasPrefix(prefixes ...string) bool {
	s := n.String()
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Outer returns the type enclosing a nested type name, so "a.b.Outer.Inner"
// yields "a.b.Outer". ok is false when the last namespace segment is not
// capitalised, which by convention means n is a top-level unit.
func (n Name) Outer() (outer Name, ok bool) {
	k := len(n.Namespace)
	if k == 0 || !isCapitalised(n.Namespace[k-1]) {
		return Name{}, false
	}
	return Name{Namespace: n.Namespace[: k-1 : k-1], Simple: n.Namespace[k-1]}, true
}

func isCapitalised(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

// IsFileEntry reports whether an entry point given by a user names a source
// file ("src/com/example/Main.java") rather than a unit ("com.example.Main").
func IsFileEntry(entry, suffix string) bool {
	return strings.HasSuffix(entry, suffix) ||
		strings.ContainsRune(entry, '/') ||
		strings.ContainsRune(entry, filepath.Separator)
}

// FromPath converts a path relative to a root, such as
// "com/example/Main.java", back into a Name. The suffix must match.
func FromPath(rel, suffix string) (Name, error) {
	slashed := filepath.ToSlash(filepath.Clean(rel))
	if err := errors.ValidatePath(slashed); err != nil {
		return Name{}, err
	}
	if !strings.HasSuffix(slashed, suffix) {
		return Name{}, errors.New(errors.ErrCodeInvalidPath, "%s does not end in %s", rel, suffix)
	}
	dotted := strings.ReplaceAll(strings.TrimSuffix(slashed, suffix), "/", ".")
	return Parse(dotted)
}

// Strings converts names to their dotted form.
func Strings(names []Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.String()
	}
	return out
}
