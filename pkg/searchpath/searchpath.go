// Package searchpath implements an ordered list of root directories in
// which source units and previously compiled artifacts are looked up by
// their namespace-derived path.
//
// Lookup is first-match-wins: roots are probed in order and, within a root,
// the source file is preferred over an artifact. A unit present on two
// roots is therefore shadowed by the earlier one.
package searchpath

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// Kind tells what a lookup found.
type Kind int

const (
	// KindSource is a source file to be parsed and compiled.
	KindSource Kind = iota
	// KindArtifact is a previously compiled artifact; it is used as-is.
	KindArtifact
)

func (k Kind) String() string {
	if k == KindArtifact {
		return "artifact"
	}
	return "source"
}

// Location is where a unit was found.
type Location struct {
	Root string // Search-path root that matched
	Path string // Full path of the matching file
	Kind Kind
}

// SearchPath is an ordered, immutable list of roots.
type SearchPath struct {
	roots []string
}

// New creates a search path from roots in priority order.
// Empty entries are dropped and each root is cleaned.
func New(roots ...string) *SearchPath {
	sp := &SearchPath{}
	for _, r := range roots {
		if r = strings.TrimSpace(r); r != "" {
			sp.roots = append(sp.roots, filepath.Clean(r))
		}
	}
	return sp
}

// Parse splits a list joined with os.PathListSeparator (":" on Unix,
// ";" on Windows), the form accepted by -sourcepath style flags.
func Parse(list string) *SearchPath {
	return New(filepath.SplitList(list)...)
}

// Roots returns a copy of the roots in priority order.
func (sp *SearchPath) Roots() []string {
	return append([]string(nil), sp.roots...)
}

// Len returns the number of roots.
func (sp *SearchPath) Len() int { return len(sp.roots) }

// String joins the roots with os.PathListSeparator.
func (sp *SearchPath) String() string {
	return strings.Join(sp.roots, string(os.PathListSeparator))
}

// Locate finds name on the search path. For each root in order it checks
// the source path (name.Path(srcSuffix)) and then the artifact path
// (name.Path(artSuffix)); the first regular file found wins. An empty
// artSuffix disables artifact lookup.
//
// found is false when no root contains the unit. Roots that do not exist
// are skipped; other I/O failures are returned as errors.
func (sp *SearchPath) Locate(name unit.Name, srcSuffix, artSuffix string) (loc Location, found bool, err error) {
	candidates := []struct {
		suffix string
		kind   Kind
	}{
		{srcSuffix, KindSource},
		{artSuffix, KindArtifact},
	}

	for _, root := range sp.roots {
		for _, c := range candidates {
			if c.suffix == "" {
				continue
			}
			path := filepath.Join(root, name.Path(c.suffix))
			ok, err := isFile(path)
			if err != nil {
				return Location{}, false, fmt.Errorf("locate %s: %w", name, err)
			}
			if ok {
				return Location{Root: root, Path: path, Kind: c.kind}, true, nil
			}
		}
	}
	return Location{}, false, nil
}

// NameOf maps a file path back to a unit name using the first root that
// contains it. It lets callers pass "src/com/example/Main.java" where a
// unit name is expected.
func (sp *SearchPath) NameOf(path, suffix string) (unit.Name, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return unit.Name{}, err
	}
	for _, root := range sp.roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return unit.FromPath(rel, suffix)
	}
	return unit.Name{}, errors.New(errors.ErrCodeInvalidPath, "%s is not under any search-path root (%s)", path, sp)
}

// Missing returns the roots that do not exist or are not directories.
func (sp *SearchPath) Missing() []string {
	var missing []string
	for _, root := range sp.roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			missing = append(missing, root)
		}
	}
	return missing
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case stderrors.Is(err, fs.ErrNotExist), stderrors.Is(err, syscall.ENOTDIR):
		return false, nil
	default:
		return false, err
	}
}
