package searchpath

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/sourcepath/pkg/unit"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParse(t *testing.T) {
	sep := string(os.PathListSeparator)
	sp := Parse(strings.Join([]string{"src", "", "lib/"}, sep))

	if diff := cmp.Diff([]string{"src", "lib"}, sp.Roots()); diff != "" {
		t.Errorf("Roots() mismatch (-want +got):\n%s", diff)
	}
	if sp.String() != "src"+sep+"lib" {
		t.Errorf("String() = %q", sp.String())
	}
}

func TestLocateFirstMatchWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	name := unit.MustParse("com.example.Util")

	writeFile(t, filepath.Join(second, "com", "example", "Util.java"), "package com.example;")
	writeFile(t, filepath.Join(first, "com", "example", "Util.java"), "package com.example;")

	sp := New(first, second)
	loc, found, err := sp.Locate(name, ".java", ".class")
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if !found {
		t.Fatal("Locate() found = false")
	}
	if loc.Root != first {
		t.Errorf("Root = %s, want %s", loc.Root, first)
	}
	if loc.Kind != KindSource {
		t.Errorf("Kind = %v, want source", loc.Kind)
	}
}

func TestLocateArtifact(t *testing.T) {
	srcRoot := t.TempDir()
	libRoot := t.TempDir()
	name := unit.MustParse("lib.Codec")

	writeFile(t, filepath.Join(libRoot, "lib", "Codec.class"), "compiled")

	sp := New(srcRoot, libRoot)
	loc, found, err := sp.Locate(name, ".java", ".class")
	if err != nil || !found {
		t.Fatalf("Locate() = %v, %v", found, err)
	}
	if loc.Kind != KindArtifact {
		t.Errorf("Kind = %v, want artifact", loc.Kind)
	}
	if loc.Path != filepath.Join(libRoot, "lib", "Codec.class") {
		t.Errorf("Path = %s", loc.Path)
	}

	if _, found, _ := sp.Locate(name, ".java", ""); found {
		t.Error("Locate() with empty artifact suffix should not find artifacts")
	}
}

func TestLocateSourceBeforeArtifactInSameRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "B.java"), "package a;")
	writeFile(t, filepath.Join(root, "a", "B.class"), "old")

	loc, found, err := New(root).Locate(unit.MustParse("a.B"), ".java", ".class")
	if err != nil || !found {
		t.Fatalf("Locate() = %v, %v", found, err)
	}
	if loc.Kind != KindSource {
		t.Errorf("Kind = %v, want source", loc.Kind)
	}
}

func TestLocateMissing(t *testing.T) {
	root := t.TempDir()
	// A file where a namespace directory is expected must read as absence.
	writeFile(t, filepath.Join(root, "a"), "not a directory")

	sp := New(filepath.Join(root, "does-not-exist"), root)
	_, found, err := sp.Locate(unit.MustParse("a.Missing"), ".java", ".class")
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	if found {
		t.Error("Locate() found = true for missing unit")
	}
}

func TestLocateIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "B.java"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := New(root).Locate(unit.MustParse("a.B"), ".java", ""); found {
		t.Error("Locate() matched a directory")
	}
}

func TestNameOf(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "com", "example", "Main.java")
	writeFile(t, path, "package com.example;")

	sp := New(t.TempDir(), root)
	n, err := sp.NameOf(path, ".java")
	if err != nil {
		t.Fatalf("NameOf() error: %v", err)
	}
	if n.String() != "com.example.Main" {
		t.Errorf("NameOf() = %s", n)
	}

	if _, err := sp.NameOf(filepath.Join(t.TempDir(), "X.java"), ".java"); err == nil {
		t.Error("NameOf() outside roots should fail")
	}
}

func TestMissing(t *testing.T) {
	root := t.TempDir()
	gone := filepath.Join(root, "gone")
	sp := New(root, gone)
	if diff := cmp.Diff([]string{gone}, sp.Missing()); diff != "" {
		t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
	}
}
