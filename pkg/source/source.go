// Package source reads a source file far enough to learn where it belongs
// and what it refers to.
//
// Only the header is parsed structurally: an optional namespace
// declaration followed by import declarations. The rest of the file is
// tokenized (comments, string and character literals are skipped) and
// scanned for type-like references:
//
//	package com.example;          // Namespace: "com.example"
//	import com.example.util.Log;  // Imports:   ["com.example.util.Log"]
//	import com.example.model.*;   // OnDemand:  ["com.example.model"]
//
//	public class Main {
//	    Helper h;                     // TypeRefs:      ["Helper"]
//	    com.example.io.Reader r;      // QualifiedRefs: ["com.example.io.Reader"]
//	}
//
// Whether a reference actually denotes a unit is decided later by the build
// driver, which probes the search path.
package source

import (
	stderrors "errors"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/sourcepath/pkg/errors"
)

// File is the parsed header and reference set of one source file.
type File struct {
	Filename      string
	Namespace     string   // Declared namespace, "" if none
	Imports       []string // Single-type imports (static imports reduced to their type)
	OnDemand      []string // Namespaces imported with ".*"
	TypeRefs      []string // Capitalised simple names used in the body
	QualifiedRefs []string // Fully-qualified type names used in the body
}

type fileAST struct {
	Package *nameAST     `parser:"( 'package' @@ ';' )?"`
	Imports []*importAST `parser:"@@*"`
	Body    []string     `parser:"( @Ident | @Number | @String | @Char | @Punct )*"`
}

type importAST struct {
	Pos    lexer.Position
	Static bool     `parser:"'import' @'static'?"`
	Name   *nameAST `parser:"@@ ';'"`
}

type nameAST struct {
	Pos   lexer.Position
	Parts []string `parser:"@Ident ( '.' @( Ident | '*' ) )*"`
}

var sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Char", Pattern: `'(\\.|[^'\\])*'`},
	{Name: "Number", Pattern: `[0-9][0-9a-zA-Z_.]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Punct", Pattern: `[^\sa-zA-Z0-9_$]`},
})

var parser = participle.MustBuild[fileAST](
	participle.Lexer(sourceLexer),
	participle.Elide("Whitespace", "Comment"),
)

var identRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Parse reads data as the contents of filename.
// Syntax errors in the header are reported with errors.ErrCodeInvalidSource.
func Parse(filename string, data []byte) (*File, error) {
	ast, err := parser.ParseBytes(filename, data)
	if err != nil {
		var perr participle.Error
		if stderrors.As(err, &perr) {
			return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "%s: %s", perr.Position(), perr.Message())
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "parse %s", filename)
	}

	f := &File{Filename: filename}
	if ast.Package != nil {
		if slices.Contains(ast.Package.Parts, "*") {
			return nil, errors.New(errors.ErrCodeInvalidSource, "%s: wildcard in namespace declaration", ast.Package.Pos)
		}
		f.Namespace = strings.Join(ast.Package.Parts, ".")
	}

	for _, imp := range ast.Imports {
		if err := f.addImport(imp); err != nil {
			return nil, err
		}
	}

	f.scanBody(ast.Body)
	return f, nil
}

func (f *File) addImport(imp *importAST) error {
	parts := imp.Name.Parts
	if i := slices.Index(parts, "*"); i >= 0 && i != len(parts)-1 {
		return errors.New(errors.ErrCodeInvalidSource, "%s: '*' must end an import", imp.Pos)
	}
	wildcard := parts[len(parts)-1] == "*"
	if wildcard {
		parts = parts[:len(parts)-1]
	}

	if imp.Static {
		// import static a.b.C.member;  -> a.b.C
		// import static a.b.C.*;       -> a.b.C
		if !wildcard {
			parts = parts[:len(parts)-1]
		}
		if len(parts) == 0 {
			return errors.New(errors.ErrCodeInvalidSource, "%s: static import without a type", imp.Pos)
		}
		f.Imports = appendUnique(f.Imports, strings.Join(parts, "."))
		return nil
	}

	if len(parts) == 0 {
		return errors.New(errors.ErrCodeInvalidSource, "%s: empty import", imp.Pos)
	}
	if wildcard {
		f.OnDemand = appendUnique(f.OnDemand, strings.Join(parts, "."))
		return nil
	}
	f.Imports = appendUnique(f.Imports, strings.Join(parts, "."))
	return nil
}

// scanBody groups identifier runs joined by '.' and classifies them.
// A run starting with a capital letter is a simple type reference; a run of
// lower-case segments followed by a capitalised one is a qualified reference.
// Identifiers reached through '.' on a non-identifier (call results,
// literals) are ignored.
func (f *File) scanBody(tokens []string) {
	for i := 0; i < len(tokens); i++ {
		if !isIdent(tokens[i]) || (i > 0 && tokens[i-1] == ".") {
			continue
		}
		run := []string{tokens[i]}
		for i+2 < len(tokens) && tokens[i+1] == "." && isIdent(tokens[i+2]) {
			run = append(run, tokens[i+2])
			i += 2
		}
		f.classify(run)
	}
}

func (f *File) classify(run []string) {
	if isCapitalised(run[0]) {
		f.TypeRefs = appendUnique(f.TypeRefs, run[0])
		return
	}
	for k := 1; k < len(run); k++ {
		if isCapitalised(run[k]) {
			f.QualifiedRefs = appendUnique(f.QualifiedRefs, strings.Join(run[:k+1], "."))
			return
		}
	}
}

func isIdent(s string) bool {
	return identRegex.MatchString(s)
}

func isCapitalised(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
