package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/sourcepath/pkg/errors"
)

func TestParseHeader(t *testing.T) {
	src := `
/* Licensed under
 * whatever. import fake.Thing; */
package com.example; // trailing

import com.example.util.Log;
import com.example.model.*;
import static com.example.util.Strings.join;
import static com.example.util.Config.*;
import java.util.List;

public class Main {}
`
	f, err := Parse("Main.java", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if f.Namespace != "com.example" {
		t.Errorf("Namespace = %q, want com.example", f.Namespace)
	}
	wantImports := []string{
		"com.example.util.Log",
		"com.example.util.Strings",
		"com.example.util.Config",
		"java.util.List",
	}
	if diff := cmp.Diff(wantImports, f.Imports); diff != "" {
		t.Errorf("Imports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"com.example.model"}, f.OnDemand); diff != "" {
		t.Errorf("OnDemand mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRootNamespace(t *testing.T) {
	f, err := Parse("Hello.java", []byte("public class Hello { }"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if f.Namespace != "" {
		t.Errorf("Namespace = %q, want empty", f.Namespace)
	}
	if diff := cmp.Diff([]string{"Hello"}, f.TypeRefs); diff != "" {
		t.Errorf("TypeRefs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBodyReferences(t *testing.T) {
	src := `package app;

public class Main {
    // Ignored mentions: Commented
    private final Helper helper = new Helper();
    private com.example.io.Reader reader;

    public static void main(String[] args) {
        System.out.println("Quoted " + args.length);
        char c = 'X';
        Util.run(helper.Value);
        new com.example.Factory().make().Result();
    }
}
`
	f, err := Parse("Main.java", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	wantTypes := []string{"Main", "Helper", "String", "System", "Util"}
	if diff := cmp.Diff(wantTypes, f.TypeRefs); diff != "" {
		t.Errorf("TypeRefs mismatch (-want +got):\n%s", diff)
	}
	wantQualified := []string{"com.example.io.Reader", "helper.Value", "com.example.Factory"}
	if diff := cmp.Diff(wantQualified, f.QualifiedRefs); diff != "" {
		t.Errorf("QualifiedRefs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing semicolon", "package a.b\nclass X {}"},
		{"wildcard namespace", "package a.*;"},
		{"wildcard in middle", "import a.*.B;"},
		{"unterminated import", "import a.b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("X.java", []byte(tt.src))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidSource) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidSource)
			}
		})
	}
}
