package multiverses

import (
	"errors"
	"strings"
	"testing"
)

func TestConstructionErrorMessages(t *testing.T) {
	cases := []struct {
		err  ConstructionError
		want string
	}{
		{&DuplicateChoiceError{Name: "a"}, `duplicate choice "a"`},
		{&InsufficientPossibilitiesError{Name: "a", Got: 1}, `choice "a" needs at least 2 possibilities, got 1`},
		{&MalformedChoiceError{Detail: "no assignment"}, "malformed choice: no assignment"},
		{&DuplicateMeasurementError{Name: "m"}, `duplicate measurement "m"`},
		{&MalformedMeasurementError{Detail: "no target"}, "malformed measurement: no target"},
		{&NoChoicesError{}, "analysis body declares no choices"},
		{&NoMeasurementsError{}, "analysis body declares no measurements"},
		{&IdentifierCollisionError{Name: "x"}, `identifier "x" declared as both choice and measurement`},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

func TestConstructionErrorDiscrimination(t *testing.T) {
	var err error = &DuplicateChoiceError{Name: "a"}

	var dup *DuplicateChoiceError
	if !errors.As(err, &dup) || dup.Name != "a" {
		t.Fatal("errors.As failed for concrete type")
	}
	var ce ConstructionError
	if !errors.As(err, &ce) {
		t.Fatal("errors.As failed for the interface")
	}
	var re *RuntimeError
	if errors.As(err, &re) {
		t.Fatal("construction error matched *RuntimeError")
	}
}

func TestWrapErrorWithSourceParse(t *testing.T) {
	src := "x = 1\ny = (2\nz = 3"
	_, perr := Parse(src)
	if perr == nil {
		t.Fatal("want parse error")
	}
	wrapped := WrapErrorWithSource(perr, src)
	out := wrapped.Error()
	if !strings.Contains(out, "PARSE ERROR") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret:\n%s", out)
	}
	if !strings.Contains(out, "y = (2") {
		t.Errorf("missing offending line:\n%s", out)
	}
	if !strings.Contains(out, "x = 1") || !strings.Contains(out, "z = 3") {
		t.Errorf("missing context lines:\n%s", out)
	}
}

func TestWrapErrorWithSourceLex(t *testing.T) {
	src := "x = 1 @ 2"
	_, lerr := Lex(src)
	if lerr == nil {
		t.Fatal("want lex error")
	}
	wrapped := WrapErrorWithSource(lerr, src)
	if !strings.Contains(wrapped.Error(), "LEXICAL ERROR") {
		t.Errorf("missing header:\n%s", wrapped.Error())
	}
}

func TestWrapErrorWithSourcePassthrough(t *testing.T) {
	orig := errors.New("plain")
	if got := WrapErrorWithSource(orig, "src"); got != orig {
		t.Fatalf("unrelated error was rewrapped: %v", got)
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	err := runtimeErrf("bad %s", "thing")
	if err.Error() != "runtime error: bad thing" {
		t.Fatalf("got %q", err.Error())
	}
}
