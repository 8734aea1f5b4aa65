// errors.go — error taxonomy and user-facing error rendering.
//
// Two disjoint families:
//
//   - ConstructionError: raised only while Enter/Explore validate and build a
//     multiverse, before any universe executes. Every member is fatal; no
//     partially-built Multiverse is ever returned alongside one.
//   - *RuntimeError: any fault raised by the analysis body while a universe
//     runs. The engine never catches these; they propagate to the caller of
//     Explore/ExploreInto/ExploreAll unmodified.
//
// There is deliberately no "measurement not found" error: a declared
// measurement not reached on a given path is recorded as Missing.
//
// WrapErrorWithSource upgrades lex/parse errors to caret-annotated snippets
// for front ends that hold the source text.
package multiverses

import (
	"fmt"
	"strings"
)

// ConstructionError marks validation failures detected while building a
// Multiverse. Use errors.As with the concrete types to discriminate.
type ConstructionError interface {
	error
	constructionError()
}

// DuplicateChoiceError: a choice identifier was declared more than once.
type DuplicateChoiceError struct{ Name string }

// InsufficientPossibilitiesError: a possibility expression resolved to fewer
// than two candidate values (or to a non-collection).
type InsufficientPossibilitiesError struct {
	Name string
	Got  int
}

// MalformedChoiceError: a choice marker does not wrap an
// "identifier = collection-expression" assignment.
type MalformedChoiceError struct{ Detail string }

// DuplicateMeasurementError: a measurement identifier was declared twice.
type DuplicateMeasurementError struct{ Name string }

// MalformedMeasurementError: a measurement marker does not wrap an
// "identifier = expression" assignment.
type MalformedMeasurementError struct{ Detail string }

// NoChoicesError: the body declares no choice points.
type NoChoicesError struct{}

// NoMeasurementsError: the body declares no measurements.
type NoMeasurementsError struct{}

// IdentifierCollisionError: an identifier is declared both as a choice and as
// a measurement.
type IdentifierCollisionError struct{ Name string }

func (e *DuplicateChoiceError) Error() string {
	return fmt.Sprintf("duplicate choice %q", e.Name)
}

func (e *InsufficientPossibilitiesError) Error() string {
	return fmt.Sprintf("choice %q needs at least 2 possibilities, got %d", e.Name, e.Got)
}

func (e *MalformedChoiceError) Error() string {
	return "malformed choice: " + e.Detail
}

func (e *DuplicateMeasurementError) Error() string {
	return fmt.Sprintf("duplicate measurement %q", e.Name)
}

func (e *MalformedMeasurementError) Error() string {
	return "malformed measurement: " + e.Detail
}

func (e *NoChoicesError) Error() string      { return "analysis body declares no choices" }
func (e *NoMeasurementsError) Error() string { return "analysis body declares no measurements" }

func (e *IdentifierCollisionError) Error() string {
	return fmt.Sprintf("identifier %q declared as both choice and measurement", e.Name)
}

func (*DuplicateChoiceError) constructionError()           {}
func (*InsufficientPossibilitiesError) constructionError() {}
func (*MalformedChoiceError) constructionError()           {}
func (*DuplicateMeasurementError) constructionError()      {}
func (*MalformedMeasurementError) constructionError()      {}
func (*NoChoicesError) constructionError()                 {}
func (*NoMeasurementsError) constructionError()            {}
func (*IdentifierCollisionError) constructionError()       {}

// RuntimeError represents an execution-time failure inside an analysis body.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return "runtime error: " + e.Msg }

func runtimeErrf(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes *LexError and *ParseError and
// leaves other errors untouched.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *LexError:
		// Lexer columns are 0-based; render as 1-based.
		return fmt.Errorf("%s", prettyErrorString(src, "LEXICAL ERROR", e.Line, e.Col+1, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", prettyErrorString(src, "PARSE ERROR", e.Line, e.Col+1, e.Msg))
	default:
		return err
	}
}

// prettyErrorString builds a snippet with a header and a caret, showing at
// most one previous and one next line. Coordinates are 1-based and clamped.
func prettyErrorString(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
