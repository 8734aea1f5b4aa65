package multiverses

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func assignmentInts(t *testing.T, as []Assignment) [][]int64 {
	t.Helper()
	out := make([][]int64, 0, len(as))
	for _, a := range as {
		row := make([]int64, len(a.Names()))
		for i := range a.Names() {
			v := a.At(i)
			if v.Tag != VTInt {
				t.Fatalf("non-int assignment value %s", v)
			}
			row[i] = v.Data.(int64)
		}
		out = append(out, row)
	}
	return out
}

func TestBuildAssignmentsSingleChoice(t *testing.T) {
	as := buildAssignments([]Choice{
		{Name: "a", Possibilities: []Value{Int(1), Int(2), Int(3)}},
	})
	want := [][]int64{{1}, {2}, {3}}
	if diff := cmp.Diff(want, assignmentInts(t, as)); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAssignmentsLastVariesFastest(t *testing.T) {
	as := buildAssignments([]Choice{
		{Name: "a", Possibilities: []Value{Int(1), Int(2)}},
		{Name: "b", Possibilities: []Value{Int(10), Int(20), Int(30)}},
	})
	want := [][]int64{
		{1, 10}, {1, 20}, {1, 30},
		{2, 10}, {2, 20}, {2, 30},
	}
	if diff := cmp.Diff(want, assignmentInts(t, as)); diff != "" {
		t.Fatalf("assignments mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAssignmentsCount(t *testing.T) {
	as := buildAssignments([]Choice{
		{Name: "a", Possibilities: []Value{Int(1), Int(2)}},
		{Name: "b", Possibilities: []Value{Int(1), Int(2), Int(3)}},
		{Name: "c", Possibilities: []Value{Int(1), Int(2), Int(3), Int(4)}},
	})
	if len(as) != 24 {
		t.Fatalf("want 2*3*4 = 24 assignments, got %d", len(as))
	}
}

func TestAssignmentLookup(t *testing.T) {
	as := buildAssignments([]Choice{
		{Name: "a", Possibilities: []Value{Int(1), Int(2)}},
		{Name: "b", Possibilities: []Value{Str("x"), Str("y")}},
	})
	v, ok := as[1].Value("b")
	if !ok || v.Data.(string) != "y" {
		t.Fatalf("Value(b) = %s, %v", v, ok)
	}
	if _, ok := as[0].Value("nope"); ok {
		t.Fatal("lookup of unknown name succeeded")
	}
	if got := as[0].Names(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Names() = %v", got)
	}
}

func TestAssignmentNamesIsACopy(t *testing.T) {
	as := buildAssignments([]Choice{
		{Name: "a", Possibilities: []Value{Int(1), Int(2)}},
	})
	names := as[0].Names()
	names[0] = "clobbered"
	if got := as[0].Names(); got[0] != "a" {
		t.Fatalf("internal names mutated through the accessor: %v", got)
	}
	if _, ok := as[0].Value("a"); !ok {
		t.Fatal("lookup broken after mutating the returned slice")
	}
}
