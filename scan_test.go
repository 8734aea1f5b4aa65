package multiverses

import (
	"testing"
)

func scanFail(t *testing.T, src string) error {
	t.Helper()
	rt := NewRuntime()
	_, err := rt.Enter(mustParse(t, src))
	if err == nil {
		t.Fatalf("want construction error for %q", src)
	}
	return err
}

func TestScanCollectsDeclarations(t *testing.T) {
	rt := NewRuntime()
	tree := mustParse(t, `
choose a = [1, 2]
choose b = ["x", "y", "z"]
measure m = a
`)
	res, err := rt.scanTree(tree, rt.Global)
	if err != nil {
		t.Fatalf("scanTree: %v", err)
	}
	if len(res.choices) != 2 || len(res.measurements) != 1 {
		t.Fatalf("got %d choices, %d measurements", len(res.choices), len(res.measurements))
	}
	if res.choices[0].Name != "a" || res.choices[1].Name != "b" {
		t.Fatalf("choice order: %q, %q", res.choices[0].Name, res.choices[1].Name)
	}
	if len(res.choices[1].Possibilities) != 3 {
		t.Fatalf("b possibilities: %d", len(res.choices[1].Possibilities))
	}
	if res.measurements[0] != "m" {
		t.Fatalf("measurement: %q", res.measurements[0])
	}
}

func TestScanIgnoresReachability(t *testing.T) {
	// Declarations inside branches register regardless of whether any
	// universe would execute them.
	rt := NewRuntime()
	tree := mustParse(t, `
choose a = [0, 1]
if a == 99 then
  choose b = [1, 2, 3]
end
measure m = a
`)
	res, err := rt.scanTree(tree, rt.Global)
	if err != nil {
		t.Fatalf("scanTree: %v", err)
	}
	if len(res.choices) != 2 {
		t.Fatalf("want nested choice registered, got %d choices", len(res.choices))
	}
}

func TestScanPossibilitiesUseOuterScope(t *testing.T) {
	rt := NewRuntime()
	rt.Bind("opts", Arr([]Value{Int(10), Int(20)}))
	tree := mustParse(t, "choose a = opts\nmeasure m = a")
	res, err := rt.scanTree(tree, rt.Global)
	if err != nil {
		t.Fatalf("scanTree: %v", err)
	}
	if got := res.choices[0].Possibilities; len(got) != 2 || got[0].Data.(int64) != 10 {
		t.Fatalf("possibilities: %v", got)
	}
}

func TestScanDuplicateChoice(t *testing.T) {
	err := scanFail(t, "choose a = [1, 2]\nchoose a = [3, 4]\nmeasure m = a")
	dup, ok := err.(*DuplicateChoiceError)
	if !ok {
		t.Fatalf("want *DuplicateChoiceError, got %T (%v)", err, err)
	}
	if dup.Name != "a" {
		t.Fatalf("name: %q", dup.Name)
	}
}

func TestScanInsufficientPossibilities(t *testing.T) {
	for _, src := range []string{
		"choose a = [1]\nmeasure m = a",
		"choose a = []\nmeasure m = a",
		"choose a = 7\nmeasure m = a",
	} {
		err := scanFail(t, src)
		ins, ok := err.(*InsufficientPossibilitiesError)
		if !ok {
			t.Fatalf("%q: want *InsufficientPossibilitiesError, got %T (%v)", src, err, err)
		}
		if ins.Name != "a" {
			t.Fatalf("%q: name %q", src, ins.Name)
		}
	}
}

func TestScanMalformedChoice(t *testing.T) {
	// Built by hand: the surface parser cannot produce these shapes.
	cases := []S{
		L("block", L("choose", L("id", "a"), L("id", "b"))),
		L("block", L("choose", L("binop", "+", L("int", int64(1)), L("int", int64(2))))),
		L("block", L("choose", S{})),
		L("block", L("choose", 42)),
		L("block", L("choose", L("assign", L("id", "a"), 42))),
	}
	rt := NewRuntime()
	for i, tree := range cases {
		_, err := rt.Enter(tree)
		if _, ok := err.(*MalformedChoiceError); !ok {
			t.Fatalf("case %d: want *MalformedChoiceError, got %T (%v)", i, err, err)
		}
	}
}

func TestScanDuplicateMeasurement(t *testing.T) {
	err := scanFail(t, "choose a = [1, 2]\nmeasure m = a\nmeasure m = a + 1")
	dup, ok := err.(*DuplicateMeasurementError)
	if !ok {
		t.Fatalf("want *DuplicateMeasurementError, got %T (%v)", err, err)
	}
	if dup.Name != "m" {
		t.Fatalf("name: %q", dup.Name)
	}
}

func TestScanMalformedMeasurement(t *testing.T) {
	validChoice := L("choose", L("assign", L("id", "a"), L("array", L("int", int64(1)), L("int", int64(2)))))
	cases := []S{
		L("block", validChoice, L("measure", L("id", "m"))),
		L("block", validChoice, L("measure", S{})),
		L("block", validChoice, L("measure", "m")),
		L("block", validChoice, L("measure", L("assign", L("id", "m"), 7))),
	}
	rt := NewRuntime()
	for i, tree := range cases {
		_, err := rt.Enter(tree)
		if _, ok := err.(*MalformedMeasurementError); !ok {
			t.Fatalf("case %d: want *MalformedMeasurementError, got %T (%v)", i, err, err)
		}
	}
}

func TestScanNoChoices(t *testing.T) {
	err := scanFail(t, "x = 1\nmeasure m = x")
	if _, ok := err.(*NoChoicesError); !ok {
		t.Fatalf("want *NoChoicesError, got %T (%v)", err, err)
	}
}

func TestScanNoMeasurements(t *testing.T) {
	err := scanFail(t, "choose a = [1, 2]\nx = a")
	if _, ok := err.(*NoMeasurementsError); !ok {
		t.Fatalf("want *NoMeasurementsError, got %T (%v)", err, err)
	}
}

func TestScanIdentifierCollision(t *testing.T) {
	err := scanFail(t, "choose a = [1, 2]\nmeasure a = a + 1")
	col, ok := err.(*IdentifierCollisionError)
	if !ok {
		t.Fatalf("want *IdentifierCollisionError, got %T (%v)", err, err)
	}
	if col.Name != "a" {
		t.Fatalf("name: %q", col.Name)
	}
}

func TestScanErrorsAreConstructionErrors(t *testing.T) {
	err := scanFail(t, "x = 1\ny = x")
	if _, ok := err.(ConstructionError); !ok {
		t.Fatalf("%T does not implement ConstructionError", err)
	}
}

func TestScanPossibilityEvalFault(t *testing.T) {
	// A fault inside a possibility expression is a runtime fault, not a
	// construction error.
	err := scanFail(t, "choose a = undefined_thing\nmeasure m = a")
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("want *RuntimeError, got %T (%v)", err, err)
	}
}
