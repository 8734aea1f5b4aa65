package multiverses

import (
	"fmt"
	"testing"
)

func countTags(n S, tag string) int {
	total := 0
	if t, _ := n[0].(string); t == tag {
		total++
	}
	for _, child := range n[1:] {
		if cs, ok := child.(S); ok {
			total += countTags(cs, tag)
		}
	}
	return total
}

func TestCompileTemplateRewritesMarkers(t *testing.T) {
	tree := mustParse(t, `
choose a = [1, 2]
if a == 1 then
  choose b = [3, 4]
end
measure m = a
`)
	tpl := compileTemplate(tree)

	for _, tag := range []string{"choose", "measure"} {
		if n := countTags(tpl, tag); n != 0 {
			t.Fatalf("%d %q markers survived compilation", n, tag)
		}
	}
	if n := countTags(tpl, "choicevar"); n != 2 {
		t.Fatalf("want 2 choicevar nodes, got %d", n)
	}
	if n := countTags(tpl, "record"); n != 1 {
		t.Fatalf("want 1 record node, got %d", n)
	}
}

func TestCompileTemplateDropsPossibilityExpr(t *testing.T) {
	tree := mustParse(t, "choose a = [1, 2]\nmeasure m = a")
	tpl := compileTemplate(tree)
	if n := countTags(tpl, "array"); n != 0 {
		t.Fatal("possibility expression should not survive compilation")
	}
}

func TestCompileTemplateToleratesEmptyNodes(t *testing.T) {
	// The scanner's walk skips empty nodes, so they reach compilation;
	// the rewrite must pass them through instead of choking.
	tree := L("block",
		L("choose", L("assign", L("id", "a"), L("array", L("int", int64(1)), L("int", int64(2))))),
		S{},
		L("measure", L("assign", L("id", "m"), L("id", "a"))))
	rt := NewRuntime()
	m, err := rt.Enter(tree)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("want 2 universes, got %d", m.Len())
	}
}

func TestCompileTemplateDoesNotMutate(t *testing.T) {
	tree := mustParse(t, "choose a = [1, 2]\nmeasure m = a + 1")
	before := fmt.Sprintf("%v", tree)
	_ = compileTemplate(tree)
	if after := fmt.Sprintf("%v", tree); after != before {
		t.Fatalf("source tree mutated:\nbefore %s\nafter  %s", before, after)
	}
}

func TestCompileSharedTemplate(t *testing.T) {
	// One template serves every universe; only the bound assignment differs.
	rt := NewRuntime()
	m, err := rt.EnterSource("choose a = [1, 2, 3]\nmeasure m = a")
	if err != nil {
		t.Fatalf("EnterSource: %v", err)
	}
	for i := 1; i < len(m.universes); i++ {
		if &m.universes[i].template[0] != &m.universes[0].template[0] {
			t.Fatal("universes should share one compiled template")
		}
	}
}

func TestUniverseRunCollectsReached(t *testing.T) {
	rt := NewRuntime()
	m, err := rt.EnterSource(`
choose a = [0, 1]
if a == 0 then
  measure hit = a
end
measure always = a
`)
	if err != nil {
		t.Fatalf("EnterSource: %v", err)
	}

	obs, err := m.universes[1].run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := obs.Get("hit"); ok {
		t.Fatal("unreached measurement must be absent from the accumulator")
	}
	if v, ok := obs.Get("always"); !ok || v.Data.(int64) != 1 {
		t.Fatalf("always = %s, %v", v, ok)
	}
}
