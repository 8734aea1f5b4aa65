// compile.go — universe compiler.
//
// The compiler does not generate one executable per choice combination.
// Instead the validated tree is rewritten once into a shared template —
// choice markers become parameter reads, measurement markers become
// assign-and-record probes — and each universe is the template bound to one
// Assignment. Compiled-code volume is therefore independent of the (possibly
// large) combination count.
//
// Compilation is purely structural and never fails. Execution-time faults in
// user code are not caught here; they propagate to the runner's caller.
package multiverses

// rewriteFn maps one node to its replacement. Returning ok == false keeps the
// node and recurses into its children.
type rewriteFn func(n S) (S, bool)

// rewrite runs a depth-first structural rewrite over n, copying as it goes.
// The original tree is never mutated. Empty nodes pass through untouched, as
// the scanner's walk skips them.
func rewrite(n S, f rewriteFn) S {
	if len(n) == 0 {
		return n
	}
	if out, ok := f(n); ok {
		return out
	}
	copied := make(S, len(n))
	copied[0] = n[0]
	for i, child := range n[1:] {
		if cs, ok := child.(S); ok {
			copied[i+1] = rewrite(cs, f)
		} else {
			copied[i+1] = child
		}
	}
	return copied
}

// compileTemplate rewrites the scanned tree into the executable template:
//
//	("choose",  ("assign", ("id", x), poss)) → ("choicevar", x)
//	("measure", ("assign", ("id", y), e))    → ("record", y, e)
//
// The possibility expression is discarded — it was resolved at scan time and
// its values now live in the assignments.
func compileTemplate(tree S) S {
	return rewrite(tree, func(n S) (S, bool) {
		tag, _ := n[0].(string)
		switch tag {
		case "choose":
			inner := n[1].(S)
			name, _ := assignTarget(inner)
			return L("choicevar", name), true
		case "measure":
			inner := n[1].(S)
			name, _ := assignTarget(inner)
			return L("record", name, compileTemplate(inner[2].(S))), true
		}
		return nil, false
	})
}

// universe is one compiled, independently executable instance of the analysis
// body, bound to exactly one choice assignment.
type universe struct {
	rt       *Runtime
	outer    *Env
	template S
	assign   Assignment
}

// run executes the universe from scratch: a fresh child environment of the
// outer scope, a fresh measurement accumulator, no shared scratch state. The
// returned map holds whichever measurement identifiers were actually reached
// on this execution path. Faults from user code return unmodified.
func (u *universe) run() (*MapObject, error) {
	env := NewEnv(u.outer)
	run := &universeRun{assign: u.assign, observed: NewMapObject()}
	if _, err := u.rt.eval(u.template, env, run); err != nil {
		return nil, err
	}
	return run.observed, nil
}
