// eval.go — tree-walking evaluator for analysis bodies.
//
// The same evaluator serves both phases of the engine:
//
//   - Phase 1 (declaration resolution): possibility expressions are evaluated
//     once, against the outer scope, while the scanner walks the raw tree.
//     These calls pass run == nil; the compiled-only tags ("choicevar",
//     "record") are illegal then.
//   - Phase 2 (universe execution): the compiled template is evaluated in a
//     fresh child of the outer scope with a non-nil run context carrying the
//     universe's choice assignment and its measurement accumulator.
//
// Analysis bodies use a single environment frame per universe: assignments
// inside conditional branches stay visible to later statements on the same
// path, which is what measurement instrumentation relies on.
//
// All faults surface as *RuntimeError and are never caught here.
package multiverses

import (
	"fmt"
	"math"
)

// Runtime owns the builtin scope and the user-visible outer scope.
//
//   - Core holds native builtins and is the parent of Global.
//   - Global is the outer scope: bind analysis inputs here before Enter so
//     possibility and measurement expressions can reference them.
type Runtime struct {
	Core   *Env
	Global *Env
}

// NewRuntime constructs a runtime with standard builtins installed in Core
// and an empty Global as its child.
func NewRuntime() *Runtime {
	rt := &Runtime{}
	rt.Core = NewEnv(nil)
	rt.Global = NewEnv(rt.Core)
	registerBuiltins(rt.Core)
	return rt
}

// Bind defines name in the outer scope. Convenience for hosts feeding data
// into an analysis.
func (rt *Runtime) Bind(name string, v Value) { rt.Global.Define(name, v) }

// universeRun is the per-invocation execution context of one universe: the
// choice assignment being substituted and a fresh accumulator for reached
// measurements. It exists only during Phase 2.
type universeRun struct {
	assign   Assignment
	observed *MapObject
}

func (rt *Runtime) eval(n S, env *Env, run *universeRun) (Value, error) {
	if len(n) == 0 {
		return Null, runtimeErrf("empty node")
	}
	tag, ok := n[0].(string)
	if !ok {
		return Null, runtimeErrf("malformed node: tag is %T", n[0])
	}

	switch tag {
	case "block":
		out := Null
		for _, child := range n[1:] {
			cs, ok := child.(S)
			if !ok {
				return Null, runtimeErrf("malformed block child: %T", child)
			}
			v, err := rt.eval(cs, env, run)
			if err != nil {
				return Null, err
			}
			out = v
		}
		return out, nil

	case "null":
		return Null, nil
	case "bool":
		return Bool(n[1].(bool)), nil
	case "int":
		return Int(n[1].(int64)), nil
	case "num":
		return Num(n[1].(float64)), nil
	case "str":
		return Str(n[1].(string)), nil

	case "id":
		v, err := env.Get(n[1].(string))
		if err != nil {
			return Null, runtimeErrf("%v", err)
		}
		return v, nil

	case "array":
		out := make([]Value, 0, len(n)-1)
		for _, child := range n[1:] {
			v, err := rt.eval(child.(S), env, run)
			if err != nil {
				return Null, err
			}
			out = append(out, v)
		}
		return Arr(out), nil

	case "assign":
		name, ok := assignTarget(n)
		if !ok {
			return Null, runtimeErrf("assignment target must be an identifier")
		}
		v, err := rt.eval(n[2].(S), env, run)
		if err != nil {
			return Null, err
		}
		env.assign(name, v)
		return v, nil

	case "unop":
		return rt.evalUnop(n, env, run)
	case "binop":
		return rt.evalBinop(n, env, run)
	case "call":
		return rt.evalCall(n, env, run)
	case "idx":
		return rt.evalIndex(n, env, run)

	case "if":
		return rt.evalIf(n, env, run)

	case "while":
		for {
			c, err := rt.eval(n[1].(S), env, run)
			if err != nil {
				return Null, err
			}
			if c.Tag != VTBool {
				return Null, runtimeErrf("while condition must be a boolean, got %s", c)
			}
			if !c.Data.(bool) {
				return Null, nil
			}
			if _, err := rt.eval(n[2].(S), env, run); err != nil {
				return Null, err
			}
		}

	case "for":
		name := n[1].(S)[1].(string)
		iter, err := rt.eval(n[2].(S), env, run)
		if err != nil {
			return Null, err
		}
		if iter.Tag != VTArray {
			return Null, runtimeErrf("for iterates arrays, got %s", iter)
		}
		for _, item := range iter.Data.([]Value) {
			env.assign(name, item)
			if _, err := rt.eval(n[3].(S), env, run); err != nil {
				return Null, err
			}
		}
		return Null, nil

	case "choicevar":
		// Compiled choice point: read the substituted value for this universe.
		if run == nil {
			return Null, runtimeErrf("choice point outside universe execution")
		}
		name := n[1].(string)
		v, ok := run.assign.Value(name)
		if !ok {
			return Null, runtimeErrf("no assignment for choice %q", name)
		}
		env.assign(name, v)
		return v, nil

	case "record":
		// Compiled measurement: perform the assignment, then record it.
		if run == nil {
			return Null, runtimeErrf("measurement outside universe execution")
		}
		name := n[1].(string)
		v, err := rt.eval(n[2].(S), env, run)
		if err != nil {
			return Null, err
		}
		env.assign(name, v)
		run.observed.Set(name, v)
		return v, nil

	case "choose", "measure":
		return Null, runtimeErrf("%s marker reached the evaluator; run the tree through Enter", tag)
	}
	return Null, runtimeErrf("unknown node %q", tag)
}

// assignTarget extracts the identifier from an ("assign", ("id", name), rhs)
// node.
func assignTarget(n S) (string, bool) {
	if len(n) != 3 {
		return "", false
	}
	tgt, ok := n[1].(S)
	if !ok || len(tgt) != 2 {
		return "", false
	}
	if tag, ok := tgt[0].(string); !ok || tag != "id" {
		return "", false
	}
	name, ok := tgt[1].(string)
	return name, ok
}

func (rt *Runtime) evalIf(n S, env *Env, run *universeRun) (Value, error) {
	for _, arm := range n[1:] {
		a := arm.(S)
		if tag, _ := a[0].(string); tag == "pair" {
			c, err := rt.eval(a[1].(S), env, run)
			if err != nil {
				return Null, err
			}
			if c.Tag != VTBool {
				return Null, runtimeErrf("if condition must be a boolean, got %s", c)
			}
			if c.Data.(bool) {
				return rt.eval(a[2].(S), env, run)
			}
			continue
		}
		// Trailing else block.
		return rt.eval(a, env, run)
	}
	return Null, nil
}

func (rt *Runtime) evalUnop(n S, env *Env, run *universeRun) (Value, error) {
	op := n[1].(string)
	v, err := rt.eval(n[2].(S), env, run)
	if err != nil {
		return Null, err
	}
	switch op {
	case "-":
		switch v.Tag {
		case VTInt:
			return Int(-v.Data.(int64)), nil
		case VTNum:
			return Num(-v.Data.(float64)), nil
		}
		return Null, runtimeErrf("cannot negate %s", v)
	case "not":
		if v.Tag != VTBool {
			return Null, runtimeErrf("'not' needs a boolean, got %s", v)
		}
		return Bool(!v.Data.(bool)), nil
	}
	return Null, runtimeErrf("unknown unary operator %q", op)
}

func (rt *Runtime) evalBinop(n S, env *Env, run *universeRun) (Value, error) {
	op := n[1].(string)

	// Short-circuit forms first.
	if op == "and" || op == "or" {
		l, err := rt.eval(n[2].(S), env, run)
		if err != nil {
			return Null, err
		}
		if l.Tag != VTBool {
			return Null, runtimeErrf("%q needs booleans, got %s", op, l)
		}
		if op == "and" && !l.Data.(bool) {
			return Bool(false), nil
		}
		if op == "or" && l.Data.(bool) {
			return Bool(true), nil
		}
		r, err := rt.eval(n[3].(S), env, run)
		if err != nil {
			return Null, err
		}
		if r.Tag != VTBool {
			return Null, runtimeErrf("%q needs booleans, got %s", op, r)
		}
		return r, nil
	}

	l, err := rt.eval(n[2].(S), env, run)
	if err != nil {
		return Null, err
	}
	r, err := rt.eval(n[3].(S), env, run)
	if err != nil {
		return Null, err
	}

	switch op {
	case "==":
		return Bool(deepEqual(l, r)), nil
	case "!=":
		return Bool(!deepEqual(l, r)), nil
	}

	bothInt := l.Tag == VTInt && r.Tag == VTInt
	numeric := (l.Tag == VTInt || l.Tag == VTNum) && (r.Tag == VTInt || r.Tag == VTNum)

	switch op {
	case "+":
		if bothInt {
			return Int(l.Data.(int64) + r.Data.(int64)), nil
		}
		if numeric {
			return Num(asNum(l) + asNum(r)), nil
		}
		if l.Tag == VTStr && r.Tag == VTStr {
			return Str(l.Data.(string) + r.Data.(string)), nil
		}
		if l.Tag == VTArray && r.Tag == VTArray {
			la := l.Data.([]Value)
			ra := r.Data.([]Value)
			out := make([]Value, 0, len(la)+len(ra))
			out = append(out, la...)
			out = append(out, ra...)
			return Arr(out), nil
		}
	case "-":
		if bothInt {
			return Int(l.Data.(int64) - r.Data.(int64)), nil
		}
		if numeric {
			return Num(asNum(l) - asNum(r)), nil
		}
	case "*":
		if bothInt {
			return Int(l.Data.(int64) * r.Data.(int64)), nil
		}
		if numeric {
			return Num(asNum(l) * asNum(r)), nil
		}
	case "/":
		if numeric {
			if asNum(r) == 0 {
				return Null, runtimeErrf("division by zero")
			}
			return Num(asNum(l) / asNum(r)), nil
		}
	case "%":
		if bothInt {
			if r.Data.(int64) == 0 {
				return Null, runtimeErrf("division by zero")
			}
			return Int(l.Data.(int64) % r.Data.(int64)), nil
		}
	case "<", "<=", ">", ">=":
		if numeric {
			return compareOrdered(op, asNum(l), asNum(r)), nil
		}
		if l.Tag == VTStr && r.Tag == VTStr {
			return compareOrdered(op, l.Data.(string), r.Data.(string)), nil
		}
	}
	return Null, runtimeErrf("operator %q not defined for %s and %s", op, l, r)
}

func compareOrdered[T int64 | float64 | string](op string, a, b T) Value {
	switch op {
	case "<":
		return Bool(a < b)
	case "<=":
		return Bool(a <= b)
	case ">":
		return Bool(a > b)
	default:
		return Bool(a >= b)
	}
}

func (rt *Runtime) evalCall(n S, env *Env, run *universeRun) (Value, error) {
	callee, err := rt.eval(n[1].(S), env, run)
	if err != nil {
		return Null, err
	}
	if callee.Tag != VTFun {
		return Null, runtimeErrf("cannot call %s", callee)
	}
	f := callee.Data.(*Fun)
	args := make([]Value, 0, len(n)-2)
	for _, a := range n[2:] {
		v, err := rt.eval(a.(S), env, run)
		if err != nil {
			return Null, err
		}
		args = append(args, v)
	}
	if f.Arity >= 0 && len(args) != f.Arity {
		return Null, runtimeErrf("%s expects %d argument(s), got %d", f.Name, f.Arity, len(args))
	}
	out, err := f.Impl(args)
	if err != nil {
		if re, ok := err.(*RuntimeError); ok {
			return Null, re
		}
		return Null, runtimeErrf("%s: %v", f.Name, err)
	}
	return out, nil
}

func (rt *Runtime) evalIndex(n S, env *Env, run *universeRun) (Value, error) {
	obj, err := rt.eval(n[1].(S), env, run)
	if err != nil {
		return Null, err
	}
	idx, err := rt.eval(n[2].(S), env, run)
	if err != nil {
		return Null, err
	}
	switch obj.Tag {
	case VTArray:
		if idx.Tag != VTInt {
			return Null, runtimeErrf("array index must be an integer, got %s", idx)
		}
		xs := obj.Data.([]Value)
		i := idx.Data.(int64)
		if i < 0 || i >= int64(len(xs)) {
			return Null, runtimeErrf("index %d out of range [0,%d)", i, len(xs))
		}
		return xs[i], nil
	case VTMap:
		if idx.Tag != VTStr {
			return Null, runtimeErrf("map key must be a string, got %s", idx)
		}
		v, ok := obj.Data.(*MapObject).Get(idx.Data.(string))
		if !ok {
			return Null, runtimeErrf("missing map key %q", idx.Data.(string))
		}
		return v, nil
	}
	return Null, runtimeErrf("cannot index %s", obj)
}

// ─────────────────────────── builtins ───────────────────────────

func registerBuiltins(core *Env) {
	def := func(name string, arity int, impl func(args []Value) (Value, error)) {
		core.Define(name, FunVal(&Fun{Name: name, Arity: arity, Impl: impl}))
	}

	def("len", 1, func(args []Value) (Value, error) {
		switch args[0].Tag {
		case VTArray:
			return Int(int64(len(args[0].Data.([]Value)))), nil
		case VTStr:
			return Int(int64(len(args[0].Data.(string)))), nil
		case VTMap:
			return Int(int64(args[0].Data.(*MapObject).Len())), nil
		}
		return Null, fmt.Errorf("len of %s", args[0])
	})

	def("sum", 1, func(args []Value) (Value, error) {
		xs, err := numSlice(args[0])
		if err != nil {
			return Null, err
		}
		allInt := args[0].Tag == VTArray && intsOnly(args[0].Data.([]Value))
		total := 0.0
		for _, x := range xs {
			total += x
		}
		if allInt {
			return Int(int64(total)), nil
		}
		return Num(total), nil
	})

	def("mean", 1, func(args []Value) (Value, error) {
		xs, err := numSlice(args[0])
		if err != nil {
			return Null, err
		}
		if len(xs) == 0 {
			return Null, fmt.Errorf("mean of empty array")
		}
		total := 0.0
		for _, x := range xs {
			total += x
		}
		return Num(total / float64(len(xs))), nil
	})

	def("min", 1, func(args []Value) (Value, error) { return extremum(args[0], true) })
	def("max", 1, func(args []Value) (Value, error) { return extremum(args[0], false) })

	def("abs", 1, func(args []Value) (Value, error) {
		switch args[0].Tag {
		case VTInt:
			n := args[0].Data.(int64)
			if n < 0 {
				n = -n
			}
			return Int(n), nil
		case VTNum:
			return Num(math.Abs(args[0].Data.(float64))), nil
		}
		return Null, fmt.Errorf("abs of %s", args[0])
	})

	def("sqrt", 1, func(args []Value) (Value, error) {
		if args[0].Tag != VTInt && args[0].Tag != VTNum {
			return Null, fmt.Errorf("sqrt of %s", args[0])
		}
		x := asNum(args[0])
		if x < 0 {
			return Null, fmt.Errorf("sqrt of negative %g", x)
		}
		return Num(math.Sqrt(x)), nil
	})

	def("round", 1, func(args []Value) (Value, error) {
		switch args[0].Tag {
		case VTInt:
			return args[0], nil
		case VTNum:
			return Int(int64(math.Round(args[0].Data.(float64)))), nil
		}
		return Null, fmt.Errorf("round of %s", args[0])
	})

	// range(lo, hi) is inclusive on both ends; handy for possibility lists.
	def("range", 2, func(args []Value) (Value, error) {
		if args[0].Tag != VTInt || args[1].Tag != VTInt {
			return Null, fmt.Errorf("range needs integers")
		}
		lo := args[0].Data.(int64)
		hi := args[1].Data.(int64)
		if hi < lo {
			return Arr(nil), nil
		}
		out := make([]Value, 0, hi-lo+1)
		for i := lo; i <= hi; i++ {
			out = append(out, Int(i))
		}
		return Arr(out), nil
	})
}

func numSlice(v Value) ([]float64, error) {
	if v.Tag != VTArray {
		return nil, fmt.Errorf("expected an array, got %s", v)
	}
	xs := v.Data.([]Value)
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x.Tag != VTInt && x.Tag != VTNum {
			return nil, fmt.Errorf("expected numbers, got %s", x)
		}
		out = append(out, asNum(x))
	}
	return out, nil
}

func intsOnly(xs []Value) bool {
	for _, x := range xs {
		if x.Tag != VTInt {
			return false
		}
	}
	return true
}

func extremum(v Value, wantMin bool) (Value, error) {
	if v.Tag != VTArray {
		return Null, fmt.Errorf("expected an array, got %s", v)
	}
	xs := v.Data.([]Value)
	if len(xs) == 0 {
		return Null, fmt.Errorf("empty array")
	}
	best := xs[0]
	for _, x := range xs[1:] {
		if x.Tag != VTInt && x.Tag != VTNum {
			return Null, fmt.Errorf("expected numbers, got %s", x)
		}
		if (wantMin && asNum(x) < asNum(best)) || (!wantMin && asNum(x) > asNum(best)) {
			best = x
		}
	}
	if best.Tag != VTInt && best.Tag != VTNum {
		return Null, fmt.Errorf("expected numbers, got %s", best)
	}
	return best, nil
}
