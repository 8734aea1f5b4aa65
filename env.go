// env.go — lexical environments.
package multiverses

import "fmt"

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward. The engine builds three layers: Core (builtins), the outer
// scope handed to Enter (where possibility expressions resolve), and one
// fresh child per universe invocation.
type Env struct {
	parent *Env
	table  map[string]Value
}

// NewEnv creates a new frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: make(map[string]Value)}
}

// Define binds name to v in the current frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) {
	e.table[name] = v
}

// Set updates the nearest existing binding of name. If no visible binding
// exists it returns an error; it does not implicitly define.
func (e *Env) Set(name string, v Value) error {
	if _, ok := e.table[name]; ok {
		e.table[name] = v
		return nil
	}
	if e.parent != nil {
		return e.parent.Set(name, v)
	}
	return fmt.Errorf("undefined variable: %s", name)
}

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, error) {
	if v, ok := e.table[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, fmt.Errorf("undefined variable: %s", name)
}

// assign binds name in the current frame, shadowing rather than mutating any
// outer binding: a universe may read host data from the outer scope, but its
// writes never escape the run. Analysis bodies use a single frame per
// universe, so branch-local assignments remain visible to later statements on
// the same path.
func (e *Env) assign(name string, v Value) {
	e.table[name] = v
}
