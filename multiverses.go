// multiverses.go — public surface of the multiverse analysis engine.
//
// A multiverse analysis takes one procedure containing explicit choice points
// ('choose x = [...]', places where an analytic decision could reasonably
// have gone several ways) and measurement points ('measure y = ...', named
// outputs of interest), and re-runs the whole procedure once for every
// combination of choices, collecting a table of outcomes.
//
// Construction (both fail with a ConstructionError on invalid bodies; no
// partially-built Multiverse is ever returned):
//
//	rt := multiverses.NewRuntime()
//	m, err := rt.EnterSource(src)   // build, do not execute
//	m, err := rt.ExploreSource(src) // build, then run every universe
//
// Everything — scanning, validation, Cartesian-product construction,
// compilation — happens eagerly before any universe executes. Universes are
// compiled once and never recompiled; the per-universe result slots are the
// only mutable state. The engine is single-threaded and synchronous: only the
// calling goroutine ever writes a store's slots, so no locking is needed.
// Universes share no state besides the one slot each writes.
//
// Indexing follows the exploration contract: universes are numbered 1..Len().
package multiverses

import "fmt"

// Record covers every declared measurement identifier for one universe.
// Identifiers not reached on that execution path carry Missing.
type Record struct {
	names  []string
	values []Value
}

// Names returns a copy of the measurement identifiers in declaration order.
func (r Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Value returns the recorded value for name, or Missing when name was not
// reached (or not declared).
func (r Record) Value(name string) Value {
	for i, n := range r.names {
		if n == name {
			return r.values[i]
		}
	}
	return Missing
}

// At returns the value at declaration position i.
func (r Record) At(i int) Value { return r.values[i] }

// Multiverse is the aggregate: ordered choice and measurement identifiers and
// three index-aligned sequences of equal length — universes, choice
// assignments, and measurement-result slots (nil until explored).
type Multiverse struct {
	rt    *Runtime
	outer *Env

	choices      []Choice
	measurements []string

	universes   []*universe
	assignments []Assignment
	results     []*Record
}

// Enter scans, validates, and compiles tree into a Multiverse without
// executing any universe. Validation failures return a ConstructionError;
// faults while resolving a possibility expression return a *RuntimeError.
func (rt *Runtime) Enter(tree S) (*Multiverse, error) {
	scanned, err := rt.scanTree(tree, rt.Global)
	if err != nil {
		return nil, err
	}

	template := compileTemplate(tree)
	assignments := buildAssignments(scanned.choices)
	universes := make([]*universe, len(assignments))
	for i, a := range assignments {
		universes[i] = &universe{rt: rt, outer: rt.Global, template: template, assign: a}
	}

	m := &Multiverse{
		rt:           rt,
		outer:        rt.Global,
		choices:      scanned.choices,
		measurements: scanned.measurements,
		universes:    universes,
		assignments:  assignments,
		results:      make([]*Record, len(assignments)),
	}
	if err := m.checkAligned(); err != nil {
		return nil, err
	}
	return m, nil
}

// Explore is Enter followed by ExploreAll.
func (rt *Runtime) Explore(tree S) (*Multiverse, error) {
	m, err := rt.Enter(tree)
	if err != nil {
		return nil, err
	}
	if err := m.ExploreAll(); err != nil {
		return nil, err
	}
	return m, nil
}

// EnterSource parses src and calls Enter. Lex and parse errors come back
// caret-annotated.
func (rt *Runtime) EnterSource(src string) (*Multiverse, error) {
	tree, err := Parse(src)
	if err != nil {
		return nil, WrapErrorWithSource(err, src)
	}
	return rt.Enter(tree)
}

// ExploreSource parses src and calls Explore.
func (rt *Runtime) ExploreSource(src string) (*Multiverse, error) {
	tree, err := Parse(src)
	if err != nil {
		return nil, WrapErrorWithSource(err, src)
	}
	return rt.Explore(tree)
}

// checkAligned is the internal consistency check on the index-aligned
// sequences. It should never trigger given correct construction.
func (m *Multiverse) checkAligned() error {
	n := len(m.universes)
	if len(m.assignments) != n || len(m.results) != n {
		return fmt.Errorf("multiverse tables misaligned: %d universes, %d assignments, %d result slots",
			n, len(m.assignments), len(m.results))
	}
	return nil
}

// Len returns the universe count: the product of all possibility-sequence
// lengths.
func (m *Multiverse) Len() int { return len(m.universes) }

// ChoiceIDs returns the declared choice identifiers in declaration order.
func (m *Multiverse) ChoiceIDs() []string {
	out := make([]string, len(m.choices))
	for i, c := range m.choices {
		out[i] = c.Name
	}
	return out
}

// MeasurementIDs returns the declared measurement identifiers in declaration
// order.
func (m *Multiverse) MeasurementIDs() []string {
	out := make([]string, len(m.measurements))
	copy(out, m.measurements)
	return out
}

// Choices returns the declarations with their resolved possibility values.
func (m *Multiverse) Choices() []Choice {
	out := make([]Choice, len(m.choices))
	copy(out, m.choices)
	return out
}

// ChoiceTable returns the choice assignment for every universe, in index
// order.
func (m *Multiverse) ChoiceTable() []Assignment {
	out := make([]Assignment, len(m.assignments))
	copy(out, m.assignments)
	return out
}

// MeasurementTable returns one Record per universe, in index order. Unset
// slots come back as the all-Missing placeholder; use Result to distinguish
// unset from explored.
func (m *Multiverse) MeasurementTable() []Record {
	out := make([]Record, len(m.results))
	for i, r := range m.results {
		if r != nil {
			out[i] = *r
		} else {
			out[i] = m.placeholderRecord()
		}
	}
	return out
}

// Result returns the stored record for universe i and whether slot i has been
// explored.
func (m *Multiverse) Result(i int) (Record, bool) {
	k, err := m.index(i)
	if err != nil {
		return Record{}, false
	}
	if m.results[k] == nil {
		return Record{}, false
	}
	return *m.results[k], true
}

// Explore executes universe i (1 ≤ i ≤ Len) and returns its record, filling
// measurements absent from this path with Missing. The store is not mutated.
// Faults from the analysis body propagate unmodified.
func (m *Multiverse) Explore(i int) (Record, error) {
	k, err := m.index(i)
	if err != nil {
		return Record{}, err
	}
	observed, err := m.universes[k].run()
	if err != nil {
		return Record{}, err
	}
	rec := m.placeholderRecord()
	for j, name := range rec.names {
		if v, ok := observed.Get(name); ok {
			rec.values[j] = v
		}
	}
	return rec, nil
}

// ExploreInto executes universe i and writes the record into slot i,
// unconditionally overwriting any prior value. Re-exploring always re-runs
// the path from scratch; there is no memoization, so nondeterministic bodies
// may store different values on repeated calls.
func (m *Multiverse) ExploreInto(i int) error {
	k, err := m.index(i)
	if err != nil {
		return err
	}
	rec, err := m.Explore(i)
	if err != nil {
		return err
	}
	m.results[k] = &rec
	return nil
}

// ExploreAll runs ExploreInto for i = 1..Len strictly sequentially in
// increasing order. The first failure aborts immediately: lower-indexed slots
// keep their freshly written records, higher-indexed slots remain whatever
// they were before the call.
func (m *Multiverse) ExploreAll() error {
	for i := 1; i <= m.Len(); i++ {
		if err := m.ExploreInto(i); err != nil {
			return err
		}
	}
	return nil
}

func (m *Multiverse) index(i int) (int, error) {
	if i < 1 || i > m.Len() {
		return 0, fmt.Errorf("universe index %d out of range [1,%d]", i, m.Len())
	}
	return i - 1, nil
}

// placeholderRecord is the all-Missing record used both as the base of every
// exploration and as the row view of unset slots.
func (m *Multiverse) placeholderRecord() Record {
	values := make([]Value, len(m.measurements))
	for i := range values {
		values[i] = Missing
	}
	return Record{names: m.measurements, values: values}
}
