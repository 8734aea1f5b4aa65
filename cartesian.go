// cartesian.go — choice-set builder.
package multiverses

// Assignment maps every declared choice identifier to one concrete value
// drawn from its possibility sequence. Iteration order is declaration order.
type Assignment struct {
	names  []string
	values []Value
}

// Names returns a copy of the choice identifiers in declaration order.
func (a Assignment) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Value returns the concrete value assigned to name.
func (a Assignment) Value(name string) (Value, bool) {
	for i, n := range a.names {
		if n == name {
			return a.values[i], true
		}
	}
	return Value{}, false
}

// At returns the value at declaration position i.
func (a Assignment) At(i int) Value { return a.values[i] }

// buildAssignments produces the full Cartesian product of the choices'
// possibility sequences in nested-loop order: the last-declared choice varies
// fastest, the first-declared slowest. Deterministic for a fixed declaration
// order, but not otherwise a contract.
func buildAssignments(choices []Choice) []Assignment {
	total := 1
	for _, c := range choices {
		total *= len(c.Possibilities)
	}
	names := make([]string, len(choices))
	for i, c := range choices {
		names[i] = c.Name
	}

	out := make([]Assignment, 0, total)
	odometer := make([]int, len(choices))
	for k := 0; k < total; k++ {
		values := make([]Value, len(choices))
		for i, c := range choices {
			values[i] = c.Possibilities[odometer[i]]
		}
		out = append(out, Assignment{names: names, values: values})

		for i := len(odometer) - 1; i >= 0; i-- {
			odometer[i]++
			if odometer[i] < len(choices[i].Possibilities) {
				break
			}
			odometer[i] = 0
		}
	}
	return out
}
