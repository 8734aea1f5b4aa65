// scan.go — annotation scanner and validator (Phase 1).
//
// One depth-first syntactic walk over every statement at every nesting depth,
// independent of reachability: a choice or measurement nested inside a
// conditional branch is registered exactly as if it were top-level. That is
// deliberate — the Cartesian product is taken over every declared choice even
// when some assignments make a branch (and its choice) irrelevant.
//
// Possibility expressions are resolved here, once, against the outer scope —
// never against block-local state, since no universe has run yet. Measurement
// value expressions are left untouched for Phase 2.
package multiverses

import "fmt"

// Choice is a declared analytic decision point: an identifier plus its
// resolved candidate values (always ≥ 2).
type Choice struct {
	Name          string
	Possibilities []Value
}

// scanResult carries the ordered declarations found by one walk.
type scanResult struct {
	choices      []Choice
	measurements []string
}

// scanTree walks tree, extracting and validating choice and measurement
// declarations. Possibility expressions evaluate in outer. Every failure is a
// ConstructionError; evaluation faults inside a possibility expression
// surface as *RuntimeError.
func (rt *Runtime) scanTree(tree S, outer *Env) (*scanResult, error) {
	res := &scanResult{}
	seenChoice := map[string]bool{}
	seenMeasure := map[string]bool{}

	var walk func(n S) error
	walk = func(n S) error {
		if len(n) == 0 {
			return nil
		}
		tag, ok := n[0].(string)
		if !ok {
			return nil
		}

		switch tag {
		case "choose":
			name, poss, err := rt.resolveChoice(n, outer)
			if err != nil {
				return err
			}
			if seenChoice[name] {
				return &DuplicateChoiceError{Name: name}
			}
			seenChoice[name] = true
			res.choices = append(res.choices, Choice{Name: name, Possibilities: poss})
			return nil

		case "measure":
			name, err := measurementName(n)
			if err != nil {
				return err
			}
			if seenMeasure[name] {
				return &DuplicateMeasurementError{Name: name}
			}
			seenMeasure[name] = true
			res.measurements = append(res.measurements, name)
			return nil
		}

		for _, child := range n[1:] {
			if cs, ok := child.(S); ok {
				if err := walk(cs); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(tree); err != nil {
		return nil, err
	}

	if len(res.choices) == 0 {
		return nil, &NoChoicesError{}
	}
	if len(res.measurements) == 0 {
		return nil, &NoMeasurementsError{}
	}
	for _, m := range res.measurements {
		if seenChoice[m] {
			return nil, &IdentifierCollisionError{Name: m}
		}
	}
	return res, nil
}

// resolveChoice validates the ("choose", ("assign", ("id", name), expr))
// shape and evaluates the possibility expression in the outer scope.
func (rt *Runtime) resolveChoice(n S, outer *Env) (string, []Value, error) {
	if len(n) != 2 {
		return "", nil, &MalformedChoiceError{Detail: "marker must wrap a single assignment"}
	}
	inner, ok := n[1].(S)
	if !ok {
		return "", nil, &MalformedChoiceError{Detail: fmt.Sprintf("expected assignment node, got %T", n[1])}
	}
	if len(inner) == 0 {
		return "", nil, &MalformedChoiceError{Detail: "empty inner node"}
	}
	if tag, _ := inner[0].(string); tag != "assign" {
		return "", nil, &MalformedChoiceError{Detail: "expected 'identifier = collection-expression'"}
	}
	name, ok := assignTarget(inner)
	if !ok {
		return "", nil, &MalformedChoiceError{Detail: "target must be a plain identifier"}
	}
	expr, ok := inner[2].(S)
	if !ok {
		return "", nil, &MalformedChoiceError{Detail: fmt.Sprintf("possibility expression is %T, not a node", inner[2])}
	}

	v, err := rt.eval(expr, outer, nil)
	if err != nil {
		return "", nil, err
	}
	if v.Tag != VTArray {
		return "", nil, &InsufficientPossibilitiesError{Name: name, Got: 0}
	}
	poss := v.Data.([]Value)
	if len(poss) < 2 {
		return "", nil, &InsufficientPossibilitiesError{Name: name, Got: len(poss)}
	}
	return name, poss, nil
}

// measurementName validates the ("measure", ("assign", ("id", name), expr))
// shape. The value expression is not evaluated here.
func measurementName(n S) (string, error) {
	if len(n) != 2 {
		return "", &MalformedMeasurementError{Detail: "marker must wrap a single assignment"}
	}
	inner, ok := n[1].(S)
	if !ok {
		return "", &MalformedMeasurementError{Detail: fmt.Sprintf("expected assignment node, got %T", n[1])}
	}
	if len(inner) == 0 {
		return "", &MalformedMeasurementError{Detail: "empty inner node"}
	}
	if tag, _ := inner[0].(string); tag != "assign" {
		return "", &MalformedMeasurementError{Detail: "expected 'identifier = expression'"}
	}
	name, ok := assignTarget(inner)
	if !ok {
		return "", &MalformedMeasurementError{Detail: "target must be a plain identifier"}
	}
	if _, ok := inner[2].(S); !ok {
		return "", &MalformedMeasurementError{Detail: fmt.Sprintf("value expression is %T, not a node", inner[2])}
	}
	return name, nil
}
