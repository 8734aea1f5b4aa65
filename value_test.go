package multiverses

import "testing"

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, "null"},
		{Missing, "missing"},
		{Bool(true), "true"},
		{Int(-7), "-7"},
		{Num(2.5), "2.5"},
		{Str("hi"), `"hi"`},
		{Arr([]Value{Int(1), Str("x")}), `[1, "x"]`},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String(%v) = %q, want %q", c.v.Tag, got, c.want)
		}
	}
}

func TestDeepEqualNumeric(t *testing.T) {
	if !deepEqual(Int(2), Num(2.0)) {
		t.Error("2 should equal 2.0")
	}
	if deepEqual(Int(2), Num(2.5)) {
		t.Error("2 should not equal 2.5")
	}
	if deepEqual(Int(0), Str("0")) {
		t.Error("0 should not equal \"0\"")
	}
}

func TestDeepEqualMissing(t *testing.T) {
	if !deepEqual(Missing, Missing) {
		t.Error("missing should equal missing")
	}
	if deepEqual(Missing, Null) {
		t.Error("missing should not equal null")
	}
	if !Missing.IsMissing() || Null.IsMissing() {
		t.Error("IsMissing misreports")
	}
}

func TestDeepEqualArrays(t *testing.T) {
	a := Arr([]Value{Int(1), Arr([]Value{Str("x")})})
	b := Arr([]Value{Num(1), Arr([]Value{Str("x")})})
	if !deepEqual(a, b) {
		t.Error("structurally equal arrays differ")
	}
	if deepEqual(a, Arr([]Value{Int(1)})) {
		t.Error("arrays of different length compare equal")
	}
}

func TestMapObjectOrder(t *testing.T) {
	m := NewMapObject()
	m.Set("b", Int(1))
	m.Set("a", Int(2))
	m.Set("b", Int(3)) // overwrite keeps position

	if len(m.Keys) != 2 || m.Keys[0] != "b" || m.Keys[1] != "a" {
		t.Fatalf("keys: %v", m.Keys)
	}
	if v, ok := m.Get("b"); !ok || v.Data.(int64) != 3 {
		t.Fatalf("b = %s, %v", v, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("len: %d", m.Len())
	}
}
