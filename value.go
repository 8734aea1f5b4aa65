// value.go — runtime value model for analysis bodies.
//
// A Value is a small tagged union in the JSON-friendly style: null, bool,
// int64, float64, string, arrays, ordered maps, and native functions. Two
// extra cases matter to the multiverse engine:
//
//   - Missing: the explicit marker recorded for a declared measurement that
//     was not reached on a given execution path. Missing is a first-class
//     value, never an error.
//   - VTFun: builtin (host-native) functions installed in the core scope.
//     The analysis language has no user-defined functions.
//
// MapObject preserves insertion order; merged table rows rely on that.
package multiverses

import (
	"fmt"
	"strconv"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull    ValueTag = iota // null (no payload)
	VTBool                    // bool
	VTInt                     // int64
	VTNum                     // float64
	VTStr                     // string
	VTArray                   // []Value
	VTMap                     // *MapObject (ordered map)
	VTFun                     // *Fun (native builtin)
	VTMissing                 // measurement-not-reached marker (no payload)
)

// Value is the universal runtime carrier. Tag determines which Go type
// Data holds (see ValueTag).
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

// Missing is the explicit missing-value marker. A declared measurement that a
// universe never reaches is recorded as Missing in its Record.
var Missing = Value{Tag: VTMissing}

// Primitive constructors.
func Bool(b bool) Value    { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value    { return Value{Tag: VTInt, Data: n} }
func Num(f float64) Value  { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value   { return Value{Tag: VTStr, Data: s} }
func Arr(xs []Value) Value { return Value{Tag: VTArray, Data: xs} }

// String renders a human-friendly debug representation.
func (v Value) String() string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTArray:
		out := "["
		for i, x := range v.Data.([]Value) {
			if i > 0 {
				out += ", "
			}
			out += x.String()
		}
		return out + "]"
	case VTMap:
		mo := v.Data.(*MapObject)
		out := "{"
		for i, k := range mo.Keys {
			if i > 0 {
				out += ", "
			}
			out += k + ": " + mo.Entries[k].String()
		}
		return out + "}"
	case VTFun:
		return "<fun " + v.Data.(*Fun).Name + ">"
	case VTMissing:
		return "missing"
	default:
		return "<unknown>"
	}
}

// IsMissing reports whether v is the missing-value marker.
func (v Value) IsMissing() bool { return v.Tag == VTMissing }

// deepEqual compares two Values structurally. Int and Num compare equal when
// numerically equal. Missing equals only Missing.
func deepEqual(a, b Value) bool {
	if (a.Tag == VTInt || a.Tag == VTNum) && (b.Tag == VTInt || b.Tag == VTNum) {
		return asNum(a) == asNum(b)
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull, VTMissing:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTArray:
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		if len(ax) != len(bx) {
			return false
		}
		for i := range ax {
			if !deepEqual(ax[i], bx[i]) {
				return false
			}
		}
		return true
	case VTMap:
		am := a.Data.(*MapObject)
		bm := b.Data.(*MapObject)
		if len(am.Entries) != len(bm.Entries) {
			return false
		}
		for k, av := range am.Entries {
			bv, ok := bm.Entries[k]
			if !ok || !deepEqual(av, bv) {
				return false
			}
		}
		return true
	case VTFun:
		return a.Data == b.Data
	default:
		return false
	}
}

func asNum(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

// MapObject is an ordered map preserving insertion order. Setting a value for
// a new key appends that key to Keys; iteration order is insertion order.
type MapObject struct {
	Entries map[string]Value
	Keys    []string
}

// NewMapObject returns an empty ordered map.
func NewMapObject() *MapObject {
	return &MapObject{Entries: map[string]Value{}}
}

// Set binds key to v, appending key to the order on first insert.
func (m *MapObject) Set(key string, v Value) {
	if _, ok := m.Entries[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Entries[key] = v
}

// Get retrieves the value bound to key.
func (m *MapObject) Get(key string) (Value, bool) {
	v, ok := m.Entries[key]
	return v, ok
}

// Len returns the number of entries.
func (m *MapObject) Len() int { return len(m.Keys) }

// Map wraps a MapObject into a Value.
func Map(m *MapObject) Value { return Value{Tag: VTMap, Data: m} }

// Fun is a native builtin function. Arity < 0 means variadic.
type Fun struct {
	Name  string
	Arity int
	Impl  func(args []Value) (Value, error)
}

// FunVal wraps *Fun into a Value.
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }
