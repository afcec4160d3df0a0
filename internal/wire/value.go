// Package wire implements the bridge's restricted response serializer.
//
// Handlers build an in-memory value tree which Encode renders as a minimal
// JSON subset: null, bool, number, string (restricted escaping), array, and
// object with insertion-ordered keys. There is no decoding path; requests
// carry all parameters in the URL.
package wire

// Kind discriminates the value union.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Value is one node of the response tree.
type Value struct {
	kind Kind

	boolVal   bool
	intVal    int64
	floatVal  float64
	stringVal string
	arrayVal  []Value

	objKeys []string
	objVals map[string]Value
}

// Kind reports the node's discriminator.
func (v Value) Kind() Kind { return v.kind }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, intVal: i} }

// Float wraps a floating-point number.
func Float(f float64) Value { return Value{kind: KindFloat, floatVal: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, stringVal: s} }

// Array wraps a sequence of values.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arrayVal: elems}
}

// Object is an insertion-ordered string-keyed map under construction.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Set adds or replaces a key. First insertion fixes the key's position.
func (o *Object) Set(key string, v Value) *Object {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
	return o
}

// Value seals the object into a tree node.
func (o *Object) Value() Value {
	return Value{kind: KindObject, objKeys: o.keys, objVals: o.vals}
}
