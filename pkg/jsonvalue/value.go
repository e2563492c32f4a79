// Package jsonvalue provides an explicit tagged union for JSON documents.
//
// Objects keep their members in insertion order, which the table engine relies
// on for column discovery and property/value row ordering.
package jsonvalue

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	num    json.Number
	str    string
	items  []Value
	object *Object
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Object is an insertion-ordered JSON object.
type Object struct {
	keys   []string
	fields map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a number value from its JSON text.
func Number(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// Int returns a number value for an integer.
func Int(i int64) Value { return Number(json.Number(strconv.FormatInt(i, 10))) }

// Float returns a number value for a float. NaN and infinities become null
// because JSON cannot carry them.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Number(json.Number(strconv.FormatFloat(f, 'g', -1, 64)))
}

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array returns an array value holding items.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

// ObjectOf returns an object value holding members in the given order.
// A repeated key keeps its first position and its last value.
func ObjectOf(members ...Member) Value {
	return FromObject(NewObject(members...))
}

// FromObject wraps an Object as a Value.
func FromObject(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, object: o}
}

// NewObject builds an ordered object.
func NewObject(members ...Member) *Object {
	o := &Object{
		keys:   make([]string, 0, len(members)),
		fields: make(map[string]Value, len(members)),
	}
	for _, m := range members {
		o.Set(m.Key, m.Value)
	}
	return o
}

// Set adds or replaces a member. New keys are appended.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Get returns the member value for key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Keys returns the member keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Members returns the members in insertion order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	out := make([]Member, len(o.keys))
	for i, k := range o.keys {
		out[i] = Member{Key: k, Value: o.fields[k]}
	}
	return out
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsContainer reports whether v is an array or an object.
func (v Value) IsContainer() bool { return v.kind == KindArray || v.kind == KindObject }

// IsEmpty reports whether v counts as "no data": null or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// NumberText returns the JSON text of a number.
func (v Value) NumberText() json.Number { return v.num }

// Float64 returns the number as a float64.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsInteger reports whether the number has no fractional part.
func (v Value) IsInteger() bool {
	if v.kind != KindNumber {
		return false
	}
	text := v.num.String()
	if !strings.ContainsAny(text, ".eE") {
		return true
	}
	f, ok := v.Float64()
	return ok && f == math.Trunc(f)
}

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Items returns the array items. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Len returns the item count of an array or the member count of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return v.object.Len()
	default:
		return 0
	}
}

// Object returns the object payload, or nil when v is not an object.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.object
}

// Index returns the array item at i.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Field returns the object member named key.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	return v.object.Get(key)
}

// Same reports whether a and b are the same value instance: identical scalars,
// or containers sharing the same backing storage.
func Same(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		return len(a.items) == 0 || &a.items[0] == &b.items[0]
	case KindObject:
		return a.object == b.object
	default:
		return Equal(a, b)
	}
}

// Equal reports deep structural equality. Object member order is ignored.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		if a.num == b.num {
			return true
		}
		fa, okA := a.Float64()
		fb, okB := b.Float64()
		return okA && okB && fa == fb
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.object.Len() != b.object.Len() {
			return false
		}
		for _, k := range a.object.keys {
			bv, ok := b.object.Get(k)
			if !ok || !Equal(a.object.fields[k], bv) {
				return false
			}
		}
		return true
	}
	return false
}
