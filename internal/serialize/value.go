package serialize

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed JSON value without null or floats.
type Value interface {
	value()
}

// String is a JSON string.
type String string

// Int is a JSON integer.
type Int int64

// Bool is a JSON boolean.
type Bool bool

// Array is a JSON array.
type Array []Value

// Object is a JSON object. Keys are emitted in RFC 8785 order.
type Object map[string]Value

func (String) value() {}
func (Int) value() {}
func (Bool) value() {}
func (Array) value() {}
func (Object) value() {}

// SortedKeys returns the keys of o ordered by UTF-16 code units.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
