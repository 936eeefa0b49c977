package codec

import (
	"fmt"
	"strings"

	"github.com/ssargent/sagadb/pkg/uid"
)

// Kind identifies the wire type of a record field.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindUint
	KindFloat
	KindBool
	KindString
	KindEnum
	KindID
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindID:
		return "id"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the tagged union moved between records and the codec. Only
// the member matching Kind is meaningful; enum ordinals travel in
// Uint.
type Value struct {
	Kind  Kind
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
	Str   string
	ID    uid.ID
}

func IntValue(v int64) Value      { return Value{Kind: KindInt, Int: v} }
func UintValue(v uint64) Value    { return Value{Kind: KindUint, Uint: v} }
func FloatValue(v float64) Value  { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value      { return Value{Kind: KindBool, Bool: v} }
func StringValue(v string) Value  { return Value{Kind: KindString, Str: v} }
func EnumValue(ord uint64) Value  { return Value{Kind: KindEnum, Uint: ord} }
func IDValue(id uid.ID) Value     { return Value{Kind: KindID, ID: id} }

// Field describes one record field: its name, wire type and the
// accessor pair the codec uses instead of reflection. Bits narrows
// numeric fields (8/16/32/64 for integers, 32/64 for floats); zero
// means 64. Variants lists enum variant names in ordinal order.
type Field[T any] struct {
	Name     string
	Kind     Kind
	Bits     int
	Variants []string
	Get      func(*T) Value
	Set      func(*T, Value)
}

// Schema is the ordered field list for one record type. It is built
// once per type and consulted by the codec for every row.
type Schema[T any] struct {
	Name   string
	Fields []Field[T]
}

// NewSchema validates the field list and returns a schema. Field
// names must be non-empty and free of tabs and newlines; enum fields
// must declare variants; numeric bit widths must be legal.
func NewSchema[T any](name string, fields ...Field[T]) (*Schema[T], error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("schema %q has no fields", name)
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %q: field %d has no name", name, i)
		}
		if strings.ContainsAny(f.Name, "\t\n") {
			return nil, fmt.Errorf("schema %q: field %q contains tab or newline", name, f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("schema %q: duplicate field %q", name, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Get == nil || f.Set == nil {
			return nil, fmt.Errorf("schema %q: field %q is missing an accessor", name, f.Name)
		}
		switch f.Kind {
		case KindInt, KindUint:
			switch f.Bits {
			case 0, 8, 16, 32, 64:
			default:
				return nil, fmt.Errorf("schema %q: field %q has invalid bit width %d", name, f.Name, f.Bits)
			}
		case KindFloat:
			switch f.Bits {
			case 0, 32, 64:
			default:
				return nil, fmt.Errorf("schema %q: field %q has invalid bit width %d", name, f.Name, f.Bits)
			}
		case KindEnum:
			if len(f.Variants) == 0 {
				return nil, fmt.Errorf("schema %q: enum field %q declares no variants", name, f.Name)
			}
		case KindBool, KindString, KindID:
		default:
			return nil, fmt.Errorf("schema %q: field %q has unknown kind", name, f.Name)
		}
	}
	return &Schema[T]{Name: name, Fields: fields}, nil
}

// MustSchema is NewSchema for statically-known schemas; it panics on
// a validation error.
func MustSchema[T any](name string, fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Convenience constructors for the common field shapes.

func IntField[T any](name string, bits int, get func(*T) int64, set func(*T, int64)) Field[T] {
	return Field[T]{
		Name: name, Kind: KindInt, Bits: bits,
		Get: func(r *T) Value { return IntValue(get(r)) },
		Set: func(r *T, v Value) { set(r, v.Int) },
	}
}

func UintField[T any](name string, bits int, get func(*T) uint64, set func(*T, uint64)) Field[T] {
	return Field[T]{
		Name: name, Kind: KindUint, Bits: bits,
		Get: func(r *T) Value { return UintValue(get(r)) },
		Set: func(r *T, v Value) { set(r, v.Uint) },
	}
}

func FloatField[T any](name string, bits int, get func(*T) float64, set func(*T, float64)) Field[T] {
	return Field[T]{
		Name: name, Kind: KindFloat, Bits: bits,
		Get: func(r *T) Value { return FloatValue(get(r)) },
		Set: func(r *T, v Value) { set(r, v.Float) },
	}
}

func BoolField[T any](name string, get func(*T) bool, set func(*T, bool)) Field[T] {
	return Field[T]{
		Name: name, Kind: KindBool,
		Get: func(r *T) Value { return BoolValue(get(r)) },
		Set: func(r *T, v Value) { set(r, v.Bool) },
	}
}

func StringField[T any](name string, get func(*T) string, set func(*T, string)) Field[T] {
	return Field[T]{
		Name: name, Kind: KindString,
		Get: func(r *T) Value { return StringValue(get(r)) },
		Set: func(r *T, v Value) { set(r, v.Str) },
	}
}

// EnumField declares a closed enumeration. The accessors traffic in
// ordinals; variants are the names accepted on input, in ordinal
// order.
func EnumField[T any](name string, variants []string, get func(*T) uint64, set func(*T, uint64)) Field[T] {
	return Field[T]{
		Name: name, Kind: KindEnum, Variants: variants,
		Get: func(r *T) Value { return EnumValue(get(r)) },
		Set: func(r *T, v Value) { set(r, v.Uint) },
	}
}

// IDField declares a foreign-key-style reference to another record.
func IDField[T any](name string, get func(*T) uid.ID, set func(*T, uid.ID)) Field[T] {
	return Field[T]{
		Name: name, Kind: KindID,
		Get: func(r *T) Value { return IDValue(get(r)) },
		Set: func(r *T, v Value) { set(r, v.ID) },
	}
}
