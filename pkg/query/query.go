// Package query implements single-table field filtering over a record
// schema. There are no joins and no indexes: conditions are evaluated
// with a scan, which is the intended cost model for a dense in-memory
// table.
package query

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/ssargent/sagadb/pkg/codec"
	"github.com/ssargent/sagadb/pkg/uid"
)

// Condition is a single field-based filter, e.g. {"hp", ">", 10}.
type Condition struct {
	Field string // schema field name
	Op    string // "=", "!=", ">", "<", ">=", "<="
	Value any    // value to compare against
}

// Validate checks that the condition is properly formed.
func (c *Condition) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	switch c.Op {
	case "=", "!=", ">", "<", ">=", "<=":
		return nil
	}
	return fmt.Errorf("invalid operator: %s", c.Op)
}

// Result is one matching record.
type Result[T any] struct {
	ID     uid.ID
	Record T
}

// Select scans the record sequence and returns every record matching
// all conditions. Ordering comparisons apply to numeric and string
// fields; bool, enum and identifier fields support only "=" and "!=".
// Enum conditions may name a variant or give its ordinal. String
// values are coerced per field kind, so conditions parsed from text
// work without type switches at the call site.
func Select[T any](records iter.Seq2[uid.ID, *T], s *codec.Schema[T], conds ...Condition) ([]Result[T], error) {
	type bound struct {
		field *codec.Field[T]
		cond  Condition
	}
	bounds := make([]bound, 0, len(conds))
	for i := range conds {
		if err := conds[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid condition: %w", err)
		}
		f := fieldByName(s, conds[i].Field)
		if f == nil {
			return nil, fmt.Errorf("unknown field: %s", conds[i].Field)
		}
		if err := checkOp(f, conds[i].Op); err != nil {
			return nil, err
		}
		bounds = append(bounds, bound{field: f, cond: conds[i]})
	}

	var results []Result[T]
	var walkErr error
	records(func(id uid.ID, rec *T) bool {
		for _, b := range bounds {
			ok, err := match(b.field, b.field.Get(rec), b.cond)
			if err != nil {
				walkErr = err
				return false
			}
			if !ok {
				return true
			}
		}
		results = append(results, Result[T]{ID: id, Record: *rec})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return results, nil
}

func fieldByName[T any](s *codec.Schema[T], name string) *codec.Field[T] {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

func checkOp[T any](f *codec.Field[T], op string) error {
	switch f.Kind {
	case codec.KindBool, codec.KindEnum, codec.KindID:
		if op != "=" && op != "!=" {
			return fmt.Errorf("operator %s not supported for %s field %q", op, f.Kind, f.Name)
		}
	}
	return nil
}

func match[T any](f *codec.Field[T], have codec.Value, c Condition) (bool, error) {
	switch f.Kind {
	case codec.KindInt:
		want, err := asInt(c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return cmpOrdered(have.Int, want, c.Op), nil

	case codec.KindUint:
		want, err := asUint(c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return cmpOrdered(have.Uint, want, c.Op), nil

	case codec.KindFloat:
		want, err := asFloat(c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return cmpOrdered(have.Float, want, c.Op), nil

	case codec.KindBool:
		want, err := asBool(c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return cmpEq(have.Bool == want, c.Op), nil

	case codec.KindString:
		want, ok := c.Value.(string)
		if !ok {
			return false, fmt.Errorf("field %q: want a string, got %T", f.Name, c.Value)
		}
		return cmpOrdered(have.Str, want, c.Op), nil

	case codec.KindEnum:
		want, err := asOrdinal(f.Variants, c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return cmpEq(have.Uint == want, c.Op), nil

	case codec.KindID:
		want, err := asID(c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return cmpEq(have.ID == want, c.Op), nil
	}
	return false, fmt.Errorf("field %q: unsupported kind %s", f.Name, f.Kind)
}

func cmpOrdered[V int64 | uint64 | float64 | string](have, want V, op string) bool {
	switch op {
	case "=":
		return have == want
	case "!=":
		return have != want
	case ">":
		return have > want
	case "<":
		return have < want
	case ">=":
		return have >= want
	case "<=":
		return have <= want
	}
	return false
}

func cmpEq(equal bool, op string) bool {
	if op == "!=" {
		return !equal
	}
	return equal
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("want an integer, got %q", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("want an integer, got %T", v)
}

func asUint(v any) (uint64, error) {
	switch n := v.(type) {
	case uint:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("want an unsigned integer, got %d", n)
		}
		return uint64(n), nil
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("want an unsigned integer, got %q", n)
		}
		return u, nil
	}
	return 0, fmt.Errorf("want an unsigned integer, got %T", v)
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("want a float, got %q", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("want a float, got %T", v)
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		if b == "true" {
			return true, nil
		}
		if b == "false" {
			return false, nil
		}
		return false, fmt.Errorf("want a bool, got %q", b)
	}
	return false, fmt.Errorf("want a bool, got %T", v)
}

func asOrdinal(variants []string, v any) (uint64, error) {
	switch w := v.(type) {
	case string:
		for ord, name := range variants {
			if name == w {
				return uint64(ord), nil
			}
		}
		return 0, fmt.Errorf("unknown variant %q", w)
	default:
		return asUint(v)
	}
}

func asID(v any) (uid.ID, error) {
	switch w := v.(type) {
	case uid.ID:
		return w, nil
	case string:
		id, err := uid.Parse(w)
		if err != nil {
			return uid.ID{}, fmt.Errorf("want an identifier: %w", err)
		}
		return id, nil
	}
	return uid.ID{}, fmt.Errorf("want an identifier, got %T", v)
}
