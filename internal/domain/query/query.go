package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is a logical device attribute that can be filtered on.
type Field string

const (
	// FieldStatus filters on the operational status.
	FieldStatus Field = "status"
	// FieldPostalCode filters on the integer postal code.
	FieldPostalCode Field = "postal_code"
	// FieldCity filters on the exact city name.
	FieldCity Field = "city"
)

// Operator is a predicate comparison. Only equality is supported by the store.
type Operator string

// OpEq is the equality operator.
const OpEq Operator = "=="

// Kind is the type of a predicate value.
type Kind int

const (
	// KindString is a string value.
	KindString Kind = iota
	// KindInt is an integer value.
	KindInt
)

// Value is a typed predicate operand.
type Value struct {
	kind Kind
	str  string
	num  int
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int creates an integer value.
func Int(n int) Value { return Value{kind: KindInt, num: n} }

// Kind returns the value type.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string operand (empty for integers).
func (v Value) Str() string { return v.str }

// Int returns the integer operand (zero for strings).
func (v Value) Int() int { return v.num }

func (v Value) String() string {
	if v.kind == KindInt {
		return strconv.Itoa(v.num)
	}
	return strconv.Quote(v.str)
}

// Predicate is a single equality clause.
type Predicate struct {
	field Field
	op    Operator
	value Value
}

// Eq creates an equality predicate.
func Eq(field Field, value Value) Predicate {
	return Predicate{field: field, op: OpEq, value: value}
}

// Field returns the filtered attribute.
func (p Predicate) Field() Field { return p.field }

// Op returns the comparison operator.
func (p Predicate) Op() Operator { return p.op }

// Value returns the operand.
func (p Predicate) Value() Value { return p.value }

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.field, p.op, p.value)
}

// Descriptor is an ordered, implicitly ANDed set of predicates.
type Descriptor struct {
	predicates []Predicate
}

// NewDescriptor creates a descriptor from predicates in the given order.
func NewDescriptor(predicates ...Predicate) Descriptor {
	c := make([]Predicate, len(predicates))
	copy(c, predicates)
	return Descriptor{predicates: c}
}

// Predicates returns a copy of the predicates in order.
func (d Descriptor) Predicates() []Predicate {
	c := make([]Predicate, len(d.predicates))
	copy(c, d.predicates)
	return c
}

// Len returns the number of predicates.
func (d Descriptor) Len() int { return len(d.predicates) }

// IsEmpty reports whether the descriptor matches every document.
func (d Descriptor) IsEmpty() bool { return len(d.predicates) == 0 }

// Lookup returns the first predicate on field.
func (d Descriptor) Lookup(field Field) (Predicate, bool) {
	for _, p := range d.predicates {
		if p.field == field {
			return p, true
		}
	}
	return Predicate{}, false
}

func (d Descriptor) String() string {
	if d.IsEmpty() {
		return "*"
	}
	parts := make([]string, len(d.predicates))
	for i, p := range d.predicates {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}
