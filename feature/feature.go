/*
Package feature defines the numeric values observed on the fields of a
record and the criteria that decision nodes impose on them.
*/
package feature

import (
	"fmt"
	"strconv"
	"strings"
)

/*
Kind represents the numeric kind of a field: integer or floating-point.
All the values of a field in a dataset share the same kind.
*/
type Kind uint8

const (
	// Int is the kind of integer values
	Int Kind = iota
	// Float is the kind of floating-point values
	Float
)

/*
Value is a numeric field value tagged with its kind. The zero Value is the
integer 0.
*/
type Value struct {
	kind Kind
	i    int64
	f    float64
}

/*
IntValue takes an int64 and returns an integer Value holding it.
*/
func IntValue(i int64) Value {
	return Value{kind: Int, i: i}
}

/*
FloatValue takes a float64 and returns a floating-point Value holding it.
*/
func FloatValue(f float64) Value {
	return Value{kind: Float, f: f}
}

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

/*
Kind returns the kind of the value
*/
func (v Value) Kind() Kind {
	return v.kind
}

/*
Int returns the value as an int64. Floating-point values are truncated.
*/
func (v Value) Int() int64 {
	if v.kind == Float {
		return int64(v.f)
	}
	return v.i
}

/*
Float returns the value as a float64.
*/
func (v Value) Float() float64 {
	if v.kind == Int {
		return float64(v.i)
	}
	return v.f
}

/*
Equal returns whether v and o hold the same number. Values of the same kind
are compared exactly; values of different kinds are compared as float64,
although comparing across kinds is a caller error.
*/
func (v Value) Equal(o Value) bool {
	if v.kind == Int && o.kind == Int {
		return v.i == o.i
	}
	return v.Float() == o.Float()
}

/*
Less returns whether v is strictly lower than o, with the same kind
considerations as Equal.
*/
func (v Value) Less(o Value) bool {
	if v.kind == Int && o.kind == Int {
		return v.i < o.i
	}
	return v.Float() < o.Float()
}

func (v Value) String() string {
	if v.kind == Float {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return strconv.FormatInt(v.i, 10)
}

/*
ParseValue takes a token and returns the value it represents: a float if it
contains a '.' or an exponent, an int otherwise. An error is returned if
the token is not a number.
*/
func ParseValue(token string) (Value, error) {
	if strings.ContainsAny(token, ".eE") {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parsing float %q: %w", token, err)
		}
		return FloatValue(f), nil
	}
	i, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("parsing int %q: %w", token, err)
	}
	return IntValue(i), nil
}
