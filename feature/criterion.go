package feature

import (
	"fmt"
)

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueAt method returns the value of the field with the given index.
*/
type Sample interface {
	ValueAt(field int) Value
}

/*
Comparator is the comparison a Criterion applies between its threshold and
the value of a sample's field.
*/
type Comparator uint8

const (
	// Equal is satisfied when the threshold equals the field value
	Equal Comparator = iota
	// LessThan is satisfied when the threshold is lower than the field value
	LessThan
	// GreaterThan is satisfied when the threshold is greater than the field value
	GreaterThan
)

func (c Comparator) String() string {
	switch c {
	case Equal:
		return "="
	case LessThan:
		return "<"
	case GreaterThan:
		return ">"
	}
	return "?"
}

/*
Criterion represents a constraint on a field of a sample: a comparator and a
threshold to compare against the field with the Field index.

Note the threshold is the left operand: a LessThan criterion with threshold 5
is satisfied by samples whose field is greater than 5.
*/
type Criterion struct {
	Field      int
	Comparator Comparator
	Threshold  Value
}

/*
NewCriterion takes a field index, a comparator and a threshold value and
returns a Criterion with them.
*/
func NewCriterion(field int, c Comparator, threshold Value) Criterion {
	return Criterion{Field: field, Comparator: c, Threshold: threshold}
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean indicating
if the sample satisfies the criterion. Samples satisfying a decision node's
criterion are routed to its left child, the rest to its right child.
*/
func (c Criterion) SatisfiedBy(s Sample) bool {
	return Decide(c.Comparator, c.Threshold, s.ValueAt(c.Field))
}

/*
Decide applies the comparator to the threshold and the value, in that order.
Unknown comparators are never satisfied.
*/
func Decide(c Comparator, threshold, value Value) bool {
	switch c {
	case Equal:
		return threshold.Equal(value)
	case LessThan:
		return threshold.Less(value)
	case GreaterThan:
		return value.Less(threshold)
	}
	return false
}

func (c Criterion) String() string {
	return fmt.Sprintf("[%d] %v %v", c.Field, c.Comparator, c.Threshold)
}
