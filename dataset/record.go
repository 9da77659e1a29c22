package dataset

import (
	"fmt"
	"strings"

	"github.com/pbanos/thicket/feature"
)

/*
Record represents a labeled observation from which to learn how to
classify others: a label and an ordered slice of numeric field values.

A Record is not meant to be modified once built.
*/
type Record struct {
	label  string
	fields []feature.Value
}

/*
NewRecord takes a label and a slice of field values and returns a record
with them. The record keeps its own copy of the values.
*/
func NewRecord(label string, fields ...feature.Value) Record {
	return Record{label, append([]feature.Value(nil), fields...)}
}

/*
Label returns the label of the record
*/
func (r *Record) Label() string {
	return r.label
}

/*
ValueAt returns the value of the field with the given index. It panics if
the index is out of range, like indexing a slice would.
*/
func (r *Record) ValueAt(i int) feature.Value {
	return r.fields[i]
}

/*
FieldCount returns the number of fields of the record
*/
func (r *Record) FieldCount() int {
	return len(r.fields)
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.label)
	b.WriteString(":")
	for _, v := range r.fields {
		fmt.Fprintf(&b, " %v", v)
	}
	return b.String()
}
