/*
Package dataset provides the records trees learn from, the datasets owning
them and the label distributions computed over subsets of references to
them.
*/
package dataset

import (
	"fmt"

	"github.com/pbanos/thicket/feature"
)

// Error represents an error building or querying a dataset
type Error string

const (
	// ErrEmptyDataset is returned when a dataset without records is
	// given where at least one record is required.
	ErrEmptyDataset = Error("dataset has no records")
	// ErrInconsistentFields is returned when the records of a dataset do
	// not all have the same number of fields, or a field does not have
	// the same kind on all records.
	ErrInconsistentFields = Error("records have inconsistent fields")
)

func (e Error) Error() string {
	return string(e)
}

/*
Dataset represents an owned, fixed collection of records. Trees and forests
never copy its records: they work on the references returned by Refs, so a
Dataset must not be modified once handed to them.
*/
type Dataset struct {
	records []Record
	kinds   []feature.Kind
}

/*
New takes a slice of records and returns a dataset owning them, or an
error if there are no records (ErrEmptyDataset) or their fields are
inconsistent (ErrInconsistentFields).
The slice is owned by the dataset afterwards and must not be modified.
*/
func New(records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	kinds := make([]feature.Kind, records[0].FieldCount())
	for i := range kinds {
		kinds[i] = records[0].ValueAt(i).Kind()
	}
	for n := range records {
		r := &records[n]
		if r.FieldCount() != len(kinds) {
			return nil, fmt.Errorf("record %d has %d fields, expected %d: %w", n, r.FieldCount(), len(kinds), ErrInconsistentFields)
		}
		for i, k := range kinds {
			if vk := r.ValueAt(i).Kind(); vk != k {
				return nil, fmt.Errorf("record %d has %v value on field %d, expected %v: %w", n, vk, i, k, ErrInconsistentFields)
			}
		}
	}
	return &Dataset{records, kinds}, nil
}

/*
Count returns the number of records in the dataset
*/
func (d *Dataset) Count() int {
	return len(d.records)
}

/*
FieldCount returns the number of fields every record in the dataset has
*/
func (d *Dataset) FieldCount() int {
	return len(d.kinds)
}

/*
FieldKind returns the kind of the values of the field with the given index
*/
func (d *Dataset) FieldKind(i int) feature.Kind {
	return d.kinds[i]
}

/*
Record returns a reference to the i-th record of the dataset
*/
func (d *Dataset) Record(i int) *Record {
	return &d.records[i]
}

/*
Refs returns a new slice with references to all the records of the dataset,
in order. The slice can be reordered or subset freely; the records it points
to cannot be modified.
*/
func (d *Dataset) Refs() []*Record {
	refs := make([]*Record, len(d.records))
	for i := range d.records {
		refs[i] = &d.records[i]
	}
	return refs
}

func (d *Dataset) String() string {
	return fmt.Sprintf("[ %v ]", len(d.records))
}
