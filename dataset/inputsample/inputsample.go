/*
Package inputsample provides an implementation of feature.Sample whose field
values are read from an io.Reader as they are needed.
*/
package inputsample

import (
	"bufio"
	"io"

	"github.com/pbanos/thicket/feature"
)

/*
ValueRequester represents a way to ask for field values and reject the
given values.
*/
type ValueRequester interface {
	RequestValueFor(field int, kind feature.Kind) error
	RejectValueFor(field int, kind feature.Kind, value string) error
}

/*
Reader reads samples from an io.Reader, one field value per line.
*/
type Reader struct {
	scanner   *bufio.Scanner
	kinds     []feature.Kind
	requester ValueRequester
}

/*
NewReader takes an io.Reader, the kinds of the fields of the samples to
read and a ValueRequester and returns a Reader.
*/
func NewReader(r io.Reader, kinds []feature.Kind, vr ValueRequester) *Reader {
	return &Reader{bufio.NewScanner(r), kinds, vr}
}

/*
Next returns a new sample whose values will be read from the reader.
*/
func (r *Reader) Next() *Sample {
	return &Sample{reader: r, values: make(map[int]feature.Value)}
}

/*
Sample is a feature.Sample whose ValueAt method reads field values the
first time they are requested: it asks for the value with the
ValueRequester and then reads lines until one holds a number of the field's
kind, rejecting the rest with the ValueRequester.

If reading a value fails, ValueAt returns the zero Value of the field's
kind and Err returns the error. No more values are read afterwards.
*/
type Sample struct {
	reader *Reader
	values map[int]feature.Value
	err    error
}

func (s *Sample) ValueAt(field int) feature.Value {
	if v, ok := s.values[field]; ok {
		return v
	}
	var kind feature.Kind
	if field >= 0 && field < len(s.reader.kinds) {
		kind = s.reader.kinds[field]
	}
	zero := feature.IntValue(0)
	if kind == feature.Float {
		zero = feature.FloatValue(0)
	}
	if s.err != nil {
		return zero
	}
	v, err := s.read(field, kind)
	if err != nil {
		s.err = err
		return zero
	}
	s.values[field] = v
	return v
}

/*
Err returns the error that stopped the reading of values, io.EOF if the
reader ran out of lines, or nil.
*/
func (s *Sample) Err() error {
	return s.err
}

func (s *Sample) read(field int, kind feature.Kind) (feature.Value, error) {
	r := s.reader
	err := r.requester.RequestValueFor(field, kind)
	if err != nil {
		return feature.Value{}, err
	}
	for r.scanner.Scan() {
		line := r.scanner.Text()
		v, err := feature.ParseValue(line)
		if err == nil && kind == feature.Float && v.Kind() == feature.Int {
			v = feature.FloatValue(v.Float())
		}
		if err == nil && v.Kind() == kind {
			return v, nil
		}
		err = r.requester.RejectValueFor(field, kind, line)
		if err != nil {
			return feature.Value{}, err
		}
	}
	err = r.scanner.Err()
	if err != nil {
		return feature.Value{}, err
	}
	return feature.Value{}, io.EOF
}
