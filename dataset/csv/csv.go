/*
Package csv provides functions to read datasets from delimited text, one
record per line, with a label column and numeric fields.
*/
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/feature"
)

/*
Options holds the configuration to read records from delimited text
*/
type Options struct {
	// LabelColumn is the index of the column with the label of each
	// record. Negative indexes count from the end: -1 is the last column.
	LabelColumn int
	// Delimiter separates the columns of a line. It defaults to a space;
	// when it is a space, consecutive spaces count as one.
	Delimiter rune
	// Header makes the first line be skipped
	Header bool
	// LabelBins makes the label column be read as a number and
	// discretized into that many equal-width bins, labeled "[lo, hi)"
	// (the last one "[lo, hi]"). Zero reads the label as a string.
	LabelBins int
}

/*
Read takes an io.Reader and options and returns the dataset with the records
read from it, or an error. A column holding a token with a '.' or an
exponent is a float column, an int column otherwise.
*/
func Read(reader io.Reader, opts Options) (*dataset.Dataset, error) {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ' '
	}
	r := csv.NewReader(reader)
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	var labels []string
	var rows [][]feature.Value
	for l := 1; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", l, err)
		}
		if l == 1 && opts.Header {
			continue
		}
		if delimiter == ' ' {
			row = dropEmpty(row)
		}
		if len(row) == 0 {
			continue
		}
		lc := opts.LabelColumn
		if lc < 0 {
			lc += len(row)
		}
		if lc < 0 || lc >= len(row) {
			return nil, fmt.Errorf("line %d has no column %d", l, opts.LabelColumn)
		}
		values := make([]feature.Value, 0, len(row)-1)
		for i, token := range row {
			if i == lc {
				continue
			}
			v, err := feature.ParseValue(token)
			if err != nil {
				return nil, fmt.Errorf("parsing line %d column %d: %w", l, i, err)
			}
			values = append(values, v)
		}
		labels = append(labels, row[lc])
		rows = append(rows, values)
	}
	promoteFloatColumns(rows)
	if opts.LabelBins > 0 {
		var err error
		labels, err = binLabels(labels, opts.LabelBins)
		if err != nil {
			return nil, err
		}
	}
	records := make([]dataset.Record, len(rows))
	for i, values := range rows {
		records[i] = dataset.NewRecord(labels[i], values...)
	}
	return dataset.New(records)
}

// promoteFloatColumns turns the int values of every column holding a float
// into floats.
func promoteFloatColumns(rows [][]feature.Value) {
	var floatColumns []bool
	for _, row := range rows {
		for j, v := range row {
			if j >= len(floatColumns) {
				floatColumns = append(floatColumns, false)
			}
			if v.Kind() == feature.Float {
				floatColumns[j] = true
			}
		}
	}
	for _, row := range rows {
		for j, v := range row {
			if floatColumns[j] && v.Kind() == feature.Int {
				row[j] = feature.FloatValue(float64(v.Int()))
			}
		}
	}
}

/*
ReadFile takes a filepath string and options, opens the file and uses Read
to return the dataset read from it or an error.
*/
func ReadFile(filepath string, opts Options) (*dataset.Dataset, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath, err)
	}
	defer f.Close()
	ds, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath, err)
	}
	return ds, nil
}

func dropEmpty(row []string) []string {
	result := row[:0]
	for _, token := range row {
		if token != "" {
			result = append(result, token)
		}
	}
	return result
}

// binLabels replaces numeric labels with the bin of bins equal-width bins
// across their range they fall in
func binLabels(labels []string, bins int) ([]string, error) {
	values := make([]float64, len(labels))
	low, high := math.Inf(1), math.Inf(-1)
	for i, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing numeric label %q of record %d: %w", l, i, err)
		}
		values[i] = v
		low = math.Min(low, v)
		high = math.Max(high, v)
	}
	width := (high - low) / float64(bins)
	names := make([]string, bins)
	for b := range names {
		lo, hi := low+float64(b)*width, low+float64(b+1)*width
		closing := ")"
		if b == bins-1 {
			hi, closing = high, "]"
		}
		names[b] = fmt.Sprintf("[%s, %s%s", formatFloat(lo), formatFloat(hi), closing)
	}
	binned := make([]string, len(labels))
	for i, v := range values {
		b := bins - 1
		if width > 0 {
			b = min(int((v-low)/width), bins-1)
		}
		binned[i] = names[b]
	}
	return binned, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 4, 64)
}
