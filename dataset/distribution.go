package dataset

import (
	"github.com/pbanos/thicket/feature"
)

/*
Distribution counts occurrences of labels, remembering the order in which
each label was first encountered. That order is used to break ties in Mode,
so results are deterministic for a given sequence of labels.
*/
type Distribution struct {
	labels []string
	counts []int
	index  map[string]int
	total  int
}

/*
NewDistribution returns an empty distribution
*/
func NewDistribution() *Distribution {
	return &Distribution{index: make(map[string]int)}
}

/*
CountLabels takes a slice of record references and returns the
distribution of their labels.
*/
func CountLabels(records []*Record) *Distribution {
	d := NewDistribution()
	for _, r := range records {
		d.Add(r.label)
	}
	return d
}

/*
Add counts one more occurrence of the given label
*/
func (d *Distribution) Add(label string) {
	i, ok := d.index[label]
	if !ok {
		i = len(d.labels)
		d.index[label] = i
		d.labels = append(d.labels, label)
		d.counts = append(d.counts, 0)
	}
	d.counts[i]++
	d.total++
}

/*
Len returns the number of distinct labels counted
*/
func (d *Distribution) Len() int {
	return len(d.labels)
}

/*
Total returns the number of labels counted, repetitions included
*/
func (d *Distribution) Total() int {
	return d.total
}

/*
Labels returns the distinct labels in the order they were first counted.
The returned slice must not be modified.
*/
func (d *Distribution) Labels() []string {
	return d.labels
}

/*
Count returns the number of occurrences of the given label
*/
func (d *Distribution) Count(label string) int {
	i, ok := d.index[label]
	if !ok {
		return 0
	}
	return d.counts[i]
}

/*
Proportions returns the proportion of each label over the total, in the
same order as Labels. It returns nil for an empty distribution.
*/
func (d *Distribution) Proportions() []float64 {
	if d.total == 0 {
		return nil
	}
	p := make([]float64, len(d.counts))
	for i, c := range d.counts {
		p[i] = float64(c) / float64(d.total)
	}
	return p
}

/*
Mode returns the most frequent label and its count. Ties are broken in
favour of the label counted first. An empty distribution returns "" and 0.
*/
func (d *Distribution) Mode() (string, int) {
	var label string
	var count int
	for i, c := range d.counts {
		if c > count {
			label = d.labels[i]
			count = c
		}
	}
	return label, count
}

/*
Partition takes a slice of record references, a criterion and two slices
and appends the records satisfying the criterion to the first and the rest
to the second, returning both. Passing slices with spare capacity avoids
allocations when partitioning repeatedly.
*/
func Partition(records []*Record, c feature.Criterion, satisfying, rest []*Record) ([]*Record, []*Record) {
	for _, r := range records {
		if c.SatisfiedBy(r) {
			satisfying = append(satisfying, r)
		} else {
			rest = append(rest, r)
		}
	}
	return satisfying, rest
}
