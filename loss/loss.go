/*
Package loss provides the impurity measures used to score candidate splits:
entropy and Gini impurity of the labels of a subset of records.
*/
package loss

import (
	"fmt"
	"math"

	"github.com/pbanos/thicket/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Error represents an error computing a loss
type Error string

// ErrEmptySubset is returned when computing the impurity of no records
const ErrEmptySubset = Error("cannot compute impurity of an empty subset")

func (e Error) Error() string {
	return string(e)
}

/*
Loss is an interface wrapping the Impurity method, that measures how mixed
the labels of a subset of records are: 0 for a subset whose records all
share a label, higher the more evenly spread the labels are.

Impurity returns ErrEmptySubset when given no records.
*/
type Loss interface {
	Impurity(records []*dataset.Record) (float64, error)
}

/*
Func wraps a function with the Impurity method signature to implement the
Loss interface
*/
type Func func(records []*dataset.Record) (float64, error)

/*
Impurity invokes the Func with the given records to return its result
*/
func (f Func) Impurity(records []*dataset.Record) (float64, error) {
	return f(records)
}

type entropy struct{}

type giniImpurity struct{}

var (
	// Entropy measures impurity as -Σ p·log2(p) over the proportion p of
	// each label. Labels absent from the subset contribute 0.
	Entropy Loss = entropy{}
	// GiniImpurity measures impurity as 1 - Σ p² over the proportion p of
	// each label.
	GiniImpurity Loss = giniImpurity{}
)

func (entropy) Impurity(records []*dataset.Record) (float64, error) {
	p, err := proportions(records)
	if err != nil {
		return 0, err
	}
	// stat.Entropy skips zero proportions instead of computing 0·log(0)
	h := stat.Entropy(p) / math.Ln2
	if h <= 0 {
		return 0, nil
	}
	return h, nil
}

func (entropy) String() string {
	return "entropy"
}

func (giniImpurity) Impurity(records []*dataset.Record) (float64, error) {
	p, err := proportions(records)
	if err != nil {
		return 0, err
	}
	return 1 - floats.Dot(p, p), nil
}

func (giniImpurity) String() string {
	return "gini"
}

/*
ByName takes the name of a loss ("entropy" or "gini") and returns it, or
an error if the name is unknown.
*/
func ByName(name string) (Loss, error) {
	switch name {
	case "entropy":
		return Entropy, nil
	case "gini":
		return GiniImpurity, nil
	}
	return nil, fmt.Errorf("unknown loss function %q", name)
}

func proportions(records []*dataset.Record) ([]float64, error) {
	if len(records) == 0 {
		return nil, ErrEmptySubset
	}
	return dataset.CountLabels(records).Proportions(), nil
}
