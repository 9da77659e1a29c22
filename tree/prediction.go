package tree

import (
	"fmt"
	"strings"

	"github.com/pbanos/thicket/dataset"
)

/*
Prediction represents a prediction made by a decision tree leaf: the
distribution of the labels of the training records that reached it.
*/
type Prediction struct {
	labels        []string
	probabilities map[string]float64
	weight        int
}

/*
NewPrediction takes the distribution of labels of the records on a leaf
and returns the prediction made from them. An empty distribution makes a
prediction with weight 0 and no predicted value.
*/
func NewPrediction(d *dataset.Distribution) *Prediction {
	probs := make(map[string]float64, d.Len())
	for i, p := range d.Proportions() {
		probs[d.Labels()[i]] = p
	}
	return &Prediction{
		labels:        append([]string(nil), d.Labels()...),
		probabilities: probs,
		weight:        d.Total(),
	}
}

/*
ProbabilityOf takes a label and returns the float64 probability of that
label according to the prediction.
*/
func (p *Prediction) ProbabilityOf(label string) float64 {
	return p.probabilities[label]
}

/*
Probabilities returns a map of label to float64 containing the
probabilities of each label
*/
func (p *Prediction) Probabilities() map[string]float64 {
	return p.probabilities
}

/*
Weight returns the weight of the prediction: the number of records from
which it was made
*/
func (p *Prediction) Weight() int {
	return p.weight
}

/*
PredictedValue returns the most probable label and its probability. Ties
go to the label that was encountered first among the records.
*/
func (p *Prediction) PredictedValue() (label string, prob float64) {
	for _, l := range p.labels {
		if v := p.probabilities[l]; v > prob {
			label = l
			prob = v
		}
	}
	return
}

func (p *Prediction) String() string {
	parts := make([]string, 0, len(p.labels))
	for _, l := range p.labels {
		parts = append(parts, fmt.Sprintf("%s:%v", l, p.probabilities[l]))
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}
