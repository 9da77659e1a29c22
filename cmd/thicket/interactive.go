package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/dataset/inputsample"
	"github.com/pbanos/thicket/feature"
	"github.com/pbanos/thicket/tree"
)

type promptRequester struct {
	out io.Writer
}

func (pr promptRequester) RequestValueFor(field int, kind feature.Kind) error {
	_, err := fmt.Fprintf(pr.out, "Value for field %d (%v): ", field, kind)
	return err
}

func (pr promptRequester) RejectValueFor(field int, kind feature.Kind, value string) error {
	_, err := fmt.Fprintf(pr.out, "%q is not a valid %v value, try again: ", value, kind)
	return err
}

// classifyInteractively reads samples from STDIN, asking only for the
// fields the tree needs, and prints the tree's prediction for each until
// STDIN is closed
func classifyInteractively(t *tree.Tree, ds *dataset.Dataset) error {
	kinds := make([]feature.Kind, ds.FieldCount())
	for i := range kinds {
		kinds[i] = ds.FieldKind(i)
	}
	r := inputsample.NewReader(os.Stdin, kinds, promptRequester{os.Stderr})
	for {
		fmt.Fprintln(os.Stderr, "Classifying a new sample (Ctrl-D to exit)")
		s := r.Next()
		p, err := t.Predict(s)
		if serr := s.Err(); serr != nil {
			if errors.Is(serr, io.EOF) {
				fmt.Fprintln(os.Stderr)
				return nil
			}
			return serr
		}
		if err != nil {
			return err
		}
		label, prob := p.PredictedValue()
		fmt.Printf("%s (%.2f%% of %d records)\n", label, prob*100, p.Weight())
	}
}
