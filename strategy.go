package thicket

import (
	"fmt"

	"github.com/pbanos/thicket/loss"
	"github.com/pbanos/thicket/metrics"
	"github.com/pbanos/thicket/tree"
	"github.com/rs/zerolog"
)

/*
LimitingFactor is the tree measure a StoppingPolicy limits
*/
type LimitingFactor uint8

const (
	// Decisions limits the number of splits performed on the tree
	Decisions LimitingFactor = iota
	// Depth limits the depth of the leaves of the tree
	Depth
	// Leaves limits the number of leaves of the tree
	Leaves
)

func (lf LimitingFactor) String() string {
	switch lf {
	case Decisions:
		return "decisions"
	case Depth:
		return "depth"
	case Leaves:
		return "leaves"
	}
	return fmt.Sprintf("LimitingFactor(%d)", uint8(lf))
}

/*
ParseLimitingFactor takes the name of a limiting factor ("decisions",
"depth" or "leaves") and returns it, or an ErrInvalidStrategy error.
*/
func ParseLimitingFactor(name string) (LimitingFactor, error) {
	for _, lf := range []LimitingFactor{Decisions, Depth, Leaves} {
		if lf.String() == name {
			return lf, nil
		}
	}
	return 0, fmt.Errorf("unknown limiting factor %q: %w", name, ErrInvalidStrategy)
}

/*
StoppingPolicy decides when the growth of a tree must stop: a limiting
factor and its limit.
*/
type StoppingPolicy struct {
	Factor LimitingFactor
	Limit  int
}

// FixedDecisions returns a policy allowing at most n splits
func FixedDecisions(n int) StoppingPolicy {
	return StoppingPolicy{Decisions, n}
}

// MaxDepth returns a policy allowing no leaf deeper than d
func MaxDepth(d int) StoppingPolicy {
	return StoppingPolicy{Depth, d}
}

// LeafCount returns a policy growing the tree until it has k leaves
func LeafCount(k int) StoppingPolicy {
	return StoppingPolicy{Leaves, k}
}

func (sp StoppingPolicy) String() string {
	return fmt.Sprintf("%v<=%d", sp.Factor, sp.Limit)
}

// continues returns whether the tree may grow further
func (sp StoppingPolicy) continues(t *tree.Tree) bool {
	switch sp.Factor {
	case Decisions:
		return t.DecisionCount() < sp.Limit
	case Depth:
		return t.MaxDepth() <= sp.Limit
	case Leaves:
		return t.LeafCount() < sp.Limit
	}
	return false
}

// allows returns whether the given leaf may be split
func (sp StoppingPolicy) allows(leaf *tree.LeafNode) bool {
	if sp.Factor == Depth {
		return leaf.Depth() < sp.Limit
	}
	return true
}

/*
TrainingStrategy holds the configuration for growing a tree.
*/
type TrainingStrategy struct {
	// Loss scores the impurity of the records on a leaf
	Loss loss.Loss
	// Samples is the number of thresholds tried on fields
	// split with LessThan or GreaterThan criteria. A single
	// sample tries the midpoint of the field's range.
	Samples int
	// Policy decides when growth stops
	Policy StoppingPolicy
	// ContinuousInts makes int fields be split with thresholds
	// like float ones instead of on each of their values
	ContinuousInts bool
	// UseGreaterThan makes threshold splits use GreaterThan
	// criteria instead of LessThan ones
	UseGreaterThan bool
	// MinimumGain is the gain a split must exceed to be
	// performed.
	MinimumGain float64
	// Workers limits the fields searched for splits
	// concurrently. 0 means no limit.
	Workers int
	// Logger receives debug events of the growth
	Logger zerolog.Logger
	// Metrics is optional
	Metrics *metrics.Collector
}

/*
DefaultTrainingStrategy returns a strategy using entropy, 10 samples, a
limit of 6 leaves and continuous ints, with logging disabled.
*/
func DefaultTrainingStrategy() *TrainingStrategy {
	return &TrainingStrategy{
		Loss:           loss.Entropy,
		Samples:        10,
		Policy:         LeafCount(6),
		ContinuousInts: true,
		Logger:         zerolog.Nop(),
	}
}

/*
Validate returns an ErrInvalidStrategy error if the strategy cannot be used
to grow a tree, nil otherwise.
*/
func (ts *TrainingStrategy) Validate() error {
	switch {
	case ts == nil:
		return fmt.Errorf("nil strategy: %w", ErrInvalidStrategy)
	case ts.Loss == nil:
		return fmt.Errorf("no loss function: %w", ErrInvalidStrategy)
	case ts.Samples < 1:
		return fmt.Errorf("%d samples, need at least 1: %w", ts.Samples, ErrInvalidStrategy)
	case ts.Policy.Limit < 0:
		return fmt.Errorf("negative limit %d: %w", ts.Policy.Limit, ErrInvalidStrategy)
	case ts.Policy.Factor > Leaves:
		return fmt.Errorf("unknown limiting factor %v: %w", ts.Policy.Factor, ErrInvalidStrategy)
	case ts.Workers < 0:
		return fmt.Errorf("negative workers %d: %w", ts.Workers, ErrInvalidStrategy)
	}
	return nil
}
