package tree

import (
	"fmt"

	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/feature"
)

/*
NodeID identifies a node in the NodeStore of a tree. IDs of deleted nodes
become stale: they never resolve to a node again, even when the slot they
pointed to is reused.
*/
type NodeID struct {
	index      int
	generation uint32
}

// NoNode is the NodeID of no node, the parent of a root node
var NoNode = NodeID{index: -1}

/*
Valid returns whether the ID may refer to a node, that is, it is not NoNode.
Valid IDs can still be stale.
*/
func (id NodeID) Valid() bool {
	return id.index >= 0
}

func (id NodeID) String() string {
	if !id.Valid() {
		return "none"
	}
	return fmt.Sprintf("%d.%d", id.index, id.generation)
}

/*
Node is a node of the tree: either a *DecisionNode or a *LeafNode. No other
types implement it.
*/
type Node interface {
	// ParentID returns the ID of the parent node, NoNode for the root.
	ParentID() NodeID
	// Depth returns the number of ancestors of the node.
	Depth() int
	node()
}

/*
DecisionNode is an internal node of a tree. Samples satisfying its criterion
are routed to the left child, the rest to the right child.
*/
type DecisionNode struct {
	parentID  NodeID
	depth     int
	criterion feature.Criterion
	left      NodeID
	right     NodeID
}

/*
LeafNode is a terminal node of a tree. It holds references to the training
records that reach it and the prediction made from their labels.
*/
type LeafNode struct {
	parentID   NodeID
	depth      int
	records    []*dataset.Record
	prediction *Prediction
}

func newLeafNode(parentID NodeID, depth int, records []*dataset.Record) *LeafNode {
	return &LeafNode{
		parentID:   parentID,
		depth:      depth,
		records:    records,
		prediction: NewPrediction(dataset.CountLabels(records)),
	}
}

func (dn *DecisionNode) node() {}

// ParentID returns the ID of the parent node, NoNode for the root.
func (dn *DecisionNode) ParentID() NodeID {
	return dn.parentID
}

// Depth returns the number of ancestors of the node.
func (dn *DecisionNode) Depth() int {
	return dn.depth
}

/*
Criterion returns the criterion samples are tested against on the node
*/
func (dn *DecisionNode) Criterion() feature.Criterion {
	return dn.criterion
}

/*
Left returns the ID of the child for samples satisfying the criterion
*/
func (dn *DecisionNode) Left() NodeID {
	return dn.left
}

/*
Right returns the ID of the child for samples not satisfying the criterion
*/
func (dn *DecisionNode) Right() NodeID {
	return dn.right
}

/*
Next takes a sample and returns the ID of the child it is routed to
*/
func (dn *DecisionNode) Next(s feature.Sample) NodeID {
	if dn.criterion.SatisfiedBy(s) {
		return dn.left
	}
	return dn.right
}

func (dn *DecisionNode) String() string {
	return dn.criterion.String()
}

func (ln *LeafNode) node() {}

// ParentID returns the ID of the parent node, NoNode for the root.
func (ln *LeafNode) ParentID() NodeID {
	return ln.parentID
}

// Depth returns the number of ancestors of the node.
func (ln *LeafNode) Depth() int {
	return ln.depth
}

/*
Records returns the references to the training records reaching the leaf.
The returned slice must not be modified.
*/
func (ln *LeafNode) Records() []*dataset.Record {
	return ln.records
}

/*
Prediction returns the prediction for samples reaching the leaf
*/
func (ln *LeafNode) Prediction() *Prediction {
	return ln.prediction
}

func (ln *LeafNode) String() string {
	label, prob := ln.prediction.PredictedValue()
	if ln.prediction.Weight() == 0 {
		return "None"
	}
	return fmt.Sprintf("%s %.2f%%", label, prob*100)
}
