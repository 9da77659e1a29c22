/*
Package tree provides binary decision trees whose leaves hold references to
the training records they cover, the split operation that grows them, and
their use to classify records.
*/
package tree

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/feature"
)

// Error represents an error building, growing or using a tree
type Error string

const (
	/*
		ErrCannotPredict is the error returned by the Predict method of a tree
		when no decision is available for a sample: the tree has no root, or
		the sample reaches a leaf without records.
	*/
	ErrCannotPredict = Error("no decision available for this sample")
	// ErrInvalidSplit is returned when a split would leave a branch empty.
	ErrInvalidSplit = Error("split would produce an empty branch")
	// ErrUnknownLeaf is returned when splitting a node that is not a
	// current leaf of the tree.
	ErrUnknownLeaf = Error("node is not a leaf of the tree")
	// ErrInvalidFields is returned when a tree is given a field subset that
	// is empty, has repeated indexes or indexes out of range.
	ErrInvalidFields = Error("invalid field subset")
)

func (e Error) Error() string {
	return string(e)
}

/*
Tree represents a binary decision tree. It owns all its nodes through a
NodeStore. Its leaves reference records of a dataset, which must not be
modified while the tree is in use.

Fields returns the indexes of the fields the tree is allowed to split on.

A Tree is not safe for concurrent modification, but once grown it can be
used to classify samples from many goroutines.
*/
type Tree struct {
	nodes     *NodeStore
	root      NodeID
	fields    []int
	leaves    int
	decisions int
}

/*
New takes a dataset and returns a tree with a single root leaf covering
all its records, able to split on all its fields.
*/
func New(d *dataset.Dataset) (*Tree, error) {
	if d == nil || d.Count() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	return FromRecords(d.Refs(), AllFields(d.FieldCount()))
}

/*
NewWithFields takes a dataset and a subset of the indexes of its fields
and returns a tree with a single root leaf covering all the records of the
dataset, able to split only on the given fields.
*/
func NewWithFields(d *dataset.Dataset, fields []int) (*Tree, error) {
	if d == nil || d.Count() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	return FromRecords(d.Refs(), fields)
}

/*
FromRecords takes a slice of record references and a subset of field
indexes and returns a tree with a single root leaf covering the records,
able to split only on the given fields. The tree keeps the slice.
*/
func FromRecords(records []*dataset.Record, fields []int) (*Tree, error) {
	if len(records) == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	if err := validateFields(fields, records[0].FieldCount()); err != nil {
		return nil, err
	}
	t := &Tree{
		nodes:  NewNodeStore(),
		fields: append([]int(nil), fields...),
		leaves: 1,
	}
	t.root = t.nodes.Create(newLeafNode(NoNode, 0, records))
	return t, nil
}

/*
AllFields returns the indexes of n fields: 0 to n-1
*/
func AllFields(n int) []int {
	fields := make([]int, n)
	for i := range fields {
		fields[i] = i
	}
	return fields
}

func validateFields(fields []int, fieldCount int) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields given: %w", ErrInvalidFields)
	}
	seen := make(map[int]bool, len(fields))
	for _, f := range fields {
		if f < 0 || f >= fieldCount {
			return fmt.Errorf("field %d out of range [0, %d): %w", f, fieldCount, ErrInvalidFields)
		}
		if seen[f] {
			return fmt.Errorf("field %d repeated: %w", f, ErrInvalidFields)
		}
		seen[f] = true
	}
	return nil
}

/*
Root returns the ID of the root node of the tree
*/
func (t *Tree) Root() NodeID {
	return t.root
}

/*
Node takes an ID and returns the node of the tree with it, or nil if there
is none (the ID is stale or NoNode).
*/
func (t *Tree) Node(id NodeID) Node {
	return t.nodes.Get(id)
}

/*
Leaf takes an ID and returns the leaf of the tree with it, or nil if there
is none.
*/
func (t *Tree) Leaf(id NodeID) *LeafNode {
	ln, _ := t.nodes.Get(id).(*LeafNode)
	return ln
}

/*
Fields returns the indexes of the fields the tree can split on. The
returned slice must not be modified.
*/
func (t *Tree) Fields() []int {
	return t.fields
}

/*
LeafCount returns the number of leaves of the tree
*/
func (t *Tree) LeafCount() int {
	return t.leaves
}

/*
DecisionCount returns the number of decision nodes of the tree, that is,
the number of splits performed on it
*/
func (t *Tree) DecisionCount() int {
	return t.decisions
}

/*
Split takes the ID of a leaf of the tree and a criterion and replaces the
leaf with a decision node on the criterion and two new leaves: the left one
with the leaf's records satisfying the criterion, the right one with the
rest. The decision node takes the leaf's place under its parent, or as the
root of the tree. The ID of the decision node is returned.

Split returns ErrUnknownLeaf if the ID is not one of a current leaf and
ErrInvalidSplit if either new leaf would have no records. The tree is not
modified when an error is returned.
*/
func (t *Tree) Split(leafID NodeID, c feature.Criterion) (NodeID, error) {
	leaf := t.Leaf(leafID)
	if leaf == nil {
		return NoNode, fmt.Errorf("splitting node %v: %w", leafID, ErrUnknownLeaf)
	}
	left, right := dataset.Partition(leaf.records, c, nil, nil)
	if len(left) == 0 || len(right) == 0 {
		return NoNode, fmt.Errorf("splitting leaf %v on %v: %d/%d records: %w", leafID, c, len(left), len(right), ErrInvalidSplit)
	}
	dn := &DecisionNode{
		parentID:  leaf.parentID,
		depth:     leaf.depth,
		criterion: c,
	}
	t.nodes.Delete(leafID)
	dnID := t.nodes.Create(dn)
	dn.left = t.nodes.Create(newLeafNode(dnID, dn.depth+1, left))
	dn.right = t.nodes.Create(newLeafNode(dnID, dn.depth+1, right))
	if parent, ok := t.nodes.Get(dn.parentID).(*DecisionNode); ok {
		if parent.left == leafID {
			parent.left = dnID
		} else {
			parent.right = dnID
		}
	} else {
		t.root = dnID
	}
	t.leaves++
	t.decisions++
	return dnID, nil
}

/*
Leaves returns the IDs of the leaves of the tree, breadth-first and left to
right.
*/
func (t *Tree) Leaves() []NodeID {
	leaves := make([]NodeID, 0, t.leaves)
	t.breadthFirst(func(id NodeID, n Node) {
		if _, ok := n.(*LeafNode); ok {
			leaves = append(leaves, id)
		}
	})
	return leaves
}

/*
MaxDepth returns the depth of the deepest leaf of the tree, 0 for a tree
with a single leaf.
*/
func (t *Tree) MaxDepth() int {
	var max int
	t.breadthFirst(func(_ NodeID, n Node) {
		if d := n.Depth(); d > max {
			max = d
		}
	})
	return max
}

func (t *Tree) breadthFirst(f func(NodeID, Node)) {
	queue := []NodeID{t.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := t.nodes.Get(id)
		if n == nil {
			continue
		}
		f(id, n)
		if dn, ok := n.(*DecisionNode); ok {
			queue = append(queue, dn.left, dn.right)
		}
	}
}

/*
Predict takes a sample and returns the prediction of the leaf it reaches,
or ErrCannotPredict if the tree has no root or the leaf has no records.
*/
func (t *Tree) Predict(s feature.Sample) (*Prediction, error) {
	if t == nil {
		return nil, ErrCannotPredict
	}
	id := t.root
	for {
		switch n := t.nodes.Get(id).(type) {
		case *DecisionNode:
			id = n.Next(s)
		case *LeafNode:
			if n.prediction.Weight() == 0 {
				return nil, ErrCannotPredict
			}
			return n.prediction, nil
		default:
			return nil, ErrCannotPredict
		}
	}
}

/*
Classify takes a sample and returns the most frequent label among the
training records on the leaf it reaches, or ErrCannotPredict.
*/
func (t *Tree) Classify(s feature.Sample) (string, error) {
	p, err := t.Predict(s)
	if err != nil {
		return "", err
	}
	label, _ := p.PredictedValue()
	return label, nil
}

/*
TestRecord takes a record and returns whether the tree classifies it with
its label
*/
func (t *Tree) TestRecord(r *dataset.Record) bool {
	label, err := t.Classify(r)
	return err == nil && label == r.Label()
}

/*
Test takes a slice of records and returns the fraction of them the tree
classifies with their label. Records the tree cannot classify count as
misclassified. It returns ErrEmptyDataset when given no records.

Records are classified in parallel.
*/
func (t *Tree) Test(records []*dataset.Record) (float64, error) {
	return Accuracy(records, t.TestRecord)
}

/*
Accuracy takes a slice of records and a function that tests whether a
record is correctly classified and returns the fraction of records for
which it returns true. The function is called from several goroutines.
It returns ErrEmptyDataset when given no records.
*/
func Accuracy(records []*dataset.Record, test func(*dataset.Record) bool) (float64, error) {
	if len(records) == 0 {
		return 0, dataset.ErrEmptyDataset
	}
	var correct, incorrect atomic.Int64
	chunks := runtime.GOMAXPROCS(0)
	chunkSize := (len(records) + chunks - 1) / chunks
	var wg sync.WaitGroup
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}
		wg.Add(1)
		go func(chunk []*dataset.Record) {
			defer wg.Done()
			var c, i int64
			for _, r := range chunk {
				if test(r) {
					c++
				} else {
					i++
				}
			}
			correct.Add(c)
			incorrect.Add(i)
		}(records[start:end])
	}
	wg.Wait()
	c := float64(correct.Load())
	return c / (c + float64(incorrect.Load())), nil
}

/*
Traverse takes a bottomup boolean and an error-returning function that
takes a node ID and a node, and goes through the tree running the function
with every node. Traverse will call the function with a parent node before
calling it for its children if bottomup is false, and after its children if
bottomup is true. Left children are visited before right ones. If the call
to the function returns an error, the traversing is aborted and the error
is returned.
*/
func (t *Tree) Traverse(bottomup bool, f func(NodeID, Node) error) error {
	return t.traverse(t.root, bottomup, f)
}

func (t *Tree) traverse(id NodeID, bottomup bool, f func(NodeID, Node) error) error {
	n := t.nodes.Get(id)
	if n == nil {
		return nil
	}
	var err error
	if !bottomup {
		err = f(id, n)
	}
	if err != nil {
		return err
	}
	if dn, ok := n.(*DecisionNode); ok {
		err = t.traverse(dn.left, bottomup, f)
		if err != nil {
			return err
		}
		err = t.traverse(dn.right, bottomup, f)
		if err != nil {
			return err
		}
	}
	if bottomup {
		err = f(id, n)
	}
	return err
}

func (t *Tree) String() string {
	if t == nil || t.nodes.Get(t.root) == nil {
		return "Empty tree\n"
	}
	return t.subtreeString(t.root)
}

func (t *Tree) subtreeString(id NodeID) string {
	var b strings.Builder
	var children []NodeID
	switch n := t.nodes.Get(id).(type) {
	case *DecisionNode:
		fmt.Fprintf(&b, "{ %v }\n|\n", n)
		children = []NodeID{n.left, n.right}
	case *LeafNode:
		fmt.Fprintf(&b, "{ %v }\n[ %d ]\n", n, len(n.records))
	}
	for i, child := range children {
		for j, line := range strings.Split(t.subtreeString(child), "\n") {
			if len(line) == 0 {
				continue
			}
			switch {
			case j == 0:
				fmt.Fprintf(&b, "|__%s\n", line)
			case i == len(children)-1:
				fmt.Fprintf(&b, "   %s\n", line)
			default:
				fmt.Fprintf(&b, "|  %s\n", line)
			}
		}
	}
	return b.String()
}
