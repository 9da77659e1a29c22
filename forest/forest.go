/*
Package forest provides random forests: sets of decision trees grown over
the same records, each restricted to a random subset of their fields, that
classify samples by majority vote.
*/
package forest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/pbanos/thicket"
	"github.com/pbanos/thicket/dataset"
	"github.com/pbanos/thicket/feature"
	"github.com/pbanos/thicket/tree"
	"github.com/rs/zerolog"
)

// Error represents an error building or using a forest
type Error string

// ErrInvalidArgument is returned when a forest is asked to grow an
// impossible set of trees
const ErrInvalidArgument = Error("invalid argument")

func (e Error) Error() string {
	return string(e)
}

/*
Forest owns a dataset and a set of trees grown over references to its
records. Trees never copy the records.

Growing a forest is not safe for concurrent use, but a grown forest can
classify samples from many goroutines.
*/
type Forest struct {
	data        *dataset.Dataset
	refs        []*dataset.Record
	trees       []*tree.Tree
	rand        *rand.Rand
	concurrency int
	logger      zerolog.Logger
	treePool    pond.ResultPool[*tree.Tree]
	testPool    pond.Pool
}

// Option configures a Forest
type Option func(*Forest)

// WithSeed makes the field subsets of the trees of the forest depend only
// on the given seed
func WithSeed(seed uint64) Option {
	return func(f *Forest) {
		f.rand = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithConcurrency limits the number of trees grown or records tested at
// the same time. It defaults to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(f *Forest) {
		f.concurrency = n
	}
}

// WithLogger sets the logger for the forest. It defaults to a disabled
// logger.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Forest) {
		f.logger = l
	}
}

/*
New takes a dataset and options and returns a forest without trees owning
the dataset, or ErrEmptyDataset if the dataset is nil or has no records.
*/
func New(ds *dataset.Dataset, opts ...Option) (*Forest, error) {
	if ds == nil || ds.Count() == 0 {
		return nil, dataset.ErrEmptyDataset
	}
	f := &Forest{
		data:        ds,
		refs:        ds.Refs(),
		concurrency: runtime.GOMAXPROCS(0),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rand == nil {
		f.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if f.concurrency < 1 {
		f.concurrency = 1
	}
	f.treePool = pond.NewResultPool[*tree.Tree](f.concurrency)
	f.testPool = pond.NewPool(f.concurrency)
	return f, nil
}

/*
TrainBlindForest takes a context, a number of trees, a number of hidden
fields and a training strategy and grows size trees, adding them to the
forest. Each tree can only split on the fields left after dropping the last
numHiddenFields of a random permutation of the fields of the dataset.
Trees are grown concurrently and added in the order their field subsets
were drawn.

It returns an ErrInvalidArgument error if size is not positive or
numHiddenFields is negative or hides all fields. If growing any tree fails,
the error is returned and no tree is added.
*/
func (f *Forest) TrainBlindForest(ctx context.Context, size, numHiddenFields int, ts *thicket.TrainingStrategy) error {
	fieldCount := f.data.FieldCount()
	if size < 1 {
		return fmt.Errorf("forest size %d: %w", size, ErrInvalidArgument)
	}
	if numHiddenFields < 0 || numHiddenFields >= fieldCount {
		return fmt.Errorf("hiding %d of %d fields: %w", numHiddenFields, fieldCount, ErrInvalidArgument)
	}
	if err := ts.Validate(); err != nil {
		return err
	}
	trees := make([]*tree.Tree, size)
	for i := range trees {
		fields := f.rand.Perm(fieldCount)[:fieldCount-numHiddenFields]
		t, err := tree.FromRecords(f.refs, fields)
		if err != nil {
			return err
		}
		trees[i] = t
	}
	group := f.treePool.NewGroupContext(ctx)
	for i, t := range trees {
		group.SubmitErr(func() (*tree.Tree, error) {
			start := time.Now()
			tts := *ts
			tts.Logger = ts.Logger.With().Int("tree", len(f.trees)+i).Logger()
			err := thicket.Train(ctx, t, &tts)
			if err != nil {
				return nil, fmt.Errorf("growing tree %d: %w", i, err)
			}
			f.logger.Info().Int("tree", len(f.trees)+i).Ints("fields", t.Fields()).Int("leaves", t.LeafCount()).Dur("took", time.Since(start)).Msg("tree grown")
			return t, nil
		})
	}
	grown, err := group.Wait()
	if err != nil {
		return err
	}
	f.trees = append(f.trees, grown...)
	return nil
}

/*
Classify takes a sample and returns the label voted by most trees of the
forest. Ties go to the label voted first, in the order trees were added.
Trees that cannot classify the sample do not vote; if none can,
tree.ErrCannotPredict is returned.
*/
func (f *Forest) Classify(s feature.Sample) (string, error) {
	votes := dataset.NewDistribution()
	for _, t := range f.trees {
		label, err := t.Classify(s)
		if err != nil {
			continue
		}
		votes.Add(label)
	}
	if votes.Total() == 0 {
		return "", tree.ErrCannotPredict
	}
	label, _ := votes.Mode()
	return label, nil
}

/*
ClassifyAll takes a slice of samples and returns the label the forest
classifies each with, or the first error found.
*/
func (f *Forest) ClassifyAll(records []*dataset.Record) ([]string, error) {
	labels := make([]string, len(records))
	for i, r := range records {
		label, err := f.Classify(r)
		if err != nil {
			return nil, fmt.Errorf("classifying record %d: %w", i, err)
		}
		labels[i] = label
	}
	return labels, nil
}

/*
TestRecord takes a record and returns whether the forest classifies it
with its label
*/
func (f *Forest) TestRecord(r *dataset.Record) bool {
	label, err := f.Classify(r)
	return err == nil && label == r.Label()
}

/*
Test takes a slice of records and returns the fraction of them the forest
classifies with their label, or ErrEmptyDataset when given no records.
Records are tested concurrently.
*/
func (f *Forest) Test(records []*dataset.Record) (float64, error) {
	if len(records) == 0 {
		return 0, dataset.ErrEmptyDataset
	}
	var correct atomic.Int64
	chunkSize := (len(records) + f.concurrency - 1) / f.concurrency
	group := f.testPool.NewGroup()
	for start := 0; start < len(records); start += chunkSize {
		chunk := records[start:min(start+chunkSize, len(records))]
		group.Submit(func() {
			var c int64
			for _, r := range chunk {
				if f.TestRecord(r) {
					c++
				}
			}
			correct.Add(c)
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}
	return float64(correct.Load()) / float64(len(records)), nil
}

// TreeCount returns the number of trees of the forest
func (f *Forest) TreeCount() int {
	return len(f.trees)
}

// DatasetSize returns the number of records of the forest's dataset
func (f *Forest) DatasetSize() int {
	return f.data.Count()
}

// Trees returns the trees of the forest. The returned slice must not be
// modified.
func (f *Forest) Trees() []*tree.Tree {
	return f.trees
}
