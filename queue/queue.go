package queue

import (
	"fmt"
	"math"

	"github.com/tidwall/btree"
)

/*
Queue ranks tasks by gain, highest first. Tasks with the same gain are
ranked in the order they were pushed, so for a given sequence of pushes the
order of pops is always the same. NaN gains are ranked last.

A Queue is not safe for concurrent use.
*/
type Queue struct {
	tasks *btree.BTreeG[*Task]
	seq   uint64
}

// New returns an empty queue
func New() *Queue {
	return &Queue{tasks: btree.NewBTreeGOptions(less, btree.Options{NoLocks: true})}
}

func less(a, b *Task) bool {
	ag, bg := rank(a.Gain), rank(b.Gain)
	if ag != bg {
		return ag > bg
	}
	return a.seq < b.seq
}

func rank(gain float64) float64 {
	if gain != gain {
		return math.Inf(-1)
	}
	return gain
}

/*
Push takes a task and stores it in the queue. The queue takes ownership of
the task.
*/
func (q *Queue) Push(t *Task) {
	q.seq++
	t.seq = q.seq
	q.tasks.Set(t)
}

/*
Pop removes the best task from the queue and returns it, or nil if the
queue is empty.
*/
func (q *Queue) Pop() *Task {
	t, ok := q.tasks.PopMin()
	if !ok {
		return nil
	}
	return t
}

/*
Peek returns the best task in the queue without removing it, or nil if the
queue is empty.
*/
func (q *Queue) Peek() *Task {
	t, ok := q.tasks.Min()
	if !ok {
		return nil
	}
	return t
}

// Len returns the number of tasks in the queue
func (q *Queue) Len() int {
	return q.tasks.Len()
}

/*
Tasks returns the tasks in the queue in the order they would be popped,
without removing them.
*/
func (q *Queue) Tasks() []*Task {
	tasks := make([]*Task, 0, q.tasks.Len())
	q.tasks.Scan(func(t *Task) bool {
		tasks = append(tasks, t)
		return true
	})
	return tasks
}

func (q *Queue) String() string {
	return fmt.Sprintf("{Queue pending: %d %v}", q.Len(), q.Tasks())
}
