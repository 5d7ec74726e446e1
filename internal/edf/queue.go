package edf

import "container/heap"

// jobHeap is a min-heap ordered by (deadline, seq).
type jobHeap []*job

func (h jobHeap) Len() int           { return len(h) }
func (h jobHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h jobHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x any)        { *h = append(*h, x.(*job)) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// readyQueue is the engine's ready state: at most one active job plus the
// waiting jobs ordered by deadline.
//
// Invariant: no waiting job runs ahead of the active job.
type readyQueue struct {
	active  *job
	waiting jobHeap
}

func (q *readyQueue) wait(j *job) { heap.Push(&q.waiting, j) }

// next pops the earliest-deadline waiting job, or nil.
func (q *readyQueue) next() *job {
	if q.waiting.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.waiting).(*job)
}

// drain empties the queue and returns every live job, active first.
func (q *readyQueue) drain() []*job {
	out := make([]*job, 0, q.len())
	if q.active != nil {
		out = append(out, q.active)
		q.active = nil
	}
	for j := q.next(); j != nil; j = q.next() {
		out = append(out, j)
	}
	return out
}

func (q *readyQueue) len() int {
	n := q.waiting.Len()
	if q.active != nil {
		n++
	}
	return n
}
