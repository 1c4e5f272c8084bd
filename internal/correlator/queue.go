package correlator

import "time"

// queue is a bounded FIFO of stamped messages in arrival order.
type queue[T any] struct {
	items []T
	stamp func(T) time.Time
}

// push appends v, dropping the oldest item when the queue is full.
// Returns true if an item was dropped.
func (q *queue[T]) push(v T, limit int) bool {
	dropped := false
	if len(q.items) >= limit {
		q.items = q.items[1:]
		dropped = true
	}
	q.items = append(q.items, v)
	return dropped
}

func (q *queue[T]) empty() bool { return len(q.items) == 0 }

func (q *queue[T]) head() time.Time { return q.stamp(q.items[0]) }

// waiting reports whether a later message could still be closer to pivot.
func (q *queue[T]) waiting(pivot time.Time, slop time.Duration, limit int) bool {
	newest := q.stamp(q.items[len(q.items)-1])
	return pivot.Sub(newest) > slop && len(q.items) < limit
}

// closest returns the index of the item nearest to pivot.
// Ties go to the older item.
func (q *queue[T]) closest(pivot time.Time) int {
	best, bestDist := 0, absDuration(q.stamp(q.items[0]).Sub(pivot))
	for i := 1; i < len(q.items); i++ {
		d := absDuration(q.stamp(q.items[i]).Sub(pivot))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// dropHead discards the oldest item.
func (q *queue[T]) dropHead() {
	q.items = append(q.items[:0:0], q.items[1:]...)
}

// take removes and returns item i along with everything queued before it.
func (q *queue[T]) take(i int) T {
	v := q.items[i]
	q.items = append(q.items[:0:0], q.items[i+1:]...)
	return v
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
