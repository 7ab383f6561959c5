package sequence

import "container/heap"

// Item is an entry of a Queue. Items with equal keys leave the queue in the
// order they were enqueued.
type Item[T any] struct {
	Value T
	Key   int64
	seq   uint64
	index int
}

// Queued reports whether the item is still held by its queue.
func (it *Item[T]) Queued() bool {
	return it.index >= 0
}

type minQueue[T any] struct {
	items []*Item[T]
}

func (q *minQueue[T]) Len() int {
	return len(q.items)
}

func (q *minQueue[T]) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.seq < b.seq
}

func (q *minQueue[T]) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *minQueue[T]) Push(x any) {
	item := x.(*Item[T])
	item.index = len(q.items)
	q.items = append(q.items, item)
}

func (q *minQueue[T]) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	q.items = old[0 : n-1]
	return item
}

// Queue is a min-heap keyed by int64 with stable ordering for equal keys.
// It is not safe for concurrent use.
type Queue[T any] struct {
	q   minQueue[T]
	seq uint64
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	heap.Init(&q.q)
	return q
}

func (q *Queue[T]) Enqueue(value T, key int64) *Item[T] {
	q.seq++
	item := &Item[T]{
		Value: value,
		Key:   key,
		seq:   q.seq,
	}
	heap.Push(&q.q, item)
	return item
}

// Dequeue removes and returns the item with the smallest key.
func (q *Queue[T]) Dequeue() (*Item[T], bool) {
	if q.q.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.q).(*Item[T]), true
}

func (q *Queue[T]) Peek() (*Item[T], bool) {
	if q.q.Len() == 0 {
		return nil, false
	}
	return q.q.items[0], true
}

// Remove takes the item out of the queue. Removing an item that was already
// dequeued or removed is a no-op and reports false.
func (q *Queue[T]) Remove(item *Item[T]) bool {
	if item == nil || item.index < 0 || item.index >= q.q.Len() || q.q.items[item.index] != item {
		return false
	}
	heap.Remove(&q.q, item.index)
	return true
}

func (q *Queue[T]) Len() int {
	return q.q.Len()
}

func (q *Queue[T]) IsEmpty() bool {
	return q.q.Len() == 0
}
