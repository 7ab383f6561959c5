package sequence

import (
	"iter"
	"slices"
)

// Iterator is a chainable, lazily evaluated sequence of T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From iterates over a slice in order.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{seq: slices.Values(data)}
}

func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Filter keeps the elements pred accepts.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range i.seq {
				if pred(v) && !yield(v) {
					return
				}
			}
		},
	}
}

func (i *Iterator[T]) Collect() []T {
	return slices.Collect(i.seq)
}

func (i *Iterator[T]) Count() int {
	n := 0
	for range i.seq {
		n++
	}
	return n
}

// ToArray maps every element through callback.
func ToArray[T any, S any](it *Iterator[T], callback func(T) S) []S {
	arr := make([]S, 0)
	for v := range it.seq {
		arr = append(arr, callback(v))
	}
	return arr
}
