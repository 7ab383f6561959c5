package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOrdersByKeyThenInsertion(t *testing.T) {
	q := NewQueue[string]()
	q.Enqueue("c", 30)
	q.Enqueue("a1", 10)
	q.Enqueue("b", 20)
	q.Enqueue("a2", 10)

	var got []string
	for !q.IsEmpty() {
		item, ok := q.Dequeue()
		require.True(t, ok)
		got = append(got, item.Value)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, got)
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue[int]()
	first := q.Enqueue(1, 1)
	second := q.Enqueue(2, 2)
	q.Enqueue(3, 3)

	assert.True(t, q.Remove(second))
	assert.False(t, second.Queued())
	assert.False(t, q.Remove(second), "second removal is a no-op")

	item, ok := q.Dequeue()
	require.True(t, ok)
	assert.Same(t, first, item)
	assert.False(t, q.Remove(first), "dequeued items cannot be removed")

	item, ok = q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 3, item.Value)

	_, ok = q.Dequeue()
	assert.False(t, ok)
}
