// Package schedule runs delayed callbacks against a caller-driven clock.
//
// The scheduler never starts goroutines or timers of its own. Its owner
// advances time by calling RunDue, which makes every pending task observable
// and cancellable from the owner's single thread of control.
package schedule

import (
	"time"

	"github.com/zeusync/shatter/pkg/sequence"
)

// Task is a pending callback. A Task fires at most once.
type Task struct {
	name  string
	due   time.Duration
	fn    func()
	item  *sequence.Item[*Task]
	owner *Scheduler
	state taskState
}

type taskState uint8

const (
	taskPending taskState = iota
	taskDone
	taskCancelled
)

func (t *Task) Name() string       { return t.name }
func (t *Task) Due() time.Duration { return t.due }
func (t *Task) Pending() bool      { return t.state == taskPending }
func (t *Task) Cancelled() bool    { return t.state == taskCancelled }

// Cancel prevents the task from running. It reports whether the task was
// still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	if t.owner != nil && t.item.Queued() {
		t.owner.queue.Remove(t.item)
	}
	return true
}

// Scheduler orders tasks by due time; tasks due at the same instant run in
// registration order.
type Scheduler struct {
	queue *sequence.Queue[*Task]
	now   time.Duration
}

func New() *Scheduler {
	return &Scheduler{queue: sequence.NewQueue[*Task]()}
}

// Now is the time of the last RunDue call.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After registers fn to run once the clock reaches Now()+delay. Negative
// delays are treated as zero.
func (s *Scheduler) After(name string, delay time.Duration, fn func()) *Task {
	if delay < 0 {
		delay = 0
	}
	return s.At(name, s.now+delay, fn)
}

// At registers fn to run once the clock reaches due.
func (s *Scheduler) At(name string, due time.Duration, fn func()) *Task {
	t := &Task{name: name, due: due, fn: fn, owner: s}
	t.item = s.queue.Enqueue(t, int64(due))
	return t
}

// RunDue advances the clock to now and runs every task due at or before it.
// Tasks registered by a running task are considered in the same pass when
// they are already due. It returns the number of tasks run.
func (s *Scheduler) RunDue(now time.Duration) int {
	if now > s.now {
		s.now = now
	}
	ran := 0
	for {
		item, ok := s.queue.Peek()
		if !ok || time.Duration(item.Key) > s.now {
			return ran
		}
		s.queue.Dequeue()
		t := item.Value
		if t.state != taskPending {
			continue
		}
		t.state = taskDone
		if t.fn != nil {
			t.fn()
		}
		ran++
	}
}

// CancelAll cancels every pending task and returns how many were pending.
func (s *Scheduler) CancelAll() int {
	n := 0
	for !s.queue.IsEmpty() {
		item, _ := s.queue.Dequeue()
		if item.Value.state == taskPending {
			item.Value.state = taskCancelled
			n++
		}
	}
	return n
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}
