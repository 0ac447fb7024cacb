package sequencer

import (
	"fmt"
	"log"

	"github.com/notorious-go/outseq/termout"
)

// sharedState guards the sequencing state. The channel holds the only
// reference to the state; receiving it is locking, sending it back is
// unlocking.
//
// Every critical section releases with defer, so a panic raised while the state
// is held (by the sink, or by a broken invariant) leaves it available to every
// other task.
type sharedState chan *state

func newSharedState(st *state) sharedState {
	ch := make(sharedState, 1)
	ch <- st
	return ch
}

// acquire gets exclusive access to the state.
func (s sharedState) acquire() (st *state, release func()) {
	st = <-s
	release = func() { s <- st }
	return st, release
}

// state is everything shared by the tasks of one Sequencer.
type state struct {
	sink     Sink
	errorLog *log.Logger

	// finished counts the tasks that have completed and been flushed. It is also
	// the index of the task allowed to write to the sink directly.
	finished int
	// pending[i] buffers the output of task finished+i. It is only as long as the
	// highest index that has written or completed requires.
	pending []*entry
	// ready holds the channels returned by Task.Ready for tasks that are not at
	// the front yet, keyed by task index.
	ready map[int]chan struct{}
}

// entry is the render buffer of a task that is not at the front.
type entry struct {
	buf  *termout.Buffer
	done bool
}

// target returns where the output of the task with the given index goes right
// now: the sink itself for the front task, its private buffer otherwise.
func (st *state) target(index int) termout.Writer {
	if index == st.finished {
		return st.sink
	}
	return st.slot(index).buf
}

// slot returns the entry of the task with the given index, growing pending as
// needed.
func (st *state) slot(index int) *entry {
	if index < st.finished {
		panic(fmt.Errorf("sequencer: task %d addressed after the sequence advanced to task %d", index, st.finished))
	}
	offset := index - st.finished
	for len(st.pending) <= offset {
		st.pending = append(st.pending, &entry{buf: st.sink.NewBuffer()})
	}
	return st.pending[offset]
}

// completed reports whether the task with the given index has been marked done,
// whether or not its output has been flushed yet.
func (st *state) completed(index int) bool {
	if index < st.finished {
		return true
	}
	offset := index - st.finished
	return offset < len(st.pending) && st.pending[offset].done
}

// complete marks the task with the given index as done and flushes every task
// that can now be flushed.
//
// Completed entries at the front are printed one whole buffer at a time, each
// followed by a style reset. If the new front task has already written some
// output, that output is printed too and its buffer emptied: the task writes
// to the sink directly from now on.
//
// A panic raised by the sink stops the cascade halfway. The entry being printed
// is already popped and its output lost, and completed entries behind it stay
// in pending until some later task completes and restarts the cascade. If no
// task is left to complete, they are never flushed.
func (st *state) complete(index int) {
	st.slot(index).done = true

	for len(st.pending) > 0 && st.pending[0].done {
		e := st.pending[0]
		st.pending[0] = nil
		st.pending = st.pending[1:]
		st.finished++
		st.wake(st.finished)

		e.buf.ResetStyle()
		st.report(st.sink.Print(e.buf))
	}

	if len(st.pending) > 0 {
		front := st.pending[0]
		st.report(st.sink.Print(front.buf))
		front.buf.Clear()
	}
}

// readyChan returns a channel that is closed once the task with the given index
// reaches the front.
func (st *state) readyChan(index int) <-chan struct{} {
	if index <= st.finished {
		return closedChan
	}
	if st.ready == nil {
		st.ready = make(map[int]chan struct{})
	}
	ch, ok := st.ready[index]
	if !ok {
		ch = make(chan struct{})
		st.ready[index] = ch
	}
	return ch
}

func (st *state) wake(index int) {
	if ch, ok := st.ready[index]; ok {
		close(ch)
		delete(st.ready, index)
	}
}

// report hands a sink error to the error log. Sink errors never reach the
// tasks.
func (st *state) report(err error) {
	if err != nil && st.errorLog != nil {
		st.errorLog.Printf("sequencer: write to sink: %v", err)
	}
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
