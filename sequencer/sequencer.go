package sequencer

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/notorious-go/outseq/termout"
)

// Sink is the destination of a Sequencer's output.
//
// Besides accepting bytes and style directives, a Sink creates render buffers
// that capture output the way the sink itself would have rendered it, and
// prints such a buffer as one indivisible block. *termout.Stream is the usual
// implementation.
//
// A Sink is only ever used by one goroutine at a time.
type Sink interface {
	termout.Writer
	NewBuffer() *termout.Buffer
	Print(*termout.Buffer) error
}

// Sequencer hands out tasks and arranges for their output to reach a single
// sink in task order, without interleaving and without making any task wait
// for its turn.
//
// Tasks are numbered from 0 in the order Begin is called. At any time exactly
// one task, the one with the lowest index that has not completed, writes to
// the sink directly. Every other task writes into a private buffer, which is
// printed in one piece once all tasks before it have completed.
//
// The zero Sequencer is ready to use and writes to standard error, with color
// when standard error is a terminal. A Sequencer must not be copied after first
// use.
type Sequencer struct {
	// Makes the zero-value Sequencer ready to use.
	initOnce sync.Once
	shared   sharedState
	// Index of the next task returned by Begin.
	started atomic.Int64
}

// An Option configures a Sequencer.
type Option func(*state)

// WithErrorLog reports errors returned by the sink to l. By default they are
// discarded. Tasks never observe sink errors either way.
func WithErrorLog(l *log.Logger) Option {
	return func(st *state) {
		st.errorLog = l
	}
}

// New returns a Sequencer writing to sink.
func New(sink Sink, opts ...Option) *Sequencer {
	st := &state{sink: sink}
	for _, opt := range opts {
		opt(st)
	}
	return &Sequencer{shared: newSharedState(st)}
}

// Stdout returns a Sequencer writing to standard output, with color when
// standard output is a terminal.
func Stdout(opts ...Option) *Sequencer {
	return New(termout.Stdout(termout.Auto), opts...)
}

// Stderr returns a Sequencer writing to standard error, with color when
// standard error is a terminal.
func Stderr(opts ...Option) *Sequencer {
	return New(termout.Stderr(termout.Auto), opts...)
}

func (s *Sequencer) init() {
	s.initOnce.Do(func() {
		if s.shared == nil {
			s.shared = newSharedState(&state{sink: termout.Stderr(termout.Auto)})
		}
	})
}

// Begin starts the next task. It never blocks.
//
// The caller may decide what work to perform from the index of the returned
// task, or by taking work from a queue shared between workers. Either way the
// task must be completed once its output is written; see Task.Complete.
//
// Begin is safe for concurrent use. Concurrent callers receive distinct
// indices, but which of two racing callers gets the lower one is unspecified.
func (s *Sequencer) Begin() *Task {
	s.init()
	index := int(s.started.Add(1) - 1)
	return newTask(index, s.shared)
}

// Do begins a task, passes it to fn, and completes it when fn returns or
// panics.
func (s *Sequencer) Do(fn func(task *Task)) {
	task := s.Begin()
	defer task.Complete()
	fn(task)
}

// Started returns the number of tasks begun so far.
func (s *Sequencer) Started() int {
	return int(s.started.Load())
}

// Finished returns the number of tasks whose output has been fully flushed to
// the sink. It is also the index of the task currently writing to the sink
// directly.
func (s *Sequencer) Finished() int {
	s.init()
	st, release := s.shared.acquire()
	defer release()
	return st.finished
}

// Pending returns the number of buffers held for tasks after the one currently
// writing to the sink. Once every begun task has completed, it is zero.
func (s *Sequencer) Pending() int {
	s.init()
	st, release := s.shared.acquire()
	defer release()
	return len(st.pending)
}

// String returns a summary of the sequencer's progress, for instance
// "Sequencer(started=5, finished=3, pending=2)".
func (s *Sequencer) String() string {
	s.init()
	st, release := s.shared.acquire()
	defer release()
	return fmt.Sprintf("Sequencer(started=%v, finished=%v, pending=%v)", s.started.Load(), st.finished, len(st.pending))
}
