package sequencer

import (
	"fmt"
	"sync"

	"github.com/notorious-go/outseq/ordering"
	"github.com/notorious-go/outseq/termout"
)

// Task is a unit of work arranged by a Sequencer.
//
// A Task is an io.Writer, so the fmt.Fprint family works on it directly; the
// Print methods are shorthands for the same. Additional methods set the color
// of the output that follows.
//
//	func work(task *sequencer.Task) {
//		defer task.Complete()
//		task.Color(termout.Blue)
//		task.Printf("hello from task #%d\n", task.Index())
//	}
//
// Whether output is shown immediately or held back until the preceding tasks
// have completed is decided on every call, so a task switches to immediate
// output as soon as it is promoted, without any action on its part.
//
// A Task may be shared freely between goroutines; writes are serialized, but
// the relative order of writes issued concurrently to the same Task is
// whatever order they acquire the sequencer in.
type Task struct {
	index  int
	shared sharedState

	completeOnce sync.Once
	done         chan struct{}
}

var _ ordering.Operation = (*Task)(nil)

func newTask(index int, shared sharedState) *Task {
	return &Task{
		index:  index,
		shared: shared,
		done:   make(chan struct{}),
	}
}

// Index returns the position of the task in its sequence: 0 for the first task
// begun, 1 for the second and so on. It may be used to decide what work this
// task is responsible for.
func (t *Task) Index() int {
	return t.index
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%d)", t.index)
}

// Write writes p as the task's output. It always reports success: errors from
// the sink are not the task's concern and go to the sequencer's error log.
//
// Write panics if the task has already been completed.
func (t *Task) Write(p []byte) (int, error) {
	t.apply(func(w termout.Writer) error {
		_, err := w.Write(p)
		return err
	})
	return len(p), nil
}

// WriteString is like Write, but writes the contents of s.
func (t *Task) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Printf formats according to a format specifier and writes the result as the
// task's output.
func (t *Task) Printf(format string, args ...any) {
	t.WriteString(fmt.Sprintf(format, args...))
}

// Print formats its operands like fmt.Print and writes the result.
func (t *Task) Print(args ...any) {
	t.WriteString(fmt.Sprint(args...))
}

// Println formats its operands like fmt.Println and writes the result.
func (t *Task) Println(args ...any) {
	t.WriteString(fmt.Sprintln(args...))
}

// Bold sets the output that follows to appear in bold, uncolored.
func (t *Task) Bold() {
	t.SetStyle(termout.Style{Bold: true})
}

// Color sets the output that follows to appear in color c, not bold.
func (t *Task) Color(c termout.Color) {
	t.SetStyle(termout.Style{Fg: c})
}

// BoldColor sets the output that follows to appear bold and in color c.
func (t *Task) BoldColor(c termout.Color) {
	t.SetStyle(termout.Style{Bold: true, Fg: c})
}

// ResetColor sets the output that follows to appear plain: not bold, uncolored.
func (t *Task) ResetColor() {
	t.apply(func(w termout.Writer) error {
		return w.ResetStyle()
	})
}

// SetStyle sets the style of the output that follows.
func (t *Task) SetStyle(s termout.Style) {
	t.apply(func(w termout.Writer) error {
		return w.SetStyle(s)
	})
}

// SupportsColor reports whether style directives have any visible effect.
func (t *Task) SupportsColor() bool {
	var color bool
	t.apply(func(w termout.Writer) error {
		color = w.SupportsColor()
		return nil
	})
	return color
}

// apply runs f against the sink if this task is at the front of the sequence,
// or against its buffer otherwise.
func (t *Task) apply(f func(w termout.Writer) error) {
	st, release := t.shared.acquire()
	defer release()
	// Checked under the lock: another goroutine holding the same Task may have
	// completed it since this call started.
	if st.completed(t.index) {
		panic(fmt.Errorf("sequencer: task %d used after Complete", t.index))
	}
	st.report(f(st.target(t.index)))
}

// Complete marks the task as finished. Its output, and the output of every
// completed task right after it, is flushed to the sink as soon as all the
// tasks before it have completed; if those already have, that happens before
// Complete returns.
//
// Complete must be called exactly once the task is done writing, on every path
// out of the work, typically with defer. A task that is never completed holds
// back the output of every later task forever. Calling Complete more than once
// has no further effect; writing to a completed task panics.
func (t *Task) Complete() {
	t.completeOnce.Do(func() {
		defer close(t.done)
		st, release := t.shared.acquire()
		defer release()
		st.complete(t.index)
	})
}

// Ready returns a channel that is closed when every task before this one has
// completed, that is, from the moment this task's output goes to the sink
// directly. Nothing requires waiting on it.
func (t *Task) Ready() <-chan struct{} {
	st, release := t.shared.acquire()
	defer release()
	return st.readyChan(t.index)
}

// Completed returns a channel that is closed once Complete has run.
func (t *Task) Completed() <-chan struct{} {
	return t.done
}
