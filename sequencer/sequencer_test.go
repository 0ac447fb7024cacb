package sequencer_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/notorious-go/outseq/ordering"
	"github.com/notorious-go/outseq/ordering/ordertest"
	"github.com/notorious-go/outseq/sequencer"
	"github.com/notorious-go/outseq/termout"
)

// recorder keeps every Write call it receives as a separate segment, so that
// tests can tell where one flush ends and the next begins.
type recorder struct {
	mu       sync.Mutex
	segments []string
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segments = append(r.segments, string(p))
	return len(p), nil
}

func (r *recorder) Segments() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.segments...)
}

func (r *recorder) String() string {
	return strings.Join(r.Segments(), "")
}

func newRecorded(choice termout.ColorChoice) (*sequencer.Sequencer, *recorder) {
	var rec recorder
	return sequencer.New(termout.NewStream(&rec, choice)), &rec
}

func checkSegments(t *testing.T, rec *recorder, want ...string) {
	t.Helper()
	got := rec.Segments()
	if len(got) != len(want) {
		t.Fatalf("segments = %q, want %q", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("segments = %q, want %q", got, want)
		}
	}
}

func checkDrained(t *testing.T, seq *sequencer.Sequencer) {
	t.Helper()
	if seq.Finished() != seq.Started() {
		t.Errorf("%v: finished != started after every task completed", seq)
	}
	if seq.Pending() != 0 {
		t.Errorf("%v: buffers remain after every task completed", seq)
	}
}

// Tasks 1 and 2 complete before task 0 even starts writing. Their output is
// flushed, in order, the moment task 0 completes.
func TestCompletedRunIsFlushedTogether(t *testing.T) {
	seq, rec := newRecorded(termout.Never)
	t0, t1, t2 := seq.Begin(), seq.Begin(), seq.Begin()

	t1.WriteString("B")
	t1.Complete()
	t2.WriteString("C")
	t2.Complete()
	checkSegments(t, rec)

	t0.WriteString("A")
	checkSegments(t, rec, "A")

	t0.Complete()
	checkSegments(t, rec, "A", "B", "C")
	checkDrained(t, seq)
}

// The front task writes live while a later task completes into its buffer.
func TestLiveTaskIsNotInterrupted(t *testing.T) {
	seq, rec := newRecorded(termout.Never)

	t0 := seq.Begin()
	t0.WriteString("A-part1")
	checkSegments(t, rec, "A-part1")

	t1 := seq.Begin()
	t1.WriteString("B")
	t1.Complete()
	checkSegments(t, rec, "A-part1")

	t0.WriteString("A-part2")
	checkSegments(t, rec, "A-part1", "A-part2")

	t0.Complete()
	checkSegments(t, rec, "A-part1", "A-part2", "B")
	checkDrained(t, seq)
}

// A promoted task has its buffered output printed once, then writes live.
func TestPromotionDoesNotDuplicate(t *testing.T) {
	seq, rec := newRecorded(termout.Never)
	t0, t1 := seq.Begin(), seq.Begin()

	t1.WriteString("x")
	t0.Complete()
	checkSegments(t, rec, "x")
	if seq.Finished() != 1 {
		t.Fatalf("%v: task 0 was not flushed", seq)
	}

	t1.WriteString("y")
	checkSegments(t, rec, "x", "y")

	t1.Complete()
	checkSegments(t, rec, "x", "y")
	checkDrained(t, seq)
}

// A cascade stops at the first unfinished task, which gets promoted; tasks after
// it stay buffered.
func TestCascadeStopsAtUnfinishedTask(t *testing.T) {
	seq, rec := newRecorded(termout.Never)
	t0, t1, t2, t3 := seq.Begin(), seq.Begin(), seq.Begin(), seq.Begin()

	t1.WriteString("b")
	t1.Complete()
	t3.WriteString("d")
	t2.WriteString("c")

	t0.Complete()
	checkSegments(t, rec, "b", "c")
	if got := seq.Pending(); got != 2 {
		t.Errorf("pending = %d, want 2 (the front task and task 3)", got)
	}

	t2.WriteString("C")
	t2.Complete()
	checkSegments(t, rec, "b", "c", "C", "d")

	t3.Complete()
	if got := rec.String(); got != "bcCd" {
		t.Errorf("output = %q, want %q", got, "bcCd")
	}
	checkDrained(t, seq)
}

// A task far behind the front can write any amount and complete without ever
// waiting for the tasks before it.
func TestLaterTasksNeverWait(t *testing.T) {
	seq, rec := newRecorded(termout.Never)
	t0, t1 := seq.Begin(), seq.Begin()

	const lines = 10000
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range lines {
			t1.Printf("line %d\n", i)
		}
		t1.Complete()
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("task 1 blocked while task 0 was still running")
	}
	checkSegments(t, rec)

	t0.Complete()
	segments := rec.Segments()
	if len(segments) != 1 {
		t.Fatalf("task 1 output was flushed in %d pieces, want 1", len(segments))
	}
	if got := strings.Count(segments[0], "\n"); got != lines {
		t.Errorf("flushed %d lines, want %d", got, lines)
	}
	checkDrained(t, seq)
}

// Many workers, random delays: the output is in task order and every segment
// written to the sink belongs to a single task.
func TestConcurrentOrder(t *testing.T) {
	seq, rec := newRecorded(termout.Never)

	const (
		tasks   = 200
		workers = 8
		lines   = 4
	)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task := seq.Begin()
				if task.Index() >= tasks {
					task.Complete()
					return
				}
				for k := range lines {
					time.Sleep(time.Duration(rand.IntN(200)) * time.Microsecond)
					fmt.Fprintf(task, "%d.%d\n", task.Index(), k)
				}
				task.Complete()
			}
		}()
	}
	wg.Wait()

	last := -1
	var all []string
	for _, segment := range rec.Segments() {
		owner := -1
		for _, line := range strings.Split(strings.TrimSuffix(segment, "\n"), "\n") {
			index, err := strconv.Atoi(strings.Split(line, ".")[0])
			if err != nil {
				t.Fatalf("unexpected line %q in segment %q", line, segment)
			}
			if owner == -1 {
				owner = index
			}
			if index != owner {
				t.Fatalf("segment %q mixes output of tasks %d and %d", segment, owner, index)
			}
			all = append(all, line)
		}
		if owner < last {
			t.Fatalf("output of task %d appeared after task %d", owner, last)
		}
		last = owner
	}

	var want []string
	for i := range tasks {
		for k := range lines {
			want = append(want, fmt.Sprintf("%d.%d", i, k))
		}
	}
	if strings.Join(all, " ") != strings.Join(want, " ") {
		t.Errorf("output lines out of order or missing:\n got %v\nwant %v", all, want)
	}
	if got := seq.Started(); got != tasks+workers {
		t.Errorf("started = %d, want %d", got, tasks+workers)
	}
	checkDrained(t, seq)
}

func TestStylesFollowTheirTask(t *testing.T) {
	seq, rec := newRecorded(termout.Always)
	t0, t1 := seq.Begin(), seq.Begin()

	if !t1.SupportsColor() {
		t.Fatal("task of a colored sequencer does not support color")
	}
	t1.Bold()
	t1.WriteString("B")
	t1.Complete()

	t0.Color(termout.Red)
	t0.WriteString("A")
	t0.ResetColor()
	t0.BoldColor(termout.Green)
	t0.WriteString("!")
	t0.Complete()

	want := "\x1b[0;31m" + "A" + "\x1b[m" + "\x1b[0;1;32m" + "!" + "\x1b[m" + // task 0, live
		"\x1b[0;1m" + "B" + "\x1b[m" // task 1, flushed
	if got := rec.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestStylesDroppedWithoutColor(t *testing.T) {
	seq, rec := newRecorded(termout.Never)
	seq.Do(func(task *sequencer.Task) {
		task.BoldColor(termout.Red)
		task.Print("plain", " ", "text")
		task.ResetColor()
		task.Println()
	})
	if got := rec.String(); got != "plain text\n" {
		t.Errorf("output = %q", got)
	}
}

func TestOperationInterface(t *testing.T) {
	seq, _ := newRecorded(termout.Never)
	first := seq.Begin()
	second := seq.Begin()
	ordertest.TestOperationInterface(t, first, second)
}

func TestTaskOrdering(t *testing.T) {
	seq, _ := newRecorded(termout.Never)
	events := []ordertest.Event{
		{Token: "fetch", HappensAfter: nil, Operation: seq.Begin()},
		{Token: "parse", HappensAfter: []string{"fetch"}, Operation: seq.Begin()},
		{Token: "check", HappensAfter: []string{"parse"}, Operation: seq.Begin()},
		{Token: "report", HappensAfter: []string{"check"}, Operation: seq.Begin()},
	}
	ordertest.Test(t, events)
	checkDrained(t, seq)
}

func TestReadyFollowsPredecessors(t *testing.T) {
	seq, _ := newRecorded(termout.Never)
	t0, t1, t2 := seq.Begin(), seq.Begin(), seq.Begin()

	ready := t2.Ready()
	t2.Complete()
	t0.Complete()
	if ordering.Ready(t2) {
		t.Fatal("task 2 is ready while task 1 is still running")
	}
	t1.Complete()
	select {
	case <-ready:
	default:
		t.Fatal("task 2 is not ready after tasks 0 and 1 completed")
	}
	checkDrained(t, seq)
}

func TestCompleteIsIdempotent(t *testing.T) {
	seq, rec := newRecorded(termout.Never)
	t0, t1 := seq.Begin(), seq.Begin()
	t1.WriteString("1")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t0.Complete()
		}()
	}
	wg.Wait()

	if got := seq.Finished(); got != 1 {
		t.Errorf("finished = %d after completing task 0 many times, want 1", got)
	}
	checkSegments(t, rec, "1")
	t1.Complete()
	checkDrained(t, seq)
}

func TestWriteAfterCompletePanics(t *testing.T) {
	seq, _ := newRecorded(termout.Never)
	task := seq.Begin()
	task.Complete()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("writing to a completed task did not panic")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "used after Complete") {
			t.Errorf("panic = %q, want a use after Complete", msg)
		}
	}()
	task.WriteString("too late")
}

func TestDoCompletesOnPanic(t *testing.T) {
	seq, rec := newRecorded(termout.Never)
	func() {
		defer func() { recover() }()
		seq.Do(func(task *sequencer.Task) {
			task.WriteString("before panic")
			panic("boom")
		})
	}()
	seq.Do(func(task *sequencer.Task) {
		task.WriteString("after")
	})
	checkSegments(t, rec, "before panic", "after")
	checkDrained(t, seq)
}

// panicWriter panics on its first write.
type panicWriter struct {
	recorder
	panicked bool
}

func (w *panicWriter) Write(p []byte) (int, error) {
	if !w.panicked {
		w.panicked = true
		panic("sink failure")
	}
	return w.recorder.Write(p)
}

// A panic raised by the sink while the state is held must not lock out other
// tasks.
func TestPanicInSinkReleasesState(t *testing.T) {
	var w panicWriter
	seq := sequencer.New(termout.NewStream(&w, termout.Never))
	t0, t1 := seq.Begin(), seq.Begin()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("sink panic was not propagated")
			}
		}()
		t0.WriteString("lost")
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		t1.WriteString("b")
		t0.WriteString("a")
		t0.Complete()
		t1.Complete()
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("sequencer state stayed locked after a panic")
	}
	if got := w.String(); got != "ab" {
		t.Errorf("output = %q, want %q", got, "ab")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSinkErrorsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	seq := sequencer.New(
		termout.NewStream(failingWriter{}, termout.Never),
		sequencer.WithErrorLog(log.New(&logs, "", 0)),
	)

	task := seq.Begin()
	n, err := task.WriteString("hello")
	if n != 5 || err != nil {
		t.Errorf("WriteString = %d, %v; want 5, nil", n, err)
	}
	task.Complete()

	if got := logs.String(); !strings.Contains(got, "disk full") {
		t.Errorf("error log = %q, want the sink error", got)
	}
}

func TestZeroSequencer(t *testing.T) {
	var seq sequencer.Sequencer
	seq.Do(func(task *sequencer.Task) {
		if task.Index() != 0 {
			t.Errorf("first task has index %d", task.Index())
		}
	})
	if got := seq.String(); got != "Sequencer(started=1, finished=1, pending=0)" {
		t.Errorf("String() = %q", got)
	}
}
