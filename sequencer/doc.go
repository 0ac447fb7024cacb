// Package sequencer prevents the output of concurrent tasks from interleaving,
// while still letting every task make progress, including tasks other than the
// one currently printing.
//
// # Why This Package Exists
//
// Suppose an embarrassingly parallel workload where each piece of work writes
// to stdout or stderr. Parallelized naively, the output of different tasks
// interleaves and becomes unreadable. If each task locks the output stream for
// the whole of its work, nothing interleaves but the tasks no longer run in
// parallel. If each task writes into a local buffer that is printed at the end,
// all output is delayed and the program feels unresponsive.
//
// A [Sequencer] gives the best of these: tasks run in parallel, the output of
// task 0 appears before the output of task 1 and so on, never interleaved, and
// the output of exactly one task at a time is shown in real time. Output of the
// other tasks is deferred until every task before them has completed, and is
// then printed in one piece.
//
// # Usage
//
// Workers call [Sequencer.Begin] to obtain a [Task], write through it, and call
// [Task.Complete] when done:
//
//	seq := sequencer.Stderr()
//	var wg sync.WaitGroup
//	for range 10 {
//		wg.Add(1)
//		go func() {
//			defer wg.Done()
//			for {
//				task := seq.Begin()
//				if task.Index() >= len(inputs) {
//					task.Complete()
//					return
//				}
//				work(task, inputs[task.Index()])
//				task.Complete()
//			}
//		}()
//	}
//	wg.Wait()
//
// The index of a task may select the work it performs, as above, or workers may
// take their work from a shared queue and ignore the index entirely. In both
// cases output appears in the order tasks were begun.
//
// # Guarantees
//
//   - Output reaches the sink in ascending task order, and the bytes of two
//     tasks never interleave.
//   - No call blocks waiting for other tasks. Begin, every write and Complete
//     only hold a short internal lock.
//   - When a task completes, the buffered output of every already completed
//     task directly after it is printed before Complete returns, and the output
//     buffered so far by the next unfinished task is printed too, after which
//     that task writes to the sink directly.
//   - Errors writing to the sink are never reported to tasks; see
//     [WithErrorLog].
//
// A task that is never completed holds back the output of every task after it,
// forever. Always complete tasks, for instance with defer or [Sequencer.Do].
package sequencer
