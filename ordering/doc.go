// Package ordering defines the Operation interface shared by the ordered
// primitives of this module, along with small helpers for working with it.
//
// An Operation is one step in a sequence of steps that must be observed in a
// definite order. The sequencer package hands out one Operation per task: a
// task's Operation becomes ready when every task before it has finished, and it
// is completed when the task says so.
//
// # Operation Interface
//
// The [Operation] interface provides three methods:
//
//   - Ready(): Returns a channel that closes when every preceding operation has
//     finished
//   - Complete(): Marks the operation as finished, allowing the following
//     operation to become ready
//   - Completed(): Returns a channel that closes when Complete() is called
//
// # Usage Patterns
//
// Operations never require their owner to wait for readiness. A sequencer task
// may run, write output and complete long before it becomes ready; its output
// is simply held back until then. Waiting on Ready is useful when the owner
// wants to know that its output is now being shown live:
//
//	task := seq.Begin()
//	defer task.Complete()
//	select {
//	case <-task.Ready():
//	    // everything written from now on appears immediately
//	case <-ctx.Done():
//	    return ctx.Err()
//	}
//
// The Await helper covers the common case of a worker that wants to run
// strictly after its predecessors, for example to perform a side effect in
// order:
//
//	done := ordering.Await(op)
//	defer done()
//	// ... perform operation ...
//
// Every operation must be completed, whether it succeeded, failed or was
// abandoned. An operation that is never completed holds back every operation
// after it forever.
package ordering
