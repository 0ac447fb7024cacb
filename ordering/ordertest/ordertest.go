// Package ordertest provides utilities for testing implementations of
// ordering.Operation, such as the tasks handed out by a sequencer.Sequencer.
//
// # Overview
//
// The primary function [Test] executes a series of [Event] values concurrently
// and verifies that all ordering constraints are satisfied.
// [TestOperationInterface] checks the channel contract of two consecutive
// operations.
//
// # Example Usage
//
// Create a test case with dependencies:
//
//	seq := sequencer.New(sink)
//	events := []ordertest.Event{
//		{
//			Token:        "first",
//			HappensAfter: nil,
//			Operation:    seq.Begin(),
//		},
//		{
//			Token:        "second",
//			HappensAfter: []string{"first"},
//			Operation:    seq.Begin(),
//		},
//	}
//	ordertest.Test(t, events)
//
// The test will verify that "second" only executes after "first" has
// completed, even though the goroutines are spawned in reverse order.
package ordertest

import (
	"slices"
	"sync"
	"testing"

	"github.com/notorious-go/outseq/ordering"
)

// Test executes an event-loop consisting of the predefined events concurrently
// and verifies that all dependency constraints are satisfied.
//
// The function:
//
//   - Spawns a goroutine for each event in reverse order (to stress the ordering).
//   - Each goroutine waits for its Operation to be ready before proceeding.
//   - Records the actual execution order of events, which is the order in which
//     the spawned goroutines are running.
//   - Verifies that the declared order was satisfied using Event.Check.
//
// Operations are completed after their token is recorded, so the recorded
// order is the order in which the operations became ready.
func Test(t *testing.T, events []Event) {
	t.Helper()

	var (
		mu     sync.Mutex
		tokens []string
	)

	var wg sync.WaitGroup
	for _, event := range slices.Backward(events) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer event.Operation.Complete()

			select {
			case <-event.Operation.Ready():
				// The operation is ready, meaning all dependencies are satisfied.
				t.Logf("Processing event %s", event.Token)
			case <-t.Context().Done():
				t.Errorf("test interrupted before event %s could be processed", event.Token)
			}

			// Collect the token for verification.
			mu.Lock()
			tokens = append(tokens, event.Token)
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Verify that all tokens were processed in the expected order.
	for _, event := range events {
		event.Check(t, tokens)
	}
}

// Event represents a step in a concurrent test of the ordering relationships
// between operations.
//
// Each event has a token that identifies it, a list of dependencies that
// represent other events that must complete before this event can be processed,
// and an Operation that defines the "happens-after" relationship for this event.
//
// Operations are created before the processing begins in separate goroutines,
// which is why test cases can prepare the "happens-after" relationships without
// executing the operations. Test executes them.
type Event struct {
	// Token is a unique identifier for this event, used to track its execution in
	// the processing order and verify dependency constraints.
	Token string

	// HappensAfter lists the tokens of events that must complete before this event
	// should've been processed. The test framework verifies that all dependencies
	// appear before this event in the actual execution order.
	HappensAfter []string

	// Operation is the operation under test. It provides the synchronization
	// mechanism to enforce the declared dependencies.
	//
	// The test framework waits on the [ordering.Operation.Ready] channel before
	// processing the event, ensuring that declared dependencies are respected.
	//
	// The test framework calls [ordering.Operation.Complete] after processing each
	// event to maintain the correctness of ordered chains and prevent deadlocks.
	Operation ordering.Operation
}

// Check verifies that all of this event's dependencies were processed before
// this event in the given execution order.
//
// The tokens parameter should contain the ordered list of event tokens as they
// were actually processed.
//
// This method will verify that:
//   - This event's token appears in the recorded list of tokens.
//   - All dependencies listed in HappensAfter appear before Token in the list.
//
// Any violations of the dependency constraints will be reported as test errors.
func (e Event) Check(t *testing.T, tokens []string) {
	t.Helper()

	// Find the position of this event in the list of tokens.
	eventIndex, ok := e.index(tokens)
	if !ok {
		t.Errorf("event %v was not processed", e.Token)
		return
	}

	// Check that all dependencies appear before this event.
	for _, dep := range e.HappensAfter {
		found := false
		for i := 0; i < eventIndex; i++ {
			if tokens[i] == dep {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("event %v: dependency %v was not processed before it", e.Token, dep)
		}
	}
}

// Finds the index of this event's token in the given slice of tokens.
func (e Event) index(tokens []string) (index int, found bool) {
	for i, token := range tokens {
		if token == e.Token {
			return i, true
		}
	}
	return 0, false
}

// TestOperationInterface verifies the channel contract of two operations, where
// second directly follows first:
//
//   - first is ready and second is not, and neither is completed.
//   - Completing first closes its Completed channel and makes second ready.
//   - Completing an operation twice has no further effect.
//   - Completing second closes its Completed channel.
//
// Both operations are completed when TestOperationInterface returns.
func TestOperationInterface(t *testing.T, first, second ordering.Operation) {
	t.Helper()
	defer first.Complete()
	defer second.Complete()

	if !ordering.Ready(first) {
		t.Errorf("first operation is not ready before anything completed")
	}
	if ordering.Ready(second) {
		t.Errorf("second operation is ready before the first completed")
	}
	if ordering.Completed(first) || ordering.Completed(second) {
		t.Fatalf("operations are completed before Complete was called")
	}

	first.Complete()
	if !ordering.Completed(first) {
		t.Errorf("first operation is not completed after Complete")
	}
	select {
	case <-second.Ready():
	case <-t.Context().Done():
		t.Fatalf("second operation did not become ready after the first completed")
	}
	if ordering.Completed(second) {
		t.Errorf("second operation completed together with the first")
	}

	// A second call must neither panic nor disturb the following operation.
	first.Complete()
	if !ordering.Ready(second) {
		t.Errorf("second operation is no longer ready")
	}

	second.Complete()
	if !ordering.Completed(second) {
		t.Errorf("second operation is not completed after Complete")
	}
}
