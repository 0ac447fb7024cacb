package ordering

// Operation represents a unit of work in an ordered sequence. It provides
// synchronization points for observing when every preceding operation has
// finished and for signalling that this one has.
//
// The Operation interface provides a channel-based API that enables flexible
// synchronization patterns:
//   - Block until ready using <-op.Ready()
//   - Select with multiple channels: select { case <-op.Ready(): ... case <-ctx.Done(): ... }
//   - Check readiness without blocking: select { case <-op.Ready(): ... default: ... }
//   - Monitor completion: <-op.Completed()
//
// Operations are safe for concurrent use. While typically a single goroutine
// manages an operation's lifecycle, the channels can be safely accessed from
// multiple goroutines when coordination is needed.
type Operation interface {
	// Ready returns a channel that closes when all preceding operations have
	// finished, signalling that this operation is now at the front of the
	// sequence.
	//
	// The channel is closed exactly once and remains closed thereafter. Multiple
	// goroutines may safely wait on this channel.
	//
	// For the first operation in a sequence, this channel is closed immediately.
	Ready() <-chan struct{}

	// Completed returns a channel that closes when this operation has been marked
	// as complete via the Complete method.
	//
	// The channel is closed when Complete is called for the first time and
	// remains closed thereafter.
	Completed() <-chan struct{}

	// Complete marks this operation as finished.
	//
	// This method MUST be called at least once when the operation finishes, whether
	// it succeeds, fails, or is cancelled. Failing to call Complete will hold back
	// every following operation indefinitely.
	//
	// Users are encouraged to use defer op.Complete() immediately after starting an
	// operation to ensure completion even in case of errors or early returns.
	//
	// Complete is safe to call multiple times - subsequent calls are no-ops.
	Complete()
}

// Await blocks until op is ready and returns its Complete method, which the
// caller should defer.
//
// Await does not support cancellation. Select on op.Ready() directly when the
// wait must be abandoned, and still call Complete.
func Await(op Operation) (done func()) {
	<-op.Ready()
	return op.Complete
}

// Ready reports whether op is ready, without blocking.
func Ready(op Operation) bool {
	return closed(op.Ready())
}

// Completed reports whether op has been completed, without blocking.
func Completed(op Operation) bool {
	return closed(op.Completed())
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
