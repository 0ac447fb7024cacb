// Package termout provides the styled output targets used by the sequencer
// package: terminal streams that understand bold and foreground-color
// directives, and in-memory buffers that capture those directives exactly as a
// stream would have received them.
//
// # Writers
//
// A [Writer] is an [io.Writer] that can also change the style of the text that
// follows. Two implementations are provided:
//
//   - [Stream] writes to an underlying io.Writer (usually os.Stdout or
//     os.Stderr) as soon as it is written to.
//   - [Buffer] accumulates bytes and style directives in memory so they can be
//     emitted later, as a single block, with [Stream.Print].
//
// A Buffer obtained from [Stream.NewBuffer] shares the color capability of its
// stream. When color is disabled, style directives are dropped on the floor by
// both the stream and its buffers, so the same task code produces plain text
// when piped into a file and colored text on a terminal.
//
// # Color detection
//
// [Stdout] and [Stderr] take a [ColorChoice]. With [Auto], color is enabled
// only when the file is a terminal, NO_COLOR is unset and TERM is neither
// unset nor "dumb". [Always] and [Never] override the detection.
//
//	out := termout.Stderr(termout.Auto)
//	out.SetStyle(termout.Style{Bold: true, Fg: termout.Red})
//	fmt.Fprint(out, "ERROR")
//	out.ResetStyle()
//
// Streams and buffers are not safe for concurrent use. Callers that share a
// stream between goroutines must serialize access themselves; the sequencer
// package does exactly that.
package termout
