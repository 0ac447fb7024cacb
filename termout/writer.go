package termout

import (
	"bytes"
	"io"
)

// Writer is an io.Writer that understands style directives.
type Writer interface {
	io.Writer

	// SetStyle changes the style of everything written afterwards. Writers
	// without color support accept and ignore the directive.
	SetStyle(Style) error

	// ResetStyle returns to plain text.
	ResetStyle() error

	// SupportsColor reports whether style directives have any effect.
	SupportsColor() bool
}

// Buffer is an in-memory Writer. It records written bytes and, if it supports
// color, the escape sequences of style directives, in the order they were
// issued.
//
// The zero Buffer is ready to use and does not support color.
type Buffer struct {
	buf   bytes.Buffer
	color bool
}

// NewBuffer returns an empty Buffer. Style directives are recorded only when
// color is true.
func NewBuffer(color bool) *Buffer {
	return &Buffer{color: color}
}

func (b *Buffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *Buffer) WriteString(s string) (int, error) {
	return b.buf.WriteString(s)
}

func (b *Buffer) SetStyle(s Style) error {
	if b.color {
		b.buf.WriteString(s.Sequence())
	}
	return nil
}

func (b *Buffer) ResetStyle() error {
	if b.color {
		b.buf.WriteString(resetSequence)
	}
	return nil
}

func (b *Buffer) SupportsColor() bool {
	return b.color
}

// Bytes returns the buffered content. The slice is only valid until the next
// write or Clear.
func (b *Buffer) Bytes() []byte {
	return b.buf.Bytes()
}

// Len returns the number of buffered bytes, escape sequences included.
func (b *Buffer) Len() int {
	return b.buf.Len()
}

// Clear discards the buffered content but keeps the allocated storage.
func (b *Buffer) Clear() {
	b.buf.Reset()
}

// Stream is a Writer over an underlying io.Writer. Bytes and style directives
// are passed through immediately.
type Stream struct {
	w     io.Writer
	color bool
}

// NewStream returns a Stream writing to w. The choice decides whether style
// directives are emitted; see ColorChoice.
func NewStream(w io.Writer, choice ColorChoice) *Stream {
	return &Stream{w: w, color: choice.enabled(w)}
}

func (s *Stream) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *Stream) SetStyle(st Style) error {
	if !s.color {
		return nil
	}
	_, err := io.WriteString(s.w, st.Sequence())
	return err
}

func (s *Stream) ResetStyle() error {
	if !s.color {
		return nil
	}
	_, err := io.WriteString(s.w, resetSequence)
	return err
}

func (s *Stream) SupportsColor() bool {
	return s.color
}

// NewBuffer returns an empty Buffer with the same color capability as s, so
// that printing it later renders exactly as writing to s directly would have.
func (s *Stream) NewBuffer() *Buffer {
	return NewBuffer(s.color)
}

// Print emits the content of b in a single Write call to the underlying writer.
// An empty buffer writes nothing. Print does not modify b.
func (s *Stream) Print(b *Buffer) error {
	if b.Len() == 0 {
		return nil
	}
	_, err := s.w.Write(b.Bytes())
	return err
}
