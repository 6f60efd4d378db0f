// Package narration provides the output sinks that receive encounter narration.
package narration

import (
	"bufio"
	"io"
	"sync"
)

// WriterSink forwards each narration line to an io.Writer, one line per call.
//
// Write errors are dropped: narration is fire-and-forget and must never
// interrupt a turn.
type WriterSink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	palette func(string) string
}

// NewWriterSink returns a plain line-oriented sink over w.
//
// Precondition: w must be non-nil.
func NewWriterSink(w io.Writer) *WriterSink {
	if w == nil {
		panic("narration.NewWriterSink: writer must not be nil")
	}
	return &WriterSink{w: bufio.NewWriter(w)}
}

// NewColorSink returns a sink over w that passes each line through palette
// before writing. A nil palette defaults to Palette.
func NewColorSink(w io.Writer, palette func(string) string) *WriterSink {
	s := NewWriterSink(w)
	if palette == nil {
		palette = Palette
	}
	s.palette = palette
	return s
}

// Talk writes text followed by a newline and flushes.
func (s *WriterSink) Talk(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.palette != nil {
		text = s.palette(text)
	}
	_, _ = s.w.WriteString(text)
	_ = s.w.WriteByte('\n')
	_ = s.w.Flush()
}

// Silent discards every line. It is the sink used for what-if evaluation.
type Silent struct{}

// Talk does nothing.
func (Silent) Talk(string) {}

// Transcript records every line it receives, in order.
type Transcript struct {
	mu    sync.Mutex
	lines []string
}

// Talk appends text to the transcript.
func (t *Transcript) Talk(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, text)
}

// Lines returns a copy of the recorded lines.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]string, len(t.lines))
	copy(cp, t.lines)
	return cp
}

// Len returns the number of recorded lines.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lines)
}
