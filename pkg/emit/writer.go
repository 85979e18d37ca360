package emit

import (
	"strings"
)

const maxConsecutiveNewlines = 2

// Writer is an io.Writer that indents every non-empty line and collapses runs
// of blank lines into one. Newlines are held back until more text arrives, so
// output never ends in blank lines.
type Writer struct {
	buf             strings.Builder
	indent          int
	indentStr       string
	pendingNewlines int
	atLineStart     bool
}

// NewWriter creates a writer indenting with four spaces per level
func NewWriter() *Writer {
	return &Writer{indentStr: "    ", atLineStart: true}
}

func (w *Writer) Write(p []byte) (int, error) {
	w.WriteString(string(p))
	return len(p), nil
}

// WriteString writes s; it never fails
func (w *Writer) WriteString(s string) (int, error) {
	n := len(s)
	for len(s) > 0 {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 {
			w.writeText(s)
			break
		}
		w.writeText(s[:nl])
		w.pendingNewlines++
		w.atLineStart = true
		s = s[nl+1:]
	}
	return n, nil
}

func (w *Writer) writeText(s string) {
	if s == "" {
		return
	}
	if w.pendingNewlines > 0 {
		if w.buf.Len() > 0 {
			w.buf.WriteString(strings.Repeat("\n", min(w.pendingNewlines, maxConsecutiveNewlines)))
		}
		w.pendingNewlines = 0
	}
	if w.atLineStart {
		w.buf.WriteString(strings.Repeat(w.indentStr, w.indent))
		w.atLineStart = false
	}
	w.buf.WriteString(s)
}

// Indent increases the indentation of following lines
func (w *Writer) Indent() {
	w.indent++
}

// Dedent decreases the indentation of following lines
func (w *Writer) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// IndentLevel returns the current indentation level
func (w *Writer) IndentLevel() int {
	return w.indent
}

// Empty reports whether nothing but newlines has been written
func (w *Writer) Empty() bool {
	return w.buf.Len() == 0
}

// String returns the text written so far, ending in a single newline if any
// newline is pending
func (w *Writer) String() string {
	if w.pendingNewlines > 0 && w.buf.Len() > 0 {
		return w.buf.String() + "\n"
	}
	return w.buf.String()
}

// Take returns the written text and resets the writer, keeping its indentation
func (w *Writer) Take() string {
	s := w.String()
	w.buf.Reset()
	w.pendingNewlines = 0
	w.atLineStart = true
	return s
}
