// Package socutil holds small output helpers shared by coursemark commands
// and backends.
package socutil

import (
	"bytes"
	"io"
)

// lineBuffer holds output until whole lines can be written to its
// destination.
type lineBuffer struct {
	bytes.Buffer
	to io.Writer
}

// flushLines writes everything through the last buffered newline.
func (lb *lineBuffer) flushLines() error {
	b := lb.Bytes()
	i := bytes.LastIndexByte(b, '\n')
	if i < 0 {
		return nil
	}
	n, err := lb.to.Write(b[:i+1])
	lb.Next(n)
	return err
}

// flush writes everything buffered, including a partial last line.
func (lb *lineBuffer) flush() error {
	_, err := lb.WriteTo(lb.to)
	return err
}

// ErrWriter wraps a writer, retaining its first error and refusing any
// further writes after it.
type ErrWriter struct {
	io.Writer
	Err error
}

// Write passes through to Writer while Err is nil.
func (ew *ErrWriter) Write(p []byte) (n int, err error) {
	if ew.Err == nil {
		n, ew.Err = ew.Writer.Write(p)
	}
	return n, ew.Err
}

// Prefixer indents every line written through it by Prefix, passing only
// whole lines on. Close writes any partial final line.
type Prefixer struct {
	Prefix string
	out    lineBuffer
	midway bool // last byte written was not a newline
}

// PrefixWriter returns a Prefixer writing to w.
func PrefixWriter(prefix string, w io.Writer) *Prefixer {
	return &Prefixer{Prefix: prefix, out: lineBuffer{to: w}}
}

// Close flushes buffered output.
func (p *Prefixer) Close() error { return p.out.flush() }

func (p *Prefixer) Write(b []byte) (int, error) {
	n := len(b)
	for len(b) > 0 {
		if !p.midway {
			p.out.WriteString(p.Prefix)
		}
		i := bytes.IndexByte(b, '\n') + 1
		if i == 0 {
			i = len(b)
		}
		p.out.Write(b[:i])
		p.midway = b[i-1] != '\n'
		b = b[i:]
	}
	return n, p.out.flushLines()
}

// WriteLines calls next with a buffered writer until it returns false or a
// write to out fails, passing on whole lines after every call. Any partial
// last line is written at the end.
func WriteLines(out io.Writer, next func(w io.Writer) bool) error {
	ew, ok := out.(*ErrWriter)
	if !ok {
		ew = &ErrWriter{Writer: out}
	}
	buf := lineBuffer{to: ew}
	for ew.Err == nil && next(&buf) {
		buf.flushLines()
	}
	buf.flush()
	return ew.Err
}
