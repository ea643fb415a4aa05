package scandown

import (
	"fmt"
	"io"
)

// Format writes a textual representation of the receiver, providing improved
// fmt.Printf display. Produces a verbose "Type lines=N-M text=..." form when
// formatted with `%+v`, a terse "Type" form otherwise.
func (b Block) Format(f fmt.State, _ rune) {
	switch b.Type {
	case Heading:
		fmt.Fprintf(f, "%v%v", b.Type, b.Level)
	case List:
		if ordinalPattern.MatchString(b.Text) {
			io.WriteString(f, "OrderedList")
		} else {
			io.WriteString(f, "List")
		}
	default:
		fmt.Fprint(f, b.Type)
	}
	if f.Flag('+') {
		fmt.Fprintf(f, " lines=%v-%v", b.Start+1, b.End)
		if b.Info != "" {
			fmt.Fprintf(f, " info=%q", b.Info)
		}
		fmt.Fprintf(f, " text=%q", b.Text)
	}
}

// Format writes a type string representing the receiver code.
func (t BlockType) Format(f fmt.State, _ rune) {
	switch t {
	case noBlock:
		io.WriteString(f, "None")
	case Heading:
		io.WriteString(f, "Heading")
	case Paragraph:
		io.WriteString(f, "Paragraph")
	case Blockquote:
		io.WriteString(f, "Blockquote")
	case CodeBlock:
		io.WriteString(f, "CodeBlock")
	case List:
		io.WriteString(f, "List")
	default:
		fmt.Fprintf(f, "InvalidBlock%v", int(t))
	}
}

// Format writes the span type name, followed by its quoted text when
// formatted with `%+v`.
func (s Span) Format(f fmt.State, _ rune) {
	fmt.Fprint(f, s.Type)
	if f.Flag('+') {
		fmt.Fprintf(f, "%q", s.Text)
	}
}

// Format writes a type string representing the receiver code.
func (t SpanType) Format(f fmt.State, _ rune) {
	switch t {
	case Normal:
		io.WriteString(f, "Normal")
	case Bold:
		io.WriteString(f, "Bold")
	case Italic:
		io.WriteString(f, "Italic")
	case Code:
		io.WriteString(f, "Code")
	default:
		fmt.Fprintf(f, "InvalidSpan%v", int(t))
	}
}
