package scandown

import "strings"

// Span is an inline run of formatted text within a block.
// Spans never nest.
type Span struct {
	Type SpanType
	Text string
}

// SpanType determines how a Span's text is presented.
type SpanType int

// SpanType constants; Normal is the zero value.
const (
	Normal SpanType = iota
	Bold
	Italic
	Code
)

// spanMarkers contains every byte that may open or close a formatted span.
const spanMarkers = "`*_"

// spanMatcher recognizes a delimited span opening at the head of some text.
// The content between delimiters must be non-empty, and may not contain the
// delimiter byte.
type spanMatcher struct {
	typ   SpanType
	delim string
}

// spanMatchers lists every formatted span in precedence order: the first one
// to match at a given position wins. Code is tried first, so its content is
// never scanned for other markup.
var spanMatchers = [...]spanMatcher{
	{Code, "`"},
	{Bold, "**"},
	{Bold, "__"},
	{Italic, "_"},
	{Italic, "*"},
}

// match returns the span content and total width, delimiters included, of
// any span opening at the head of s.
func (m spanMatcher) match(s string) (content string, width int, ok bool) {
	if !strings.HasPrefix(s, m.delim) {
		return "", 0, false
	}
	rest := s[len(m.delim):]
	n := strings.IndexByte(rest, m.delim[0])
	if n <= 0 || !strings.HasPrefix(rest[n:], m.delim) {
		return "", 0, false
	}
	return rest[:n], len(m.delim) + n + len(m.delim), true
}

// Spans tokenizes a line of block text into formatted spans.
//
// Any marker byte that does not open a complete span is kept as Normal text,
// whitespace-only Normal runs are dropped, and adjacent Normal runs are
// merged. The result is never empty: text with no visible content yields a
// single Normal span holding text verbatim.
func Spans(text string) []Span {
	var spans []Span

	normal := func(s string) {
		if n := len(spans) - 1; n >= 0 && spans[n].Type == Normal {
			spans[n].Text += s
		} else {
			spans = append(spans, Span{Normal, s})
		}
	}

	for rest := text; len(rest) > 0; {
		if i := strings.IndexAny(rest, spanMarkers); i != 0 {
			if i < 0 {
				i = len(rest)
			}
			normal(rest[:i])
			rest = rest[i:]
			continue
		}

		matched := false
		for _, m := range spanMatchers {
			if content, width, ok := m.match(rest); ok {
				spans = append(spans, Span{m.typ, content})
				rest = rest[width:]
				matched = true
				break
			}
		}
		if !matched {
			normal(rest[:1])
			rest = rest[1:]
		}
	}

	// drop whitespace-only runs between and around formatted spans
	kept := spans[:0]
	for _, span := range spans {
		if span.Type == Normal && strings.TrimSpace(span.Text) == "" {
			continue
		}
		kept = append(kept, span)
	}

	if len(kept) == 0 {
		return []Span{{Normal, text}}
	}
	return kept
}

// PlainText returns the concatenated text of spans, with all formatting
// markers removed.
func PlainText(spans []Span) string {
	var buf strings.Builder
	for _, span := range spans {
		buf.WriteString(span.Text)
	}
	return buf.String()
}
