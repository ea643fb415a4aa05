package pdf

import (
	"unicode"
	"unicode/utf8"
)

// run is a stretch of text in one face.
type run struct {
	text  string
	style Style
	size  float64
	code  bool // inline code, drawn highlighted
}

func (r run) sameFace(other run) bool {
	return r.style == other.style && r.size == other.size && r.code == other.code
}

// placed is a run positioned on a line, x and w relative to the line start.
type placed struct {
	run
	x, w float64
}

// wrapRuns greedily breaks runs into lines no wider than width, collapsing
// whitespace to single spaces. Words wider than a whole line are split
// between runes. Adjacent pieces in the same face are merged.
func wrapRuns(runs []run, width float64, m Measurer) [][]placed {
	var (
		lines [][]placed
		cur   []placed
		x     float64
		gap   *placed
	)
	flush := func() {
		lines = append(lines, cur)
		cur, x, gap = nil, 0, nil
	}
	add := func(p placed) {
		if n := len(cur); n > 0 {
			last := &cur[n-1]
			if last.sameFace(p.run) && last.x+last.w == p.x {
				last.text += p.text
				last.w += p.w
				return
			}
		}
		cur = append(cur, p)
	}

	for _, r := range runs {
		for _, word := range splitWords(r.text) {
			piece := r
			if first, _ := utf8.DecodeRuneInString(word); unicode.IsSpace(first) {
				if len(cur) > 0 {
					piece.text = " "
					gap = &placed{run: piece, w: m.Width(" ", r.style, r.size)}
				}
				continue
			}

			piece.text = word
			w := m.Width(word, r.style, r.size)
			var gw float64
			if gap != nil {
				gw = gap.w
			}
			if len(cur) > 0 && x+gw+w > width {
				flush()
			}
			if w > width {
				chunks := hardWrap(m, word, r.style, r.size, width)
				for _, chunk := range chunks[:len(chunks)-1] {
					p := piece
					p.text = chunk
					cur = append(cur, placed{run: p, w: m.Width(chunk, r.style, r.size)})
					flush()
				}
				piece.text = chunks[len(chunks)-1]
				w = m.Width(piece.text, r.style, r.size)
			}

			if gap != nil && len(cur) > 0 {
				gap.x = x
				add(*gap)
				x += gap.w
			}
			gap = nil
			add(placed{run: piece, x: x, w: w})
			x += w
		}
	}
	if len(cur) > 0 {
		flush()
	}
	return lines
}

// splitWords splits s into alternating runs of space and non-space.
func splitWords(s string) []string {
	var words []string
	start, inSpace := 0, false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i > start && space != inSpace {
			words = append(words, s[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}

// hardWrap splits text between runes into chunks no wider than width, each
// holding at least one rune. Empty text yields one empty chunk.
func hardWrap(m Measurer, text string, style Style, size, width float64) []string {
	var (
		chunks []string
		start  int
		w      float64
	)
	for i, r := range text {
		rw := m.Width(string(r), style, size)
		if i > start && w+rw > width {
			chunks = append(chunks, text[start:i])
			start, w = i, 0
		}
		w += rw
	}
	return append(chunks, text[start:])
}

func (l *Layout) hardWrap(text string, style Style, size, width float64) []string {
	return hardWrap(l.measure, text, style, size, width)
}
