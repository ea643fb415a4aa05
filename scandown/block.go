package scandown

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// Block represents one top-level piece of parsed Markdown block structure.
//
// Blocks carry their raw text; inline spans are only tokenized when a
// renderer asks for them (see Spans).
type Block struct {
	Type BlockType

	// Level is the heading level, 1 through 6; it is zero for other types.
	Level int

	// Text contains the raw block content:
	// - Heading: text after the marker
	// - Paragraph: the single source line
	// - Blockquote: lines with their "> " prefix stripped, joined by newline
	// - CodeBlock: lines between the fences, trailing space trimmed
	// - List: the raw marker lines joined by newline
	Text string

	// Info is any info string following an opening code fence.
	Info string

	// Start and End delimit the source lines covered by the block, as a
	// zero-based half open range.
	Start, End int
}

// BlockType is to determine the semantic meaning of a Block.
type BlockType int

// BlockType constants for the supported Markdown subset.
const (
	noBlock BlockType = iota // 0 value should never be seen by user
	Heading
	Paragraph
	Blockquote
	CodeBlock
	List
)

const (
	quoteMarker = "> "
	fenceMarker = "```"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s`)
	bulletPattern  = regexp.MustCompile(`^\s*[-*+]\s`)
	ordinalPattern = regexp.MustCompile(`^\s*\d+\.\s`)
	itemPattern    = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+`)
)

// Parse returns the block structure of a complete document.
//
// Every non-blank line of src is attributed to exactly one block; blank lines
// only separate blocks.
func Parse(src string) []Block {
	var blocks []Block
	sc := newScanner(strings.NewReader(src), len(src)+1)
	for sc.Scan() {
		blocks = append(blocks, sc.Block())
	}
	return blocks
}

// Scanner reads Markdown block structure from a stream, one Block per Scan.
//
// Example usage:
// 	sc := scandown.NewScanner(os.Stdin)
// 	for sc.Scan() {
// 		fmt.Printf("scanned %+v\n", sc.Block())
// 	}
// 	if err := sc.Err(); err != nil {
// 		log.Fatal(err)
// 	}
//
// It is not safe to use a Scanner from parallel goroutines.
type Scanner struct {
	lines *bufio.Scanner
	line  string // pending lookahead line
	have  bool   // whether line is pending
	n     int    // number of lines consumed so far
	block Block
	err   error
}

// MaxLineSize is the longest line a streaming Scanner accepts; longer lines
// stop the scan with bufio.ErrTooLong from Err. Parse has no such limit.
const MaxLineSize = 16 << 20

// NewScanner returns a Scanner reading lines from r.
func NewScanner(r io.Reader) *Scanner {
	return newScanner(r, MaxLineSize)
}

func newScanner(r io.Reader, maxLine int) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 4096), maxLine)
	return &Scanner{lines: lines}
}

// Block returns the block recognized by the last call to Scan.
func (sc *Scanner) Block() Block { return sc.block }

// Err returns any read error encountered by the underlying line scanner.
func (sc *Scanner) Err() error { return sc.err }

// peek returns the next unconsumed line, reading it if necessary.
func (sc *Scanner) peek() (string, bool) {
	if !sc.have {
		if !sc.lines.Scan() {
			sc.err = sc.lines.Err()
			return "", false
		}
		sc.line = strings.TrimSuffix(sc.lines.Text(), "\r")
		sc.have = true
	}
	return sc.line, true
}

// next consumes the pending line.
func (sc *Scanner) next() string {
	line, _ := sc.peek()
	sc.have = false
	sc.n++
	return line
}

// Scan advances to the next block, returning false at end of input or after
// a read error.
func (sc *Scanner) Scan() bool {
	for {
		line, ok := sc.peek()
		if !ok {
			return false
		}
		if strings.TrimSpace(line) == "" {
			sc.next()
			continue
		}
		start := sc.n
		sc.block = sc.scanBlock(sc.next())
		sc.block.Start = start
		sc.block.End = sc.n
		return true
	}
}

// scanBlock classifies the opening line of a block, consuming any
// continuation lines that belong to it.
func (sc *Scanner) scanBlock(line string) Block {
	if m := headingPattern.FindStringSubmatch(line); m != nil {
		level := len(m[1])
		return Block{Type: Heading, Level: level, Text: line[len(m[0]):]}
	}

	if strings.HasPrefix(line, quoteMarker) {
		var buf strings.Builder
		buf.WriteString(line[len(quoteMarker):])
		for {
			next, ok := sc.peek()
			if !ok || !strings.HasPrefix(next, quoteMarker) {
				break
			}
			sc.next()
			buf.WriteByte('\n')
			buf.WriteString(next[len(quoteMarker):])
		}
		return Block{Type: Blockquote, Text: buf.String()}
	}

	if strings.HasPrefix(line, fenceMarker) {
		var content []string
		for {
			next, ok := sc.peek()
			if !ok {
				break // unterminated fences run to end of input
			}
			sc.next()
			if strings.HasPrefix(next, fenceMarker) {
				break
			}
			content = append(content, next)
		}
		return Block{
			Type: CodeBlock,
			Text: strings.TrimRightFunc(strings.Join(content, "\n"), unicode.IsSpace),
			Info: strings.TrimSpace(line[len(fenceMarker):]),
		}
	}

	if isListLine(line) {
		lines := []string{line}
		for {
			next, ok := sc.peek()
			if !ok || !isListLine(next) {
				break
			}
			lines = append(lines, sc.next())
		}
		return Block{Type: List, Text: strings.Join(lines, "\n")}
	}

	// NOTE adjacent prose lines are not merged; each is its own paragraph.
	return Block{Type: Paragraph, Text: line}
}

func isListLine(line string) bool {
	return bulletPattern.MatchString(line) || ordinalPattern.MatchString(line)
}

// Lines returns the receiver's text split into lines.
func (b Block) Lines() []string {
	return strings.Split(b.Text, "\n")
}

// Items splits a List block into its items: one per non-empty line, with the
// bullet or ordinal marker removed. Returns nil for other block types.
func (b Block) Items() []string {
	if b.Type != List {
		return nil
	}
	var items []string
	for _, line := range b.Lines() {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if loc := itemPattern.FindStringIndex(line); loc != nil {
			line = line[loc[1]:]
		}
		items = append(items, line)
	}
	return items
}

// markdownSignals are the cheap hints that a document contains markup; a
// heading marker, a bold pair, inline code, or a bullet or numbered list.
var markdownSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,6}[ \t]`),
	regexp.MustCompile(`\*\*[^*\n]+\*\*`),
	regexp.MustCompile(`__[^_\n]+__`),
	regexp.MustCompile("`[^`\n]+`"),
	regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+\S`),
	regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+\S`),
}

// IsMarkdown reports whether src shows any markup signal: a heading marker,
// a bold pair, an inline code span, or a bullet or numbered list line.
//
// Documents without any signal should be presented as plain preformatted
// text rather than parsed.
func IsMarkdown(src string) bool {
	for _, re := range markdownSignals {
		if re.MatchString(src) {
			return true
		}
	}
	return false
}
