// Package render maps parsed Markdown blocks and course documents onto
// pluggable output backends.
//
// The shared scandown parser is the only place Markdown is interpreted;
// backends only ever see typed blocks and spans through the Backend
// interface.
package render

import (
	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/scandown"
)

// Backend is implemented by every render target. Calls arrive in document
// order. Any error returned aborts rendering.
type Backend interface {
	// Plain presents a whole document that shows no Markdown signal as
	// preformatted text.
	Plain(text string) error

	// Heading presents heading text at the given level, 1 through 6.
	Heading(level int, text string) error

	Paragraph(spans []scandown.Span) error

	// Blockquote receives one span sequence per quoted line.
	Blockquote(lines [][]scandown.Span) error

	// Code presents a code block's text, with its fence info string.
	Code(info, text string) error

	// List receives one span sequence per item. Source bullets and ordinals
	// have already been removed; backends draw a single uniform marker.
	List(items [][]scandown.Span) error

	// Image presents a chapter image. A nil image, or one whose Err is set,
	// must be presented as a placeholder rather than failing.
	Image(img *course.Image) error
}

// Breaker is implemented by backends that mark the boundary between
// chapters, e.g. by starting a new page.
type Breaker interface {
	Break() error
}

// Markdown renders a Markdown document onto b.
//
// Documents with no markup signal (see scandown.IsMarkdown) are passed to
// b.Plain whole, without being parsed.
func Markdown(b Backend, src string) error {
	if !scandown.IsMarkdown(src) {
		return b.Plain(src)
	}
	for _, block := range scandown.Parse(src) {
		if err := Block(b, block); err != nil {
			return err
		}
	}
	return nil
}

// Block dispatches a single parsed block onto b, tokenizing inline spans for
// the block types that carry them.
func Block(b Backend, block scandown.Block) error {
	switch block.Type {
	case scandown.Heading:
		return b.Heading(block.Level, block.Text)
	case scandown.Paragraph:
		return b.Paragraph(BlockSpans(block)[0])
	case scandown.Blockquote:
		return b.Blockquote(BlockSpans(block))
	case scandown.CodeBlock:
		return b.Code(block.Info, block.Text)
	case scandown.List:
		return b.List(BlockSpans(block))
	}
	return nil
}

// BlockSpans returns the inline spans Block hands a backend for block, one
// sequence per paragraph, quoted line, or list item. Headings and code
// blocks carry no spans and yield nil.
func BlockSpans(block scandown.Block) [][]scandown.Span {
	var lines []string
	switch block.Type {
	case scandown.Paragraph:
		lines = []string{block.Text}
	case scandown.Blockquote:
		lines = block.Lines()
	case scandown.List:
		lines = block.Items()
	default:
		return nil
	}
	spans := make([][]scandown.Span, len(lines))
	for i, line := range lines {
		spans[i] = scandown.Spans(line)
	}
	return spans
}

// Course renders a whole course onto b: its title and description, then
// every chapter depth first. Chapters are preceded by a Break, if b is a
// Breaker, except for the first one.
//
// Chapter titles are headings one level below the course title per depth,
// capped at level 6; a chapter's image precedes its content.
func Course(b Backend, c *course.Course, images course.Images) error {
	if c.Title != "" {
		if err := b.Heading(1, c.Title); err != nil {
			return err
		}
	}
	if c.Description != "" {
		if err := Markdown(b, c.Description); err != nil {
			return err
		}
	}

	first := true
	return c.Walk(func(ch *course.Chapter, depth int) error {
		if br, ok := b.(Breaker); ok && !first {
			if err := br.Break(); err != nil {
				return err
			}
		}
		first = false

		if ch.Title != "" {
			level := depth + 2
			if level > 6 {
				level = 6
			}
			if err := b.Heading(level, ch.Title); err != nil {
				return err
			}
		}
		if ch.Image != "" {
			if err := b.Image(images[ch]); err != nil {
				return err
			}
		}
		if ch.Content != "" {
			return Markdown(b, ch.Content)
		}
		return nil
	})
}

// headingScale holds relative text sizes for heading levels 1 through 6;
// values never increase with level.
var headingScale = [...]float64{2.0, 1.6, 1.35, 1.2, 1.1, 1.0}

// HeadingScale returns the size of a heading at level relative to body text.
// Levels outside 1 through 6 are clamped.
func HeadingScale(level int) float64 {
	if level < 1 {
		level = 1
	} else if level > len(headingScale) {
		level = len(headingScale)
	}
	return headingScale[level-1]
}
