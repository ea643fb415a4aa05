// Package term renders Markdown as styled terminal text using lipgloss.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/internal/socutil"
	"github.com/jcorbin/coursemark/render"
	"github.com/jcorbin/coursemark/scandown"
)

// DefaultWidth is the wrap width used when none is given.
const DefaultWidth = 80

// Marker is the glyph drawn before every list item.
const Marker = "•"

var (
	accent = lipgloss.AdaptiveColor{Light: "#1f4e9a", Dark: "#7aa2f7"}
	muted  = lipgloss.AdaptiveColor{Light: "#6b6b6b", Dark: "#8a8a8a"}
	codeFG = lipgloss.AdaptiveColor{Light: "#a03a1c", Dark: "#e0af68"}
	codeBG = lipgloss.AdaptiveColor{Light: "#eeeeee", Dark: "#2a2a2a"}
)

type styles struct {
	headings [6]lipgloss.Style
	bold     lipgloss.Style
	italic   lipgloss.Style
	code     lipgloss.Style
	block    lipgloss.Style
	quote    lipgloss.Style
	muted    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	bold := r.NewStyle().Bold(true)
	return styles{
		headings: headingStyles(bold),
		bold:   bold,
		italic: r.NewStyle().Italic(true),
		code:   r.NewStyle().Foreground(codeFG).Background(codeBG),
		block:  r.NewStyle().Background(codeBG).Padding(0, 1),
		quote: r.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(muted).
			Foreground(muted).
			PaddingLeft(1),
		muted: r.NewStyle().Foreground(muted).Italic(true),
	}
}

// Headings at or above these sizes relative to body text are underlined or
// drawn in the accent color.
const (
	underlineScale = 2.0
	accentScale    = 1.5
)

// headingStyles emphasizes each heading level by its render.HeadingScale,
// since a terminal cannot change the text size.
func headingStyles(bold lipgloss.Style) (hs [6]lipgloss.Style) {
	for i := range hs {
		scale := render.HeadingScale(i + 1)
		hs[i] = bold.Copy().Underline(scale >= underlineScale)
		if scale >= accentScale {
			hs[i] = hs[i].Foreground(accent)
		}
	}
	return hs
}

// Renderer is a render.Backend writing styled text to a terminal.
// Blocks are separated by blank lines; prose wraps at the configured width.
type Renderer struct {
	out    *socutil.ErrWriter
	width  int
	styles styles
	blocks int
}

var (
	_ render.Backend = (*Renderer)(nil)
	_ render.Breaker = (*Renderer)(nil)
)

// New returns a Renderer writing to w, wrapping text at width columns
// (DefaultWidth if width < 1). The color profile is detected from w.
func New(w io.Writer, width int) *Renderer {
	if width < 1 {
		width = DefaultWidth
	}
	return &Renderer{
		out:    &socutil.ErrWriter{Writer: w},
		width:  width,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

// Err returns the first write error encountered, if any.
func (r *Renderer) Err() error { return r.out.Err }

// writeBlock writes a rendered block, trimming any trailing padding, and
// separating it from the prior one.
func (r *Renderer) writeBlock(s string) error {
	if r.blocks > 0 {
		io.WriteString(r.out, "\n")
	}
	r.blocks++
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	io.WriteString(r.out, strings.Join(lines, "\n"))
	io.WriteString(r.out, "\n")
	return r.out.Err
}

func (r *Renderer) spans(spans []scandown.Span) string {
	var buf strings.Builder
	for _, span := range spans {
		switch span.Type {
		case scandown.Bold:
			buf.WriteString(r.styles.bold.Render(span.Text))
		case scandown.Italic:
			buf.WriteString(r.styles.italic.Render(span.Text))
		case scandown.Code:
			buf.WriteString(r.styles.code.Render(span.Text))
		default:
			buf.WriteString(span.Text)
		}
	}
	return buf.String()
}

func (r *Renderer) wrap(s string, width int) string {
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// Plain writes text verbatim.
func (r *Renderer) Plain(text string) error {
	return r.writeBlock(text)
}

// Heading writes bold heading text, further emphasized at the larger
// levels.
func (r *Renderer) Heading(level int, text string) error {
	if level < 1 {
		level = 1
	} else if level > len(r.styles.headings) {
		level = len(r.styles.headings)
	}
	return r.writeBlock(r.styles.headings[level-1].Render(text))
}

// Paragraph writes wrapped prose.
func (r *Renderer) Paragraph(spans []scandown.Span) error {
	return r.writeBlock(r.wrap(r.spans(spans), r.width))
}

// Blockquote writes quoted lines behind a left border.
func (r *Renderer) Blockquote(lines [][]scandown.Span) error {
	parts := make([]string, len(lines))
	for i, spans := range lines {
		parts[i] = r.spans(spans)
	}
	body := r.wrap(strings.Join(parts, "\n"), r.width-2)
	return r.writeBlock(r.styles.quote.Render(body))
}

// Code writes unwrapped code on a shaded background.
func (r *Renderer) Code(_, text string) error {
	text = strings.ReplaceAll(text, "\t", "    ")
	return r.writeBlock(r.styles.block.Render(text))
}

// List writes one marked item per line, with wrapped continuation lines
// hanging under the item text.
func (r *Renderer) List(items [][]scandown.Span) error {
	lead := Marker + " "
	indent := lipgloss.Width(lead)
	rendered := make([]string, len(items))
	for i, spans := range items {
		rendered[i] = lipgloss.JoinHorizontal(lipgloss.Top,
			lead, r.wrap(r.spans(spans), r.width-indent))
	}
	return r.writeBlock(strings.Join(rendered, "\n"))
}

// Image writes a short description of the image, since terminals cannot be
// assumed to display one.
func (r *Renderer) Image(img *course.Image) error {
	if !img.Usable() {
		return r.writeBlock(r.styles.muted.Render("[image unavailable]"))
	}
	return r.writeBlock(r.styles.muted.Render(
		fmt.Sprintf("[image %vx%v %v]", img.Width, img.Height, img.Format)))
}

// Break writes a horizontal rule.
func (r *Renderer) Break() error {
	return r.writeBlock(r.styles.muted.Render(strings.Repeat("─", r.width)))
}
