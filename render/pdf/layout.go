package pdf

import (
	"strings"
	"unicode/utf8"

	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/render"
	"github.com/jcorbin/coursemark/scandown"
)

// Style selects one of the document fonts.
type Style int

// Style constants; Mono is used for code.
const (
	Regular Style = iota
	Bold
	Italic
	Mono
)

// Measurer measures the advance width of text in points.
type Measurer interface {
	Width(text string, style Style, size float64) float64
}

// Monospace is a Measurer treating every rune as a fixed fraction of the font
// size wide, independent of any font metrics.
type Monospace struct{}

// Width returns the rune count times half the size, or 0.6 times the size
// for Mono text.
func (Monospace) Width(text string, style Style, size float64) float64 {
	advance := 0.5
	if style == Mono {
		advance = 0.6
	}
	return float64(utf8.RuneCountInString(text)) * advance * size
}

// OpKind is the kind of a drawing instruction.
type OpKind int

// OpKind constants.
const (
	TextOp     OpKind = iota // Text at baseline X,Y
	RectOp                   // filled rectangle X,Y,W,H
	ImageOp                  // Image scaled into X,Y,W,H
	BookmarkOp               // outline entry Text at Level, pointing to Y
)

// Op is an absolute position drawing instruction. Coordinates are in points
// from the top left page corner.
type Op struct {
	Kind       OpKind
	X, Y, W, H float64
	Text       string
	Style      Style
	Size       float64
	Color      RGB
	Image      *course.Image
	Level      int
}

// Page holds the drawing instructions of one page, in painting order.
type Page struct {
	Ops []Op
}

// Glyphs and indents used by the layout.
const (
	Marker           = "•"
	ImageUnavailable = "[Image unavailable]"

	listIndent  = 18 // item text indent
	markerInset = 6  // marker indent
	quoteIndent = 14 // quoted text indent
	quoteBar    = 3  // quote bar width
	codePadding = 6  // code text inset within its background
	pxToPoints  = 0.75
	ascent      = 0.8 // baseline offset as a fraction of font size
)

// Layout is a render.Backend that positions blocks on pages.
//
// Before placing anything of height h, Layout starts a new page if h would
// extend past the bottom margin and the current page already has content;
// nothing placed is ever taller than the content area, so nothing is clipped.
type Layout struct {
	cfg     Config
	colors  palette
	measure Measurer

	pageW, pageH float64
	pages        []Page
	y            float64 // top of the next placed box
	content      float64 // total height of placed boxes
	lastLevel    int     // last bookmark level, or -1
}

var (
	_ render.Backend = (*Layout)(nil)
	_ render.Breaker = (*Layout)(nil)
)

// NewLayout returns an empty layout, or an error if cfg is invalid.
func NewLayout(cfg Config, m Measurer) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	colors, err := cfg.palette()
	if err != nil {
		return nil, err
	}
	w, h, err := cfg.PageDims()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = Monospace{}
	}
	return &Layout{
		cfg:       cfg,
		colors:    colors,
		measure:   m,
		pageW:     w,
		pageH:     h,
		lastLevel: -1,
	}, nil
}

// Pages returns the laid out pages; an empty layout has none.
func (l *Layout) Pages() []Page { return l.pages }

// ContentHeight returns the summed height of all placed lines and boxes,
// excluding inter-block spacing.
func (l *Layout) ContentHeight() float64 { return l.content }

// PageContentHeight returns the height available for content on each page.
func (l *Layout) PageContentHeight() float64 { return l.bottom() - l.top() }

func (l *Layout) top() float64    { return l.cfg.Margin }
func (l *Layout) bottom() float64 { return l.pageH - l.cfg.Margin }
func (l *Layout) left() float64   { return l.cfg.Margin }
func (l *Layout) width() float64  { return l.pageW - 2*l.cfg.Margin }

func (l *Layout) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = l.top()
}

func (l *Layout) emit(op Op) {
	page := &l.pages[len(l.pages)-1]
	page.Ops = append(page.Ops, op)
}

// atTop reports whether nothing has been placed on the current page.
func (l *Layout) atTop() bool {
	return len(l.pages) == 0 || l.y <= l.top()
}

// reserve claims h points of vertical space, breaking the page first if h
// would overflow it. Returns the top of the claimed space.
func (l *Layout) reserve(h float64) float64 {
	if len(l.pages) == 0 {
		l.newPage()
	}
	if l.y+h > l.bottom() && !l.atTop() {
		l.newPage()
	}
	y := l.y
	l.y += h
	l.content += h
	return y
}

// space separates blocks; it is dropped at the top of a page.
func (l *Layout) space(h float64) {
	if !l.atTop() {
		l.y += h
	}
}

// line places one wrapped line of runs at x, drawing code span highlights
// behind their text. The decorate callback, if any, may draw more behind
// the line given its top and height.
func (l *Layout) line(runs []placed, x, size float64, color RGB, decorate func(y, h float64)) {
	for _, r := range runs {
		if r.size > size {
			size = r.size
		}
	}
	h := size * l.cfg.LineHeight
	y := l.reserve(h)
	if decorate != nil {
		decorate(y, h)
	}
	inset := (h - size) / 2
	baseline := y + inset + size*ascent
	for _, r := range runs {
		if r.code {
			l.emit(Op{Kind: RectOp,
				X: x + r.x - 1, Y: y + inset - 1, W: r.w + 2, H: size + 2,
				Color: l.colors.codeBG})
		}
	}
	for _, r := range runs {
		if r.text == "" || strings.TrimSpace(r.text) == "" {
			continue
		}
		l.emit(Op{Kind: TextOp,
			X: x + r.x, Y: baseline,
			Text: r.text, Style: r.style, Size: r.size, Color: color})
	}
}

// prose converts spans to runs at size, with plain text in base style.
func (l *Layout) prose(spans []scandown.Span, base Style, size float64) []run {
	runs := make([]run, 0, len(spans))
	for _, span := range spans {
		r := run{text: span.Text, style: base, size: size}
		switch span.Type {
		case scandown.Bold:
			r.style = Bold
		case scandown.Italic:
			r.style = Italic
		case scandown.Code:
			r.style = Mono
			r.size = l.cfg.CodeFontSize
			r.code = true
		}
		runs = append(runs, r)
	}
	return runs
}

// Plain lays out text as preformatted lines, hard wrapping any that are too
// wide.
func (l *Layout) Plain(text string) error {
	size := l.cfg.CodeFontSize
	for _, src := range strings.Split(expandTabs(text), "\n") {
		for _, chunk := range l.hardWrap(src, Mono, size, l.width()) {
			l.line([]placed{{run: run{text: chunk, style: Mono, size: size}}},
				l.left(), size, l.colors.text, nil)
		}
	}
	l.space(l.cfg.BlockSpacing)
	return nil
}

// Heading lays out bold heading text at its configured size, with an
// outline bookmark.
func (l *Layout) Heading(level int, text string) error {
	size := l.cfg.headingSize(level)
	l.space(l.cfg.BlockSpacing)
	lines := wrapRuns([]run{{text: text, style: Bold, size: size}}, l.width(), l.measure)
	for i, ln := range lines {
		l.line(ln, l.left(), size, l.colors.text, func(y, _ float64) {
			if i == 0 {
				l.bookmark(level, text, y)
			}
		})
	}
	l.space(l.cfg.BlockSpacing / 2)
	return nil
}

func (l *Layout) bookmark(level int, text string, y float64) {
	lvl := level - 1
	if lvl > l.lastLevel+1 {
		lvl = l.lastLevel + 1
	}
	if lvl < 0 {
		lvl = 0
	}
	l.lastLevel = lvl
	l.emit(Op{Kind: BookmarkOp, Text: text, Level: lvl, Y: y})
}

// Paragraph lays out wrapped prose.
func (l *Layout) Paragraph(spans []scandown.Span) error {
	size := l.cfg.FontSize
	for _, ln := range wrapRuns(l.prose(spans, Regular, size), l.width(), l.measure) {
		l.line(ln, l.left(), size, l.colors.text, nil)
	}
	l.space(l.cfg.BlockSpacing)
	return nil
}

// Blockquote lays out indented italic lines, with a bar drawn beside every
// line so that quotes split across pages keep it.
func (l *Layout) Blockquote(lines [][]scandown.Span) error {
	size := l.cfg.FontSize
	x := l.left() + quoteIndent
	bar := func(y, h float64) {
		l.emit(Op{Kind: RectOp, X: l.left(), Y: y, W: quoteBar, H: h, Color: l.colors.quoteBar})
	}
	for _, spans := range lines {
		for _, ln := range wrapRuns(l.prose(spans, Italic, size), l.width()-quoteIndent, l.measure) {
			l.line(ln, x, size, l.colors.muted, bar)
		}
	}
	l.space(l.cfg.BlockSpacing)
	return nil
}

// Code lays out code lines on a full width background, hard wrapping any
// that are too wide.
func (l *Layout) Code(_, text string) error {
	size := l.cfg.CodeFontSize
	bg := func(y, h float64) {
		l.emit(Op{Kind: RectOp, X: l.left(), Y: y, W: l.width(), H: h, Color: l.colors.codeBG})
	}
	for _, src := range strings.Split(expandTabs(text), "\n") {
		for _, chunk := range l.hardWrap(src, Mono, size, l.width()-2*codePadding) {
			l.line([]placed{{run: run{text: chunk, style: Mono, size: size}}},
				l.left()+codePadding, size, l.colors.text, bg)
		}
	}
	l.space(l.cfg.BlockSpacing)
	return nil
}

// List lays out items behind a uniform marker, with wrapped lines hanging
// under the item text.
func (l *Layout) List(items [][]scandown.Span) error {
	size := l.cfg.FontSize
	x := l.left() + listIndent
	for _, spans := range items {
		lines := wrapRuns(l.prose(spans, Regular, size), l.width()-listIndent, l.measure)
		if len(lines) == 0 {
			lines = [][]placed{nil} // an empty item still gets its marker line
		}
		for i, ln := range lines {
			var marker func(y, h float64)
			if i == 0 {
				marker = func(y, h float64) {
					l.emit(Op{Kind: TextOp,
						X: l.left() + markerInset, Y: y + (h-size)/2 + size*ascent,
						Text: Marker, Style: Regular, Size: size, Color: l.colors.text})
				}
			}
			l.line(ln, x, size, l.colors.text, marker)
		}
	}
	l.space(l.cfg.BlockSpacing)
	return nil
}

// Image places an image scaled to fit the content area, or a placeholder
// caption if img is unusable.
func (l *Layout) Image(img *course.Image) error {
	if !img.Usable() {
		size := l.cfg.FontSize
		l.line([]placed{{run: run{text: ImageUnavailable, style: Italic, size: size}}},
			l.left(), size, l.colors.muted, nil)
		l.space(l.cfg.BlockSpacing)
		return nil
	}

	w := float64(img.Width) * pxToPoints
	h := float64(img.Height) * pxToPoints
	if maxW := l.width(); w > maxW {
		h *= maxW / w
		w = maxW
	}
	if maxH := l.PageContentHeight(); h > maxH {
		w *= maxH / h
		h = maxH
	}
	y := l.reserve(h)
	l.emit(Op{Kind: ImageOp, X: l.left(), Y: y, W: w, H: h, Image: img})
	l.space(l.cfg.BlockSpacing)
	return nil
}

// Break starts a new page, unless the current one is still empty.
func (l *Layout) Break() error {
	if !l.atTop() {
		l.newPage()
	}
	return nil
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
