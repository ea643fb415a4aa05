// Package screen renders Markdown onto an HTML node tree suitable for
// mounting in a page, using golang.org/x/net/html nodes.
package screen

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"

	"github.com/shurcooL/sanitized_anchor_name"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/render"
	"github.com/jcorbin/coursemark/scandown"
)

// Marker is the glyph drawn before every list item.
const Marker = "•"

// ImageUnavailable is the caption shown in place of unusable images.
const ImageUnavailable = "Image unavailable"

var headings = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// Builder is a render.Backend that builds an HTML node tree under a
// `<div class="markdown">` root.
type Builder struct {
	root    *html.Node
	anchors map[string]int
}

var (
	_ render.Backend = (*Builder)(nil)
	_ render.Breaker = (*Builder)(nil)
)

// NewBuilder returns a Builder with an empty root.
func NewBuilder() *Builder {
	return &Builder{
		root:    element(atom.Div, attr("class", "markdown")),
		anchors: make(map[string]int),
	}
}

// Root returns the root of the tree built so far.
func (b *Builder) Root() *html.Node { return b.root }

// Render parses src, returning its HTML node tree.
func Render(src string) *html.Node {
	b := NewBuilder()
	render.Markdown(b, src) // Builder methods never fail
	return b.Root()
}

// RenderCourse returns the HTML node tree of a whole course. Chapters are
// separated by horizontal rules.
func RenderCourse(c *course.Course, images course.Images) (*html.Node, error) {
	b := NewBuilder()
	if err := render.Course(b, c, images); err != nil {
		return nil, err
	}
	return b.Root(), nil
}

// Plain adds a preformatted block holding text verbatim.
func (b *Builder) Plain(text string) error {
	pre := element(atom.Pre, attr("class", "plain"))
	pre.AppendChild(textNode(text))
	b.root.AppendChild(pre)
	return nil
}

// Heading adds an h1-h6 element, with an id anchor derived from its text.
// Repeated anchors are disambiguated with a numeric suffix.
func (b *Builder) Heading(level int, text string) error {
	if level < 1 {
		level = 1
	} else if level > len(headings) {
		level = len(headings)
	}
	h := element(headings[level-1])
	if id := b.anchor(text); id != "" {
		h.Attr = append(h.Attr, attr("id", id))
	}
	h.AppendChild(textNode(text))
	b.root.AppendChild(h)
	return nil
}

func (b *Builder) anchor(text string) string {
	id := sanitized_anchor_name.Create(text)
	if id == "" {
		return ""
	}
	n := b.anchors[id]
	b.anchors[id] = n + 1
	if n > 0 {
		id += "-" + strconv.Itoa(n)
	}
	return id
}

// Paragraph adds a p element.
func (b *Builder) Paragraph(spans []scandown.Span) error {
	b.root.AppendChild(appendSpans(element(atom.P), spans))
	return nil
}

// Blockquote adds a blockquote element, separating quoted lines with br
// elements.
func (b *Builder) Blockquote(lines [][]scandown.Span) error {
	quote := element(atom.Blockquote)
	for i, spans := range lines {
		if i > 0 {
			quote.AppendChild(element(atom.Br))
		}
		appendSpans(quote, spans)
	}
	b.root.AppendChild(quote)
	return nil
}

// Code adds a pre element wrapping a code element, classed by any info
// string as "language-INFO".
func (b *Builder) Code(info, text string) error {
	code := element(atom.Code)
	if info != "" {
		code.Attr = append(code.Attr, attr("class", "language-"+info))
	}
	code.AppendChild(textNode(text))
	pre := element(atom.Pre)
	pre.AppendChild(code)
	b.root.AppendChild(pre)
	return nil
}

// List adds a ul element; each li starts with a marker span, whatever bullet
// or ordinal the source used.
func (b *Builder) List(items [][]scandown.Span) error {
	ul := element(atom.Ul)
	for _, spans := range items {
		marker := element(atom.Span, attr("class", "marker"))
		marker.AppendChild(textNode(Marker))
		li := element(atom.Li)
		li.AppendChild(marker)
		li.AppendChild(textNode(" "))
		ul.AppendChild(appendSpans(li, spans))
	}
	b.root.AppendChild(ul)
	return nil
}

// Image adds a figure with an inline data URL image, or a captioned
// placeholder if img is unusable.
func (b *Builder) Image(img *course.Image) error {
	fig := element(atom.Figure)
	if !img.Usable() {
		fig.Attr = append(fig.Attr, attr("class", "image-unavailable"))
		caption := element(atom.Figcaption)
		caption.AppendChild(textNode(ImageUnavailable))
		fig.AppendChild(caption)
	} else {
		src := fmt.Sprintf("data:image/%v;base64,%v", img.Format,
			base64.StdEncoding.EncodeToString(img.Data))
		fig.AppendChild(element(atom.Img,
			attr("src", src),
			attr("alt", ""),
			attr("width", strconv.Itoa(img.Width)),
			attr("height", strconv.Itoa(img.Height))))
	}
	b.root.AppendChild(fig)
	return nil
}

// Break adds a horizontal rule.
func (b *Builder) Break() error {
	b.root.AppendChild(element(atom.Hr))
	return nil
}

func appendSpans(parent *html.Node, spans []scandown.Span) *html.Node {
	for _, span := range spans {
		var wrap atom.Atom
		switch span.Type {
		case scandown.Bold:
			wrap = atom.Strong
		case scandown.Italic:
			wrap = atom.Em
		case scandown.Code:
			wrap = atom.Code
		default:
			parent.AppendChild(textNode(span.Text))
			continue
		}
		el := element(wrap)
		el.AppendChild(textNode(span.Text))
		parent.AppendChild(el)
	}
	return parent
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// Page wraps body in a complete HTML document with the given title.
func Page(title string, body *html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	titleEl := element(atom.Title)
	titleEl.AppendChild(textNode(title))
	head.AppendChild(titleEl)
	root.AppendChild(head)

	bodyEl := element(atom.Body)
	bodyEl.AppendChild(body)
	root.AppendChild(bodyEl)

	doc.AppendChild(root)
	return doc
}

// WriteHTML serializes the tree rooted at n.
func WriteHTML(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// View holds the rendered tree of the last document it was given, only
// re-rendering when the document changes.
//
// It is not safe to use View from parallel goroutines.
type View struct {
	src  string
	node *html.Node
}

// Update returns the node tree for src, re-parsing only if src differs from
// the previous call's.
func (v *View) Update(src string) *html.Node {
	if v.node == nil || src != v.src {
		v.src = src
		v.node = Render(src)
	}
	return v.node
}
