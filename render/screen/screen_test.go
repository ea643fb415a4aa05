package screen_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/render/screen"
)

const sample = "# Intro Text\n\n" +
	"Some **bold**, *italic*, and `code`.\n" +
	"> quote one\n> quote **two**\n\n" +
	"```go\nfmt.Println(1)\n```\n\n" +
	"- a\n- b\n7. c\n\n" +
	"## Intro Text"

// document wraps a rendered tree in a page, since goquery only matches
// descendants of the node it is given.
func document(root *html.Node) *goquery.Document {
	return goquery.NewDocumentFromNode(screen.Page("test", root))
}

func query(t *testing.T, src string) *goquery.Document {
	t.Helper()
	return document(screen.Render(src))
}

func TestRender(t *testing.T) {
	doc := query(t, sample)

	root := doc.Find("div.markdown")
	require.Equal(t, 1, root.Length())
	assert.Equal(t, []string{"h1", "p", "blockquote", "pre", "ul", "h2"},
		root.Children().Map(func(_ int, s *goquery.Selection) string {
			return goquery.NodeName(s)
		}), "blocks should render in source order")

	t.Run("headings", func(t *testing.T) {
		h1 := doc.Find("h1")
		assert.Equal(t, "Intro Text", h1.Text())
		assert.Equal(t, "intro-text", h1.AttrOr("id", ""))
		assert.Equal(t, "intro-text-1", doc.Find("h2").AttrOr("id", ""),
			"repeated anchors should be disambiguated")
	})

	t.Run("spans", func(t *testing.T) {
		p := doc.Find("p")
		assert.Equal(t, "bold", p.Find("strong").Text())
		assert.Equal(t, "italic", p.Find("em").Text())
		assert.Equal(t, "code", p.Find("code").Text())
		assert.Equal(t, "Some bold, italic, and code.", p.Text())
	})

	t.Run("blockquote", func(t *testing.T) {
		quote := doc.Find("blockquote")
		assert.Equal(t, 1, quote.Find("br").Length())
		assert.Equal(t, "two", quote.Find("strong").Text())
		assert.Equal(t, "quote onequote two", quote.Text())
	})

	t.Run("code", func(t *testing.T) {
		code := doc.Find("pre > code.language-go")
		require.Equal(t, 1, code.Length())
		assert.Equal(t, "fmt.Println(1)", code.Text())
	})

	t.Run("list markers are uniform", func(t *testing.T) {
		items := doc.Find("ul > li")
		require.Equal(t, 3, items.Length())
		items.Each(func(i int, li *goquery.Selection) {
			assert.Equal(t, screen.Marker, li.Find("span.marker").Text())
			assert.NotContains(t, li.Text(), "7.", "source ordinals are discarded")
		})
		assert.Equal(t, screen.Marker+" c", items.Last().Text())
	})
}

func TestRender_plain(t *testing.T) {
	doc := query(t, "just words\n  indented")
	pre := doc.Find("pre.plain")
	require.Equal(t, 1, pre.Length())
	assert.Equal(t, "just words\n  indented", pre.Text())
}

func TestRenderCourse(t *testing.T) {
	c := &course.Course{
		Title: "Course",
		Chapters: []*course.Chapter{
			{Title: "One", Image: "x", Content: "- item"},
			{Title: "Two", Image: "y"},
		},
	}
	images := course.Images{
		c.Chapters[0]: {Data: []byte("fake"), Format: "png", Width: 4, Height: 2},
		c.Chapters[1]: {Err: errors.New("broken")},
	}
	root, err := screen.RenderCourse(c, images)
	require.NoError(t, err)
	doc := document(root)

	assert.Equal(t, 1, doc.Find("hr").Length(), "chapters should be separated")

	img := doc.Find("figure > img")
	require.Equal(t, 1, img.Length())
	assert.True(t, strings.HasPrefix(img.AttrOr("src", ""), "data:image/png;base64,"))
	assert.Equal(t, "4", img.AttrOr("width", ""))

	missing := doc.Find("figure.image-unavailable figcaption")
	assert.Equal(t, screen.ImageUnavailable, missing.Text())
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, screen.WriteHTML(&buf, screen.Page("T & C", screen.Render("# Hi"))))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), "got %q", out)
	assert.Contains(t, out, "<title>T &amp; C</title>")
	assert.Contains(t, out, `<h1 id="hi">Hi</h1>`)
}

func TestView(t *testing.T) {
	var v screen.View
	first := v.Update("# a")
	assert.Same(t, first, v.Update("# a"), "unchanged content should not re-render")

	second := v.Update("# b")
	assert.NotSame(t, first, second)
	assert.Equal(t, "b", document(second).Find("h1").Text())
}
