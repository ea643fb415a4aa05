package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jcorbin/coursemark/course"
)

func TestConfig_Validate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(*Config)
		err    string
	}{
		{"default", func(*Config) {}, ""},
		{"case insensitive", func(c *Config) { c.PageSize = "Letter"; c.Orientation = "L" }, ""},
		{"page size", func(c *Config) { c.PageSize = "b5" }, `unknown page size "b5"`},
		{"orientation", func(c *Config) { c.Orientation = "sideways" }, `unknown orientation "sideways"`},
		{"margin", func(c *Config) { c.Margin = 400 }, "margin 400 does not fit a 595.28x841.89 page"},
		{"font size", func(c *Config) { c.FontSize = 0 }, "font sizes must be positive"},
		{"line height", func(c *Config) { c.LineHeight = 0.5 }, "line height 0.5 must be at least 1"},
		{"spacing", func(c *Config) { c.BlockSpacing = -1 }, "block spacing must not be negative"},
		{"heading count", func(c *Config) { c.HeadingSizes = c.HeadingSizes[:3] }, "need 6 heading sizes, have 3"},
		{"heading order", func(c *Config) { c.HeadingSizes = []float64{20, 18, 16, 30, 12, 10} }, "heading size 4 (30) is larger than heading size 3 (16)"},
		{"tall line", func(c *Config) { c.Margin = 290; c.FontSize = 300; c.LineHeight = 2 }, "line height 600 does not fit the page"},
		{"color", func(c *Config) { c.Colors.QuoteBar = "#12345" }, `quote_bar color: invalid color "#12345", want #rrggbb`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.err == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("#1f4E9a")
	require.NoError(t, err)
	assert.Equal(t, RGB{0x1f, 0x4e, 0x9a}, c)

	for _, bad := range []string{"", "1f4e9a", "#1f4e9", "#gggggg"} {
		_, err := parseColor(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"a", "  ", "bc", "\t", "d", " "}, splitWords("a  bc\td "))
	assert.Equal(t, []string{" ", "x"}, splitWords(" x"))
	assert.Nil(t, splitWords(""))
}

func TestHardWrap(t *testing.T) {
	m := Monospace{}
	assert.Equal(t, []string{""}, hardWrap(m, "", Regular, 10, 20))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, hardWrap(m, "abcdefghij", Regular, 10, 20))
	assert.Equal(t, []string{"é", "ü"}, hardWrap(m, "éü", Regular, 10, 1),
		"every chunk holds at least one rune")
}

func TestWinText(t *testing.T) {
	assert.Equal(t, "caf\xe9 \x93q\x94 \x95", winText("café “q” •"))
	assert.Equal(t, "caf\xe9", winText("cafe\u0301"), "combining marks are composed")
	assert.Equal(t, "a ? b", winText("a → b"))
}

func TestDocument_brokenImage(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc, err := newDocument(DefaultConfig(), "t", zap.New(core))
	require.NoError(t, err)

	bogus := &course.Image{Data: []byte("not a png"), Format: "png", Width: 2, Height: 2}
	pages := []Page{{Ops: []Op{
		{Kind: ImageOp, X: 60, Y: 60, W: 20, H: 20, Image: bogus},
		{Kind: ImageOp, X: 60, Y: 90, W: 20, H: 20, Image: bogus},
		{Kind: TextOp, X: 60, Y: 130, Text: "after", Size: 11},
	}}}

	var buf bytes.Buffer
	stats, err := doc.write(&buf, pages)
	require.NoError(t, err, "a broken image must not fail the document")
	assert.Equal(t, 1, stats.Pages)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 2, logs.FilterMessage("image not embedded").Len())
}

func TestDocument_bookmarkEncoding(t *testing.T) {
	doc, err := newDocument(DefaultConfig(), "t", zap.NewNop())
	require.NoError(t, err)

	pages := []Page{{Ops: []Op{
		{Kind: BookmarkOp, Y: 60, Text: "Café “quoted”"},
		{Kind: TextOp, X: 60, Y: 72, Text: "Café", Size: 11},
	}}}
	var buf bytes.Buffer
	_, err = doc.write(&buf, pages)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "/Title (Caf\xe9 \x93quoted\x94)",
		"outline titles use the same encoding as page text")
	assert.NotContains(t, buf.String(), "Caf\xc3\xa9")
}
