package pdf_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/render/pdf"
)

func pngPayload(t *testing.T, w, h int) string {
	t.Helper()
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		m.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestExport(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := &course.Course{
		Title:       "Go Basics",
		Description: "An **introduction** to Go.",
		Chapters: []*course.Chapter{
			{
				Title:   "Packages",
				Image:   pngPayload(t, 64, 32),
				Content: "# Packages\n- `fmt`\n- `os`\n```go\npackage main\n```",
			},
			{
				Title:   "Broken",
				Image:   "not base64!",
				Content: "> quoted café",
			},
		},
	}

	var buf bytes.Buffer
	stats, err := pdf.Export(context.Background(), &buf, c, pdf.WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should be a PDF")
	assert.Equal(t, 2, stats.Pages, "each chapter after the first starts a page")
	assert.Equal(t, int64(buf.Len()), stats.Bytes)

	warned := logs.FilterMessage("chapter image unavailable").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "Broken", warned[0].ContextMap()["chapter"])
	assert.Equal(t, 1, logs.FilterMessage("pdf written").Len())
}

func TestExport_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &course.Course{Title: "T", Chapters: []*course.Chapter{{Title: "A", Image: pngPayload(t, 2, 2)}}}
	var buf bytes.Buffer
	_, err := pdf.Export(ctx, &buf, c)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len(), "nothing should be written")
}

func TestExportMarkdown(t *testing.T) {
	for _, tc := range []struct {
		name     string
		src      string
		minPages int
	}{
		{"empty", "", 1},
		{"plain", "just some text", 1},
		{"markdown", "# Title\n\nSome *text*.", 1},
		{"long", "# Long\n" + strings.Repeat("A line of text.\n", 200), 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			stats, err := pdf.ExportMarkdown(&buf, tc.name, tc.src)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
			assert.GreaterOrEqual(t, stats.Pages, tc.minPages)
			assert.Equal(t, int64(buf.Len()), stats.Bytes)
		})
	}
}

func TestExportMarkdown_landscape(t *testing.T) {
	cfg := pdf.DefaultConfig()
	cfg.PageSize = "letter"
	cfg.Orientation = "landscape"
	cfg.PageNumbers = false

	var portrait, landscape bytes.Buffer
	src := "# Long\n" + strings.Repeat("A line of text.\n", 100)
	ps, err := pdf.ExportMarkdown(&portrait, "p", src, pdf.WithMeasurer(pdf.Monospace{}))
	require.NoError(t, err)
	ls, err := pdf.ExportMarkdown(&landscape, "l", src,
		pdf.WithConfig(cfg), pdf.WithMeasurer(pdf.Monospace{}))
	require.NoError(t, err)
	assert.Greater(t, ls.Pages, ps.Pages, "shorter pages need more of them")
}

func TestExportMarkdown_invalidConfig(t *testing.T) {
	cfg := pdf.DefaultConfig()
	cfg.Colors.Text = "red"
	var buf bytes.Buffer
	_, err := pdf.ExportMarkdown(&buf, "t", "# x", pdf.WithConfig(cfg))
	assert.EqualError(t, err, `text color: invalid color "red", want #rrggbb`)
	assert.Zero(t, buf.Len())
}
