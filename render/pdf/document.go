// Package pdf renders Markdown and courses as paginated PDF documents.
//
// Rendering happens in two passes: a Layout positions every line and box on
// pages of the configured size, then the resulting drawing instructions are
// painted with fpdf's core fonts.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/jcorbin/coursemark/course"
	"github.com/jcorbin/coursemark/render"
)

const creator = "coursemark"

// Stats describes a written document.
type Stats struct {
	Pages int
	Bytes int64
}

// Option customizes an export.
type Option func(*options)

type options struct {
	cfg     Config
	log     *zap.Logger
	measure Measurer
	workers int
}

// WithConfig sets the page geometry and typography.
func WithConfig(cfg Config) Option { return func(o *options) { o.cfg = cfg } }

// WithLogger sets the logger that receives image and export diagnostics.
func WithLogger(log *zap.Logger) Option { return func(o *options) { o.log = log } }

// WithMeasurer overrides text measurement, which otherwise uses the metrics
// of the painted fonts.
func WithMeasurer(m Measurer) Option { return func(o *options) { o.measure = m } }

// WithWorkers limits concurrent image decoding.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

func buildOptions(opts []Option) options {
	o := options{cfg: DefaultConfig(), workers: 4}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// Export writes c to w as a PDF, each chapter starting a new page. Chapter
// images that cannot be decoded or embedded are drawn as placeholders.
func Export(ctx context.Context, w io.Writer, c *course.Course, opts ...Option) (Stats, error) {
	o := buildOptions(opts)
	images, err := course.DecodeImages(ctx, c, o.workers, o.log)
	if err != nil {
		return Stats{}, err
	}
	return export(w, c.Title, o, func(b render.Backend) error {
		return render.Course(b, c, images)
	})
}

// ExportMarkdown writes Markdown source to w as a PDF.
func ExportMarkdown(w io.Writer, title, src string, opts ...Option) (Stats, error) {
	return export(w, title, buildOptions(opts), func(b render.Backend) error {
		return render.Markdown(b, src)
	})
}

func export(w io.Writer, title string, o options, draw func(render.Backend) error) (Stats, error) {
	doc, err := newDocument(o.cfg, title, o.log)
	if err != nil {
		return Stats{}, err
	}
	measure := o.measure
	if measure == nil {
		measure = doc
	}
	layout, err := NewLayout(o.cfg, measure)
	if err != nil {
		return Stats{}, err
	}
	if err := draw(layout); err != nil {
		return Stats{}, err
	}
	stats, err := doc.write(w, layout.Pages())
	if err != nil {
		return stats, err
	}
	o.log.Debug("pdf written",
		zap.String("title", title),
		zap.Int("pages", stats.Pages),
		zap.Int64("bytes", stats.Bytes))
	return stats, nil
}

// document paints laid out pages with fpdf.
type document struct {
	pdf    *fpdf.Fpdf
	cfg    Config
	colors palette
	log    *zap.Logger
	images map[*course.Image]string
	pageW  float64
	pageH  float64
}

func newDocument(cfg Config, title string, log *zap.Logger) (*document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	colors, err := cfg.palette()
	if err != nil {
		return nil, err
	}
	pw, ph, err := cfg.paper()
	if err != nil {
		return nil, err
	}
	orientation := "P"
	if cfg.landscape() {
		orientation = "L"
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(false, cfg.Margin)
	pdf.SetCreator(creator, true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	w, h, _ := cfg.PageDims()
	return &document{
		pdf:    pdf,
		cfg:    cfg,
		colors: colors,
		log:    log,
		images: make(map[*course.Image]string),
		pageW:  w,
		pageH:  h,
	}, nil
}

func (d *document) setFont(style Style, size float64) {
	switch style {
	case Bold:
		d.pdf.SetFont("Helvetica", "B", size)
	case Italic:
		d.pdf.SetFont("Helvetica", "I", size)
	case Mono:
		d.pdf.SetFont("Courier", "", size)
	default:
		d.pdf.SetFont("Helvetica", "", size)
	}
}

// Width measures text in the font it will be painted with.
func (d *document) Width(text string, style Style, size float64) float64 {
	d.setFont(style, size)
	return d.pdf.GetStringWidth(winText(text))
}

// winText converts text to the Windows-1252 encoding of the core fonts,
// replacing unencodable runes with '?'.
func winText(s string) string {
	s = norm.NFC.String(s)
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		buf = append(buf, b)
	}
	return string(buf)
}

func (d *document) write(w io.Writer, pages []Page) (Stats, error) {
	if len(pages) == 0 {
		pages = []Page{{}}
	}
	for i, page := range pages {
		d.pdf.AddPage()
		for _, op := range page.Ops {
			d.paint(op)
		}
		if d.cfg.PageNumbers {
			d.footer(i+1, len(pages))
		}
		if err := d.pdf.Error(); err != nil {
			return Stats{}, fmt.Errorf("unable to paint page %v: %w", i+1, err)
		}
	}

	cw := countingWriter{w: w}
	if err := d.pdf.Output(&cw); err != nil {
		return Stats{Pages: len(pages), Bytes: cw.n}, err
	}
	return Stats{Pages: len(pages), Bytes: cw.n}, nil
}

func (d *document) paint(op Op) {
	switch op.Kind {
	case TextOp:
		d.setFont(op.Style, op.Size)
		d.pdf.SetTextColor(op.Color.R, op.Color.G, op.Color.B)
		d.pdf.Text(op.X, op.Y, winText(op.Text))
	case RectOp:
		d.pdf.SetFillColor(op.Color.R, op.Color.G, op.Color.B)
		d.pdf.Rect(op.X, op.Y, op.W, op.H, "F")
	case ImageOp:
		d.image(op)
	case BookmarkOp:
		d.pdf.Bookmark(winText(op.Text), op.Level, op.Y)
	}
}

var imageTypes = map[string]string{
	"png":  "PNG",
	"jpeg": "JPG",
	"gif":  "GIF",
}

// image draws op's image, or a placeholder caption if fpdf cannot embed it.
func (d *document) image(op Op) {
	name, err := d.register(op.Image)
	if err != nil {
		d.log.Warn("image not embedded", zap.Error(err))
		size := d.cfg.FontSize
		d.setFont(Italic, size)
		d.pdf.SetTextColor(d.colors.muted.R, d.colors.muted.G, d.colors.muted.B)
		d.pdf.Text(op.X, op.Y+size, winText(ImageUnavailable))
		return
	}
	d.pdf.ImageOptions(name, op.X, op.Y, op.W, op.H, false, fpdf.ImageOptions{}, 0, "")
}

func (d *document) register(img *course.Image) (string, error) {
	if name, ok := d.images[img]; ok {
		if name == "" {
			return "", fmt.Errorf("previously failed %v image", img.Format)
		}
		return name, nil
	}
	d.images[img] = ""
	typ, ok := imageTypes[img.Format]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", img.Format)
	}
	name := fmt.Sprintf("image%d", len(d.images))
	d.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: typ}, bytes.NewReader(img.Data))
	if err := d.pdf.Error(); err != nil {
		d.pdf.ClearError()
		return "", fmt.Errorf("unable to embed %v image: %w", img.Format, err)
	}
	d.images[img] = name
	return name, nil
}

func (d *document) footer(n, total int) {
	const size = 8
	label := fmt.Sprintf("Page %d of %d", n, total)
	d.setFont(Regular, size)
	d.pdf.SetTextColor(d.colors.muted.R, d.colors.muted.G, d.colors.muted.B)
	w := d.pdf.GetStringWidth(label)
	d.pdf.Text((d.pageW-w)/2, d.pageH-d.cfg.Margin/2, label)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
