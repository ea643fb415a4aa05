package pdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jcorbin/coursemark/render"
)

// Config controls PDF page geometry and typography. Lengths are in PDF
// points (1/72 inch).
type Config struct {
	PageSize     string    `yaml:"page_size"`
	Orientation  string    `yaml:"orientation"`
	Margin       float64   `yaml:"margin"`
	FontSize     float64   `yaml:"font_size"`
	CodeFontSize float64   `yaml:"code_font_size"`
	LineHeight   float64   `yaml:"line_height"`
	BlockSpacing float64   `yaml:"block_spacing"`
	HeadingSizes []float64 `yaml:"heading_sizes"`
	PageNumbers  bool      `yaml:"page_numbers"`
	Colors       Colors    `yaml:"colors"`
}

// Colors holds "#rrggbb" colors for the drawn elements.
type Colors struct {
	Text           string `yaml:"text"`
	Muted          string `yaml:"muted"`
	CodeBackground string `yaml:"code_background"`
	QuoteBar       string `yaml:"quote_bar"`
}

// paperSizes are portrait paper dimensions in points.
var paperSizes = map[string][2]float64{
	"a4":     {595.28, 841.89},
	"a5":     {419.53, 595.28},
	"letter": {612, 792},
	"legal":  {612, 1008},
}

// DefaultConfig returns an A4 portrait configuration with 11pt body text.
func DefaultConfig() Config {
	const body = 11
	sizes := make([]float64, 6)
	for i := range sizes {
		sizes[i] = body * render.HeadingScale(i+1)
	}
	return Config{
		PageSize:     "A4",
		Orientation:  "portrait",
		Margin:       56.7, // 20mm
		FontSize:     body,
		CodeFontSize: 9.5,
		LineHeight:   1.4,
		BlockSpacing: 8,
		HeadingSizes: sizes,
		PageNumbers:  true,
		Colors: Colors{
			Text:           "#1a1a1a",
			Muted:          "#6b6b6b",
			CodeBackground: "#f0f0f0",
			QuoteBar:       "#c8c8c8",
		},
	}
}

// paper returns the portrait paper size.
func (cfg Config) paper() (w, h float64, _ error) {
	size, ok := paperSizes[strings.ToLower(cfg.PageSize)]
	if !ok {
		return 0, 0, fmt.Errorf("unknown page size %q", cfg.PageSize)
	}
	return size[0], size[1], nil
}

func (cfg Config) landscape() bool {
	switch strings.ToLower(cfg.Orientation) {
	case "l", "landscape":
		return true
	}
	return false
}

// PageDims returns the oriented page width and height.
func (cfg Config) PageDims() (w, h float64, err error) {
	w, h, err = cfg.paper()
	if cfg.landscape() {
		w, h = h, w
	}
	return w, h, err
}

// headingSize returns the font size of a heading level, clamped to 1-6.
func (cfg Config) headingSize(level int) float64 {
	if level < 1 {
		level = 1
	} else if level > len(cfg.HeadingSizes) {
		level = len(cfg.HeadingSizes)
	}
	return cfg.HeadingSizes[level-1]
}

// Validate checks that the configuration can lay out pages.
func (cfg Config) Validate() error {
	w, h, err := cfg.PageDims()
	if err != nil {
		return err
	}
	switch strings.ToLower(cfg.Orientation) {
	case "", "p", "portrait", "l", "landscape":
	default:
		return fmt.Errorf("unknown orientation %q", cfg.Orientation)
	}
	if cfg.Margin < 0 || 2*cfg.Margin >= w || 2*cfg.Margin >= h {
		return fmt.Errorf("margin %v does not fit a %vx%v page", cfg.Margin, w, h)
	}
	if cfg.FontSize <= 0 || cfg.CodeFontSize <= 0 {
		return errors.New("font sizes must be positive")
	}
	if cfg.LineHeight < 1 {
		return fmt.Errorf("line height %v must be at least 1", cfg.LineHeight)
	}
	if cfg.BlockSpacing < 0 {
		return errors.New("block spacing must not be negative")
	}
	if len(cfg.HeadingSizes) != 6 {
		return fmt.Errorf("need 6 heading sizes, have %v", len(cfg.HeadingSizes))
	}
	for i, size := range cfg.HeadingSizes {
		if size <= 0 {
			return fmt.Errorf("heading size %v must be positive", i+1)
		}
		if i > 0 && size > cfg.HeadingSizes[i-1] {
			return fmt.Errorf("heading size %v (%v) is larger than heading size %v (%v)",
				i+1, size, i, cfg.HeadingSizes[i-1])
		}
	}
	tallest := cfg.HeadingSizes[0]
	if cfg.FontSize > tallest {
		tallest = cfg.FontSize
	}
	if cfg.CodeFontSize > tallest {
		tallest = cfg.CodeFontSize
	}
	if line := tallest * cfg.LineHeight; line > h-2*cfg.Margin {
		return fmt.Errorf("line height %v does not fit the page", line)
	}
	for name, c := range map[string]string{
		"text":            cfg.Colors.Text,
		"muted":           cfg.Colors.Muted,
		"code_background": cfg.Colors.CodeBackground,
		"quote_bar":       cfg.Colors.QuoteBar,
	} {
		if _, err := parseColor(c); err != nil {
			return fmt.Errorf("%v color: %w", name, err)
		}
	}
	return nil
}

// RGB is a color with 0-255 components.
type RGB struct{ R, G, B int }

func parseColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 || len(hex) == len(s) {
		return RGB{}, fmt.Errorf("invalid color %q, want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, nil
}

type palette struct {
	text, muted, codeBG, quoteBar RGB
}

func (cfg Config) palette() (p palette, err error) {
	for _, c := range []struct {
		dst *RGB
		src string
	}{
		{&p.text, cfg.Colors.Text},
		{&p.muted, cfg.Colors.Muted},
		{&p.codeBG, cfg.Colors.CodeBackground},
		{&p.quoteBar, cfg.Colors.QuoteBar},
	} {
		if *c.dst, err = parseColor(c.src); err != nil {
			return p, err
		}
	}
	return p, nil
}
