package course

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	// decoders available to chapter image payloads
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Image is a decoded chapter image payload.
//
// Data holds encoded image bytes in Format, which is always "png", "jpeg", or
// "gif"; other source formats are converted to png. Width and Height are in
// pixels.
//
// A non-nil Err means the payload could not be used; renderers must then
// show a placeholder instead.
type Image struct {
	Data          []byte
	Format        string
	Width, Height int
	Err           error
}

var (
	errNoPayload   = errors.New("empty image payload")
	errEmptyBounds = errors.New("image has no pixels")
)

// Usable reports whether img may be drawn.
func (img *Image) Usable() bool {
	return img != nil && img.Err == nil && len(img.Data) > 0
}

// DecodeImage decodes a base64 image payload, which may be given in data URL
// form ("data:image/png;base64,..."). It never fails outright: any problem is
// recorded in the returned image's Err.
func DecodeImage(payload string) *Image {
	raw, err := decodePayload(payload)
	if err != nil {
		return &Image{Err: err}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return &Image{Err: fmt.Errorf("unable to decode image: %w", err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return &Image{Err: errEmptyBounds}
	}

	img := &Image{
		Data:   raw,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	switch format {
	case "png", "jpeg", "gif":
	default:
		// convert to something a PDF can embed
		m, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return &Image{Err: fmt.Errorf("unable to decode %v image: %w", format, err)}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, m); err != nil {
			return &Image{Err: fmt.Errorf("unable to convert %v image: %w", format, err)}
		}
		img.Data = buf.Bytes()
		img.Format = "png"
	}
	return img
}

func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		i := strings.IndexByte(payload, ',')
		if i < 0 {
			return nil, errors.New("malformed data URL")
		}
		if !strings.HasSuffix(payload[:i], ";base64") {
			return nil, errors.New("data URL is not base64 encoded")
		}
		payload = payload[i+1:]
	}
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, errNoPayload
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, rerr := base64.RawStdEncoding.DecodeString(payload); rerr == nil {
			return raw, nil
		}
		return nil, fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return raw, nil
}

// Images maps chapters to their decoded image payloads.
// Chapters without an image payload have no entry.
type Images map[*Chapter]*Image

// DecodeImages decodes every chapter image in c, using up to limit
// concurrent workers (limit < 1 means one per image).
//
// Payload failures do not fail the call: they become Image values with a
// non-nil Err, logged as warnings. The only error returned is ctx's, should
// it be done before decoding completes.
func DecodeImages(ctx context.Context, c *Course, limit int, log *zap.Logger) (Images, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var chapters []*Chapter
	c.Walk(func(ch *Chapter, _ int) error {
		if ch.Image != "" {
			chapters = append(chapters, ch)
		}
		return nil
	})

	decoded := make([]*Image, len(chapters))
	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, ch := range chapters {
		i, ch := i, ch
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img := DecodeImage(ch.Image)
			if img.Err != nil {
				log.Warn("chapter image unavailable",
					zap.String("chapter", ch.Title),
					zap.Error(img.Err))
			}
			decoded[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	images := make(Images, len(chapters))
	for i, ch := range chapters {
		images[ch] = decoded[i]
	}
	return images, nil
}
