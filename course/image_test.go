package course_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/bmp"

	"github.com/jcorbin/coursemark/course"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testImage(w, h int) image.Image {
	m := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, color.RGBA{uint8(x), uint8(y), 0x80, 0xff})
		}
	}
	return m
}

func pngPayload(t *testing.T, w, h int) string {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeImage(t *testing.T) {
	payload := pngPayload(t, 4, 3)

	t.Run("bare base64", func(t *testing.T) {
		img := course.DecodeImage(payload)
		require.NoError(t, img.Err)
		assert.True(t, img.Usable())
		assert.Equal(t, "png", img.Format)
		assert.Equal(t, 4, img.Width)
		assert.Equal(t, 3, img.Height)
	})

	t.Run("data url", func(t *testing.T) {
		img := course.DecodeImage("data:image/png;base64," + payload)
		require.NoError(t, img.Err)
		assert.Equal(t, 4, img.Width)
	})

	t.Run("wrapped lines", func(t *testing.T) {
		img := course.DecodeImage(payload[:10] + "\n" + payload[10:])
		require.NoError(t, img.Err)
	})

	t.Run("bmp converts to png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, bmp.Encode(&buf, testImage(5, 2)))
		img := course.DecodeImage(base64.StdEncoding.EncodeToString(buf.Bytes()))
		require.NoError(t, img.Err)
		assert.Equal(t, "png", img.Format)
		assert.Equal(t, 5, img.Width)
		assert.Equal(t, 2, img.Height)
		_, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
	})

	for _, tc := range []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"whitespace", "  \n "},
		{"not base64", "!!!not base64!!!"},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello world"))},
		{"truncated data url", "data:image/png;base64"},
		{"non base64 data url", "data:text/plain,hello"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := course.DecodeImage(tc.payload)
			require.NotNil(t, img)
			assert.Error(t, img.Err)
			assert.False(t, img.Usable())
		})
	}

	var nilImage *course.Image
	assert.False(t, nilImage.Usable(), "nil images are never usable")
}

func TestDecodeImages(t *testing.T) {
	good := pngPayload(t, 2, 2)
	c := &course.Course{
		Title: "c",
		Chapters: []*course.Chapter{
			{Title: "one", Image: good},
			{Title: "two", Chapters: []*course.Chapter{
				{Title: "three", Image: "broken"},
			}},
			{Title: "four"},
		},
	}

	core, logs := observer.New(zap.WarnLevel)
	images, err := course.DecodeImages(context.Background(), c, 2, zap.New(core))
	require.NoError(t, err)

	require.Len(t, images, 2, "only chapters with payloads are decoded")
	assert.True(t, images[c.Chapters[0]].Usable())
	broken := images[c.Chapters[1].Chapters[0]]
	require.NotNil(t, broken)
	assert.Error(t, broken.Err)
	assert.Nil(t, images[c.Chapters[2]])

	require.Equal(t, 1, logs.Len(), "broken payload should be logged")
	entry := logs.All()[0]
	assert.Equal(t, "chapter image unavailable", entry.Message)
	assert.Equal(t, "three", entry.ContextMap()["chapter"])
}

func TestDecodeImages_canceled(t *testing.T) {
	c := &course.Course{
		Title:    "c",
		Chapters: []*course.Chapter{{Title: "one", Image: pngPayload(t, 1, 1)}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := course.DecodeImages(ctx, c, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
