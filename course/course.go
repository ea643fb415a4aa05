// Package course implements the course document model consumed by the render
// backends: a titled tree of chapters, each carrying Markdown content and an
// optional base64 image payload.
package course

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Course is a titled, ordered tree of chapters.
type Course struct {
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Chapters    []*Chapter `yaml:"chapters" json:"chapters"`
}

// Chapter is one node of the course tree. Content is Markdown source; Image
// is a base64 payload, optionally in data URL form, decoded by DecodeImage.
type Chapter struct {
	Title    string     `yaml:"title" json:"title"`
	Content  string     `yaml:"content,omitempty" json:"content,omitempty"`
	Image    string     `yaml:"image,omitempty" json:"image,omitempty"`
	Chapters []*Chapter `yaml:"chapters,omitempty" json:"chapters,omitempty"`
}

var errNoTitle = errors.New("course has no title")

// Load decodes a course document from YAML, or JSON since yaml.v3 accepts it
// as a subset.
func Load(r io.Reader) (*Course, error) {
	var c Course
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty course document: %w", err)
		}
		return nil, fmt.Errorf("failed to decode course: %w", err)
	}
	if c.Title == "" {
		return nil, errNoTitle
	}
	return &c, nil
}

// FromMarkdown wraps a bare Markdown document as an untitled single chapter
// course, so that it may be exported like any other.
func FromMarkdown(title, src string) *Course {
	return &Course{
		Title:    title,
		Chapters: []*Chapter{{Content: src}},
	}
}

// Walk calls fn for every chapter in depth-first order, with depth 0 for top
// level chapters. Iteration stops at the first error returned by fn.
func (c *Course) Walk(fn func(ch *Chapter, depth int) error) error {
	return walk(c.Chapters, 0, fn)
}

func walk(chapters []*Chapter, depth int, fn func(*Chapter, int) error) error {
	for _, ch := range chapters {
		if ch == nil {
			continue
		}
		if err := fn(ch, depth); err != nil {
			return err
		}
		if err := walk(ch.Chapters, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
