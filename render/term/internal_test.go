package term

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/coursemark/render"
)

func TestHeadingStyles(t *testing.T) {
	hs := newStyles(lipgloss.NewRenderer(io.Discard)).headings
	for i, style := range hs {
		level := i + 1
		scale := render.HeadingScale(level)
		t.Run(fmt.Sprint(level), func(t *testing.T) {
			assert.True(t, style.GetBold(), "every heading is bold")
			assert.Equal(t, scale >= underlineScale, style.GetUnderline())
			_, colored := style.GetForeground().(lipgloss.AdaptiveColor)
			assert.Equal(t, scale >= accentScale, colored)
		})
	}
	assert.True(t, hs[0].GetUnderline(), "the top level is underlined")
	assert.False(t, hs[5].GetUnderline())
	_, colored := hs[5].GetForeground().(lipgloss.AdaptiveColor)
	assert.False(t, colored, "body sized headings are only bold")
}
