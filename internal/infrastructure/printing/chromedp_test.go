package printing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
)

func TestCompleteHTML(t *testing.T) {
	t.Run("wraps fragments", func(t *testing.T) {
		out := completeHTML(Document{HTML: "<p>hi</p>", Title: "A & B"})
		assert.Contains(t, out, "<!DOCTYPE html>")
		assert.Contains(t, out, "<title>A &amp; B</title>")
		assert.Contains(t, out, "<body><p>hi</p></body>")
	})

	t.Run("keeps full documents", func(t *testing.T) {
		doc := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, doc, completeHTML(Document{HTML: doc}))
	})
}

func TestPrintParams(t *testing.T) {
	p := printParams(Document{Landscape: true, Footer: "<div>footer</div>"})

	assert.True(t, p.Landscape)
	assert.True(t, p.DisplayHeaderFooter)
	assert.Equal(t, "<div>footer</div>", p.FooterTemplate)
	assert.InDelta(t, 8.27, p.PaperWidth, 0.01)
	assert.InDelta(t, 11.69, p.PaperHeight, 0.01)

	plain := printParams(Document{})
	assert.False(t, plain.DisplayHeaderFooter)
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(config.PDFConfig{}, nil)
	defer r.Close()

	_, err := r.Render(context.Background(), Document{HTML: "   "})

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, FailureInput, re.Kind)
}
