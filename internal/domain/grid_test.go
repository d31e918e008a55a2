package domain

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageGrid(t *testing.T) {
	t.Run("bounds and color lookup", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 3))
		img.Set(1, 2, color.RGBA{R: 173, G: 252, B: 0, A: 255})

		grid := NewImageGrid(img)
		width, height := grid.Bounds()
		assert.Equal(t, 4, width)
		assert.Equal(t, 3, height)
		assert.Equal(t, RGB{R: 173, G: 252, B: 0}, grid.ColorAt(1, 2))
		assert.Equal(t, RGB{}, grid.ColorAt(0, 0))
	})

	t.Run("non-origin bounds are normalized", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(10, 10, 14, 13))
		img.Set(11, 12, color.RGBA{R: 252, G: 125, B: 0, A: 255})

		grid := NewImageGrid(img)
		width, height := grid.Bounds()
		assert.Equal(t, 4, width)
		assert.Equal(t, 3, height)
		assert.Equal(t, RGB{R: 252, G: 125, B: 0}, grid.ColorAt(1, 2))
	})

	t.Run("paletted image", func(t *testing.T) {
		palette := color.Palette{color.RGBA{A: 255}, color.RGBA{R: 0, G: 180, B: 212, A: 255}}
		img := image.NewPaletted(image.Rect(0, 0, 2, 2), palette)
		img.SetColorIndex(1, 1, 1)

		grid := NewImageGrid(img)
		assert.Equal(t, RGB{R: 0, G: 180, B: 212}, grid.ColorAt(1, 1))
	})
}
