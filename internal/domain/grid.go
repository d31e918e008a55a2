package domain

import "image"

// PixelGrid is a fully materialized 2-D color grid. The analysis pass
// bounds-checks every sample itself, so implementations may assume
// 0 <= x < width and 0 <= y < height.
type PixelGrid interface {
	Bounds() (width, height int)
	ColorAt(x, y int) RGB
}

// ImageGrid adapts a decoded image.Image to PixelGrid. Coordinates are
// relative to the image's top-left corner regardless of its declared
// bounds origin.
type ImageGrid struct {
	img image.Image
}

func NewImageGrid(img image.Image) *ImageGrid {
	return &ImageGrid{img: img}
}

func (g *ImageGrid) Bounds() (int, int) {
	b := g.img.Bounds()
	return b.Dx(), b.Dy()
}

func (g *ImageGrid) ColorAt(x, y int) RGB {
	b := g.img.Bounds()
	r, gr, bl, _ := g.img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(gr >> 8), B: uint8(bl >> 8)}
}
