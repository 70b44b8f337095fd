package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// ToImage converts a Draw buffer into an opaque grey image using byte 1.
func ToImage(buf []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadSize
	}
	if len(buf) < width*height*4 {
		return nil, ErrBufferTooSmall
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := buf[(y*width+x)*4+1]
			img.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img, nil
}

// Frame draws the current scene into a fresh buffer and returns it as an
// image. An empty scene yields a black frame.
func (r *Renderer) Frame(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadSize
	}
	buf := make([]byte, width*height*4)
	if err := r.Draw(buf, width, height); err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	return ToImage(buf, width, height)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
