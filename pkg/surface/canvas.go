package surface

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is a set of drawing primitives over the surface pixels.
type Canvas struct {
	dst    *image.RGBA
	scaler draw.Scaler
}

type Option func(*Canvas)

// WithInterpolation sets the image scaling quality: nearest, bilinear
// (default) or catmullrom.
func WithInterpolation(name string) Option {
	return func(c *Canvas) { c.scaler = Interpolator(name) }
}

// Interpolator returns the scaler by its name.
func Interpolator(name string) draw.Scaler {
	switch strings.ToLower(name) {
	case "nearest":
		return draw.NearestNeighbor
	case "catmullrom":
		return draw.CatmullRom
	case "approxbilinear":
		return draw.ApproxBiLinear
	}
	return draw.BiLinear
}

func newCanvas(dst *image.RGBA, opts ...Option) *Canvas {
	c := &Canvas{dst: dst, scaler: draw.BiLinear}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Canvas) SetInterpolation(name string) { c.scaler = Interpolator(name) }

func (c *Canvas) Bounds() image.Rectangle { return c.dst.Bounds() }

// Image returns the drawing target for custom drawing code.
func (c *Canvas) Image() draw.Image { return c.dst }

// Clear replaces all the pixels with the color (blend mode "src").
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.dst, c.dst.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillRect paints the rectangle over the current pixels.
func (c *Canvas) FillRect(r image.Rectangle, col color.Color) {
	draw.Draw(c.dst, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// DrawImage scales src into the dst rectangle.
func (c *Canvas) DrawImage(dst image.Rectangle, src image.Image) {
	if dst.Size() == src.Bounds().Size() {
		draw.Draw(c.dst, dst, src, src.Bounds().Min, draw.Over)
		return
	}
	c.scaler.Scale(c.dst, dst, src, src.Bounds(), draw.Over, nil)
}

// DrawImageFit scales src to fit the rectangle keeping its aspect ratio
// and centers it.
func (c *Canvas) DrawImageFit(dst image.Rectangle, src image.Image) {
	c.DrawImage(Fit(dst, src.Bounds().Size()), src)
}

// DrawLabel writes a line of text with a dark background at x, y.
func (c *Canvas) DrawLabel(x, y int, label string) {
	draw.Draw(c.dst, image.Rect(x, y, x+len(label)*7+3, y+12), &image.Uniform{C: color.RGBA{A: 0xff}}, image.Point{}, draw.Src)
	(&font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.Int26_6((x + 2) * 64), Y: fixed.Int26_6((y + 10) * 64)},
	}).DrawString(label)
}

// Fit returns the largest rectangle of the size aspect ratio centered in r.
func Fit(r image.Rectangle, size image.Point) image.Rectangle {
	if size.X <= 0 || size.Y <= 0 {
		return image.Rectangle{}
	}
	w, h := r.Dx(), r.Dy()
	if w*size.Y > h*size.X {
		w = h * size.X / size.Y
	} else {
		h = w * size.Y / size.X
	}
	x0 := r.Min.X + (r.Dx()-w)/2
	y0 := r.Min.Y + (r.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}
