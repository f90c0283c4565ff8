package frames

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

const videoFile = "f%07d.png"

type pngStream struct {
	dir   string
	e     *png.Encoder
	g     errgroup.Group
	id    int
	names []string
	once  sync.Once
	err   error
}

type pool struct{ sync.Pool }

func pngBuf() *pool                      { return &pool{sync.Pool{New: func() any { return &png.EncoderBuffer{} }}} }
func (p *pool) Get() *png.EncoderBuffer  { return p.Pool.Get().(*png.EncoderBuffer) }
func (p *pool) Put(b *png.EncoderBuffer) { p.Pool.Put(b) }

func newPngStream(dir string, level int) *pngStream {
	s := &pngStream{
		dir: dir,
		e: &png.Encoder{
			CompressionLevel: png.CompressionLevel(level),
			BufferPool:       pngBuf(),
		},
	}
	s.g.SetLimit(runtime.NumCPU())
	return s
}

// Close waits for the pending images and returns the first save error.
func (p *pngStream) Close() error {
	p.once.Do(func() { p.err = p.g.Wait() })
	return p.err
}

// Write queues a copy of the image for saving.
// It blocks while all the workers are busy.
func (p *pngStream) Write(img *image.RGBA) error {
	p.id++
	name := fmt.Sprintf(videoFile, p.id)
	p.names = append(p.names, name)

	frame := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	for y := 0; y < frame.Rect.Dy(); y++ {
		i := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(frame.Pix[y*frame.Stride:(y+1)*frame.Stride], img.Pix[i:i+frame.Stride])
	}
	p.g.Go(func() error { return p.saveImage(name, frame) })
	return nil
}

func (p *pngStream) Names() []string { return p.names }

func (p *pngStream) saveImage(fileName string, img image.Image) error {
	var buf bytes.Buffer
	buf.Grow(img.Bounds().Dx() * img.Bounds().Dy() * 4)

	if err := p.e.Encode(&buf, img); err != nil {
		return fmt.Errorf("png %v: %w", fileName, err)
	}
	if err := os.WriteFile(filepath.Join(p.dir, fileName), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("png %v: %w", fileName, err)
	}
	return nil
}
