// Package wav writes interleaved 16-bit PCM into a RIFF WAV file.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	HeaderSize    = 44
	bitsPerSample = 16
)

type Stream struct {
	path     string
	rate     int
	channels int
	frames   int64
	wav      *file
	closed   bool
}

// New creates a WAV file at the path.
// The header is reserved and written on Close when the size is known.
func New(path string, rate, channels int) (*Stream, error) {
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("wav: bad format %vHz x%v", rate, channels)
	}
	wav, err := newFile(path)
	if err != nil {
		return nil, err
	}
	// add pad for RIFF
	if err = wav.Write(make([]byte, HeaderSize)); err != nil {
		_ = wav.Close()
		return nil, err
	}
	return &Stream{path: path, rate: rate, channels: channels, wav: wav}, nil
}

func (w *Stream) Path() string { return w.path }

// Frames returns the number of written sample frames (a value per channel).
func (w *Stream) Frames() int64 { return w.frames }

// Write appends s16le PCM data.
func (w *Stream) Write(pcm []byte) error {
	if w.closed {
		return errors.New("wav: write after close")
	}
	if err := w.wav.Write(pcm); err != nil {
		return err
	}
	w.frames += int64(len(pcm) / (2 * w.channels))
	return nil
}

// WriteSilence appends n sample frames of silence.
func (w *Stream) WriteSilence(n int) error {
	if n <= 0 {
		return nil
	}
	return w.Write(make([]byte, n*2*w.channels))
}

func (w *Stream) Close() (err error) {
	if w.closed {
		return nil
	}
	w.closed = true
	err = w.wav.Flush()
	size, er := w.wav.Size()
	if er != nil {
		err = errors.Join(err, er)
	}
	if size > 0 {
		// write an actual RIFF header
		if er = w.wav.WriteAtStart(Header(uint32(size), w.rate, w.channels)); er != nil {
			err = errors.Join(err, er)
		}
		if er = w.wav.Flush(); er != nil {
			err = errors.Join(err, er)
		}
	}
	if er = w.wav.Close(); er != nil {
		err = errors.Join(err, er)
	}
	return
}

// Header creates RIFF WAV header for the file of fSize bytes.
// See: http://soundfile.sapp.org/doc/WaveFormat
func Header(fSize uint32, rate, channels int) []byte {
	const chunk = 36
	aSize := fSize - HeaderSize
	blockAlign := channels * bitsPerSample / 8
	h := make([]byte, HeaderSize)
	copy(h[0:], "RIFF")
	binary.LittleEndian.PutUint32(h[4:], aSize+chunk)
	copy(h[8:], "WAVE")
	copy(h[12:], "fmt ")
	// Subchunk1Size
	binary.LittleEndian.PutUint32(h[16:], bitsPerSample)
	// AudioFormat, PCM
	binary.LittleEndian.PutUint16(h[20:], 1)
	binary.LittleEndian.PutUint16(h[22:], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:], uint32(rate))
	// ByteRate == SampleRate * NumChannels * BitsPerSample/8
	binary.LittleEndian.PutUint32(h[28:], uint32(rate*blockAlign))
	binary.LittleEndian.PutUint16(h[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:], bitsPerSample)
	copy(h[36:], "data")
	binary.LittleEndian.PutUint32(h[40:], aSize)
	return h
}
