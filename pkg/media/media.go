// Package media holds the decoded frame slice types shared by the
// extractor, the pipeline and the encoders, and the default audio mixer.
package media

import (
	"encoding/binary"
	"image"
)

// BytesPerSample is the width of one interleaved PCM value (s16le).
const BytesPerSample = 2

type (
	// VideoFrame is a decoded video frame of one composition item.
	// The pixel data is owned by the extractor and stays valid only until
	// the next decode call.
	VideoFrame struct {
		Image *image.RGBA
		// Time is the item-local presentation time in seconds.
		Time float64
	}

	// AudioSample is a slice of interleaved signed 16-bit little-endian PCM.
	AudioSample struct {
		Buffer           []byte
		PresentationTime float64
		Duration         float64
		SampleRate       int
		Channels         int
	}

	// Samples is PCM data as int16 values.
	Samples []int16
)

func (f VideoFrame) Width() int  { return f.Image.Bounds().Dx() }
func (f VideoFrame) Height() int { return f.Image.Bounds().Dy() }

// Len returns the number of int16 values in the buffer.
func (a AudioSample) Len() int { return len(a.Buffer) / BytesPerSample }

// SliceBytes returns the byte size of n sample frames in the given layout.
func SliceBytes(frames, channels int) int { return frames * channels * BytesPerSample }

// ToSamples decodes little-endian PCM bytes.
func ToSamples(b []byte) Samples {
	s := make(Samples, len(b)/BytesPerSample)
	for i := range s {
		s[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return s
}

// Bytes encodes samples as little-endian PCM.
func (s Samples) Bytes() []byte {
	b := make([]byte, len(s)*BytesPerSample)
	for i, v := range s {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}
