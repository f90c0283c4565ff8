package media

import (
	"encoding/binary"
	"math"
	"sort"
)

// Mix combines the audio samples of one time slice into a single buffer.
//
// No samples give nil, so nothing should be encoded for the slice.
// A single sample is returned as is.
// Several samples are summed with the uniform 1/N gain, which keeps the
// result inside the int16 range as long as the inputs share the same
// layout. The output has the byte length of the first sample (by ID).
func Mix(samples map[string]AudioSample) []byte {
	switch len(samples) {
	case 0:
		return nil
	case 1:
		for _, s := range samples {
			return s.Buffer
		}
	}
	scale := 1.0 / float64(len(samples))
	gains := make(map[string]float64, len(samples))
	for id := range samples {
		gains[id] = scale
	}
	return mix(samples, gains)
}

// MixGain sums the samples with an individual gain for each source.
// Sources without a gain entry are mixed with the gain of 1.
// Values are clamped to the int16 range.
func MixGain(samples map[string]AudioSample, gains map[string]float64) []byte {
	if len(samples) == 0 {
		return nil
	}
	g := make(map[string]float64, len(samples))
	for id := range samples {
		v, ok := gains[id]
		if !ok {
			v = 1
		}
		g[id] = v
	}
	return mix(samples, g)
}

func mix(samples map[string]AudioSample, gains map[string]float64) []byte {
	ids := make([]string, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	n := samples[ids[0]].Len()
	acc := make([]float64, n)
	for _, id := range ids {
		buf, gain := samples[id].Buffer, gains[id]
		if gain == 0 {
			continue
		}
		// inputs are expected to be of the same length
		m := len(buf) / BytesPerSample
		if m > n {
			m = n
		}
		for i := 0; i < m; i++ {
			acc[i] += float64(int16(binary.LittleEndian.Uint16(buf[i*2:]))) * gain
		}
	}

	out := make([]byte, len(samples[ids[0]].Buffer))
	for i, v := range acc {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(clamp(v)))
	}
	return out
}

func clamp(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
