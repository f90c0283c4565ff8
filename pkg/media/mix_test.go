package media

import (
	"bytes"
	"reflect"
	"testing"
)

func sample(v ...int16) AudioSample {
	return AudioSample{Buffer: Samples(v).Bytes(), SampleRate: 44100, Channels: 2}
}

func TestMix(t *testing.T) {
	tests := []struct {
		name    string
		samples map[string]AudioSample
		want    Samples
	}{
		{name: "empty", samples: map[string]AudioSample{}, want: nil},
		{name: "two halves", samples: map[string]AudioSample{
			"a": sample(100, -100),
			"b": sample(50, 50),
		}, want: Samples{75, -25}},
		{name: "four", samples: map[string]AudioSample{
			"a": sample(400, 30000, -32768),
			"b": sample(400, 30000, -32768),
			"c": sample(400, 30000, -32768),
			"d": sample(0, 0, 0),
		}, want: Samples{300, 22500, -24576}},
		{name: "extremes", samples: map[string]AudioSample{
			"a": sample(32767, -32768),
			"b": sample(32767, -32768),
		}, want: Samples{32767, -32768}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mix(tt.samples)
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected no audio, got %v", got)
				}
				return
			}
			if s := ToSamples(got); !reflect.DeepEqual(s, tt.want) {
				t.Errorf("Mix() = %v, want %v", s, tt.want)
			}
		})
	}
}

func TestMixSinglePassThrough(t *testing.T) {
	in := sample(1, 2, 3, -4)
	got := Mix(map[string]AudioSample{"only": in})
	if !bytes.Equal(got, in.Buffer) {
		t.Fatalf("single sample changed: %v != %v", got, in.Buffer)
	}
	if &got[0] != &in.Buffer[0] {
		t.Errorf("single sample should not be copied")
	}
}

func TestMixSizedToFirst(t *testing.T) {
	got := Mix(map[string]AudioSample{
		"a": sample(10, 10, 10, 10),
		"b": sample(10, 10),
	})
	if len(got) != 8 {
		t.Fatalf("wrong size %v", len(got))
	}
	if s := ToSamples(got); !reflect.DeepEqual(s, Samples{10, 10, 5, 5}) {
		t.Errorf("wrong mix %v", s)
	}
}

func TestMixGain(t *testing.T) {
	got := MixGain(map[string]AudioSample{
		"music": sample(1000, -1000),
		"voice": sample(100, 100),
	}, map[string]float64{"music": 0.25})
	if s := ToSamples(got); !reflect.DeepEqual(s, Samples{350, -150}) {
		t.Errorf("MixGain() = %v", s)
	}

	loud := MixGain(map[string]AudioSample{"a": sample(30000)}, map[string]float64{"a": 2})
	if s := ToSamples(loud); s[0] != 32767 {
		t.Errorf("expected clamp, got %v", s)
	}

	if MixGain(nil, nil) != nil {
		t.Errorf("expected no audio")
	}
}

func BenchmarkMix(b *testing.B) {
	l := 1470 * 2
	a, c := make(Samples, l), make(Samples, l)
	for i := range a {
		a[i], c[i] = int16(i), int16(-i)
	}
	in := map[string]AudioSample{"a": {Buffer: a.Bytes()}, "c": {Buffer: c.Bytes()}}
	b.SetBytes(int64(l * 2 * 2))
	for i := 0; i < b.N; i++ {
		Mix(in)
	}
}
