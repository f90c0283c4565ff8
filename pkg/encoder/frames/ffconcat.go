package frames

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/giongto35/vexport/pkg/encoder"
)

const demuxFile = "input.txt"

// writeDemuxFile makes the ffmpeg concat demuxer file of the saved frames.
//
// ffmpeg concat demuxer, see: https://ffmpeg.org/ffmpeg-formats.html#concat
// example:
//
//	ffconcat version 1.0
//	stream_meta fps '30'
//
//	file f0000001.png
//	duration 0.033333
func writeDemuxFile(dir string, names []string, times []float64, audio bool, opts encoder.Options) (err error) {
	f, err := os.Create(filepath.Join(dir, demuxFile))
	if err != nil {
		return err
	}
	defer func() {
		if er := f.Close(); err == nil {
			err = er
		}
	}()

	w := bufio.NewWriter(f)
	if _, err = w.WriteString(demux(names, times, audio, opts)); err != nil {
		return err
	}
	return w.Flush()
}

func demux(names []string, times []float64, audio bool, opts encoder.Options) string {
	b := strings.Builder{}
	b.WriteString("ffconcat version 1.0\n")
	b.WriteString(meta("v", "1"))
	b.WriteString(meta("date", time.Now().Format("20060102")))
	b.WriteString(meta("fps", opts.FrameRate))
	b.WriteString(meta("width", opts.Width))
	b.WriteString(meta("height", opts.Height))
	b.WriteString(meta("gop", opts.GOP()))
	if audio {
		b.WriteString(meta("freq", opts.AudioSampleRate))
		b.WriteString(meta("channels", opts.AudioChannelCount))
	}
	b.WriteString("\n")

	for i, name := range names {
		fmt.Fprintf(&b, "file %v\nduration %f\n", name, frameDuration(times, i, opts.FrameRate))
	}
	return b.String()
}

// frameDuration is the time until the next frame or
// the nominal frame duration for the last one.
func frameDuration(times []float64, i int, fps float64) float64 {
	if i+1 < len(times) {
		if d := times[i+1] - times[i]; d > 0 {
			return d
		}
	}
	return 1 / fps
}

// meta adds stream_meta key value line.
func meta(key string, value any) string { return fmt.Sprintf("stream_meta %s '%v'\n", key, value) }
