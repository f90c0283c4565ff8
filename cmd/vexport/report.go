package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/giongto35/vexport/pkg/export"
	"github.com/giongto35/vexport/pkg/logger"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progress prints a single updating line on terminals
// and a log line every 10% otherwise.
type progress struct {
	w    io.Writer
	tty  bool
	log  *logger.Logger
	last int
}

func newProgress(f *os.File, log *logger.Logger) *progress {
	return &progress{w: f, tty: isTerminal(f), log: log, last: -1}
}

func (p *progress) update(pr export.Progress) {
	if pr.TotalFrames == 0 {
		return
	}
	pct := pr.FramesCompleted * 100 / pr.TotalFrames
	if p.tty {
		_, _ = fmt.Fprintf(p.w, "\rexporting %d/%d frames %3d%%", pr.FramesCompleted, pr.TotalFrames, pct)
		return
	}
	if step := pct / 10; step > p.last {
		p.last = step
		p.log.Info().Msgf("[export] %v/%v frames", pr.FramesCompleted, pr.TotalFrames)
	}
}

func (p *progress) done() {
	if p.tty {
		_, _ = fmt.Fprintln(p.w)
	}
}

type summary struct {
	Output   string
	Size     int64
	Frames   int
	Width    int
	Height   int
	FPS      float64
	Audio    string
	Took     time.Duration
	AvgFrame time.Duration
	Uploaded string
}

func (s summary) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Export", ""})
	tw.AppendRows([]table.Row{
		{"Output", s.Output},
		{"Size", byteSize(s.Size)},
		{"Frames", s.Frames},
		{"Resolution", fmt.Sprintf("%dx%d", s.Width, s.Height)},
		{"Frame rate", s.FPS},
		{"Audio", s.Audio},
		{"Took", s.Took.Round(time.Millisecond)},
		{"Frame time", s.AvgFrame.Round(time.Microsecond)},
	})
	if s.Uploaded != "" {
		tw.AppendRow(table.Row{"Uploaded", s.Uploaded})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func byteSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
