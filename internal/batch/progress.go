package batch

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"mediaforge/internal/engine"
)

// fileBar renders one file's progress. A nil writer disables rendering.
type fileBar struct {
	bar *progressbar.ProgressBar
}

func newProgressBar(w io.Writer, description string, duration time.Duration) *fileBar {
	if w == nil {
		return &fileBar{}
	}
	total := 100
	if duration <= 0 {
		// Spinner mode.
		total = -1
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)
	return &fileBar{bar: bar}
}

func (b *fileBar) update(p engine.Progress) {
	if b.bar == nil {
		return
	}
	if p.Percent < 0 {
		_ = b.bar.Add(1)
		return
	}
	_ = b.bar.Set(int(p.Percent))
}

func (b *fileBar) finish(ok bool) {
	if b.bar == nil {
		return
	}
	if ok {
		_ = b.bar.Finish()
		return
	}
	_ = b.bar.Exit()
}
