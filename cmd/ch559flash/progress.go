package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/ch55x-tools/ch559flash/bootloader"
	"github.com/ch55x-tools/ch559flash/protocol"
)

// progressSink draws one bar per phase and region.
type progressSink struct {
	w      io.Writer
	bar    *progressbar.ProgressBar
	phase  string
	region protocol.Region
}

func newProgressSink(w io.Writer) *progressSink {
	return &progressSink{w: w}
}

// Update is a bootloader.ProgressCallback.
func (p *progressSink) Update(pr bootloader.Progress) {
	if p.bar == nil || pr.Phase != p.phase || pr.Region != p.region {
		p.Finish()
		p.phase, p.region = pr.Phase, pr.Region
		p.bar = progressbar.NewOptions(pr.Total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(fmt.Sprintf("%s %s", pr.Phase, pr.Region)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.w) }),
		)
	}
	_ = p.bar.Set(pr.Done)
}

// Finish completes the current bar, if any.
func (p *progressSink) Finish() {
	if p.bar == nil {
		return
	}
	if !p.bar.IsFinished() {
		_ = p.bar.Finish()
	}
	p.bar = nil
}
