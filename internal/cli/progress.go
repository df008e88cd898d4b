package cli

import (
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// SaveProgress draws a progress bar for a full save. Its Update method
// matches workflow.Options.OnProgress.
type SaveProgress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
}

// NewSaveProgress creates a progress bar writing to w.
func NewSaveProgress(w io.Writer) *SaveProgress {
	return &SaveProgress{writer: w}
}

// Update advances the bar, creating it on the first call once the total is known.
func (p *SaveProgress) Update(done, total int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]Saving records...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				_, _ = io.WriteString(p.writer, "\n")
			}),
		)
	}
	if err := p.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Done reports whether every record has been written.
func (p *SaveProgress) Done() bool {
	return p.bar != nil && p.bar.IsFinished()
}
