package output

import (
	"io"

	"github.com/cheggaaa/pb/v3"
)

const progressTemplate = `{{counters . }} {{bar . }} {{percent . }} {{string . "path"}}`

// ProgressBar shows how many file pairs have been compared
type ProgressBar struct {
	bar *pb.ProgressBar
}

// NewProgressBar starts a bar for total file pairs on w
func NewProgressBar(total int, w io.Writer) *ProgressBar {
	bar := pb.New(total)
	bar.SetWriter(w)
	bar.SetTemplateString(progressTemplate)
	bar.Start()
	return &ProgressBar{bar: bar}
}

// Increment advances the bar and shows the last compared path
func (p *ProgressBar) Increment(path string) {
	p.bar.Set("path", path)
	p.bar.Increment()
}

// Current returns the number of increments so far
func (p *ProgressBar) Current() int64 {
	return p.bar.Current()
}

// Finish stops the bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}
