package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar reports finished test files and the pytest case tally of a run
type ProgressBar struct {
	bar   *progressbar.ProgressBar
	files int
}

type progressSettings struct {
	out      io.Writer
	throttle time.Duration
}

// ProgressOption customizes a ProgressBar
type ProgressOption func(*progressSettings)

// WithProgressWriter renders the bar to w instead of stderr
func WithProgressWriter(w io.Writer) ProgressOption {
	return func(s *progressSettings) { s.out = w }
}

// WithProgressThrottle limits how often the bar redraws
func WithProgressThrottle(d time.Duration) ProgressOption {
	return func(s *progressSettings) { s.throttle = d }
}

// NewProgressBar creates a bar over files test files
func NewProgressBar(files int, opts ...ProgressOption) *ProgressBar {
	settings := progressSettings{out: os.Stderr, throttle: 65 * time.Millisecond}
	for _, opt := range opts {
		opt(&settings)
	}
	out := settings.out

	bar := progressbar.NewOptions(files,
		progressbar.OptionSetDescription(describeProgress(0, files, 0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionThrottle(settings.throttle),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar, files: files}
}

// Update moves the bar to completedFiles and refreshes the passed and failed case counts
func (p *ProgressBar) Update(completedFiles, passedCases, failedCases int) {
	p.bar.Describe(describeProgress(completedFiles, p.files, passedCases, failedCases))
	_ = p.bar.Set(completedFiles)
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// describeProgress renders "pytest 3/10 files  passed 12  failed 1".
// The failed count only shows once a case has failed.
func describeProgress(done, files, passed, failed int) string {
	desc := color.CyanString("pytest %d/%d files", done, files) + "  " + color.GreenString("passed %d", passed)
	if failed > 0 {
		desc += "  " + color.RedString("failed %d", failed)
	}
	return desc
}
