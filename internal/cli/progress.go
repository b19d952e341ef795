package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Veraticus/folderly/internal/model"
	"github.com/schollz/progressbar/v3"
)

const progressSteps = 100

// ProgressReporter renders fractional progress as a terminal bar. Its Func
// may be called from the worker goroutine.
type ProgressReporter struct {
	bar     *progressbar.ProgressBar
	writer  io.Writer
	current int
	mu      sync.Mutex
}

// NewProgressReporter creates a bar with the given description.
func NewProgressReporter(w io.Writer, description string) *ProgressReporter {
	r := &ProgressReporter{writer: w}
	r.bar = progressbar.NewOptions(progressSteps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return r
}

// Update moves the bar to fraction. Values never move the bar backwards.
func (r *ProgressReporter) Update(fraction float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step := int(min(1, max(0, fraction)) * progressSteps)
	if step <= r.current {
		return
	}
	r.current = step
	if err := r.bar.Set(step); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Current returns the last rendered step out of 100.
func (r *ProgressReporter) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Func adapts the reporter to a progress callback.
func (r *ProgressReporter) Func() model.ProgressFunc {
	return r.Update
}

// Close clears an unfinished bar, for example after a cancelled run.
func (r *ProgressReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current < progressSteps {
		if err := r.bar.Clear(); err != nil {
			slog.Debug("Failed to clear progress bar", "error", err)
		}
		if _, err := fmt.Fprintln(r.writer); err != nil {
			slog.Debug("Failed to write newline after progress bar", "error", err)
		}
	}
}
