package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const spinnerTick = 100 * time.Millisecond

// WithSpinner shows an indeterminate spinner on w while fn runs and clears
// it afterwards. fn's error is returned unchanged.
func WithSpinner(w io.Writer, description string, fn func() error) error {
	if w == nil {
		w = os.Stderr
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(spinnerTick/2),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := bar.Add(1); err != nil {
					slog.Debug("Failed to advance spinner", "error", err)
				}
			}
		}
	}()

	err := fn()
	close(done)
	<-stopped

	if finishErr := bar.Finish(); finishErr != nil {
		slog.Debug("Failed to clear spinner", "error", finishErr)
	}
	return err
}
