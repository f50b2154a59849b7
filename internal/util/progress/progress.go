package progress

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/schollz/progressbar/v3"
)

// New returns a progress bar for total steps, or nil when disabled or
// there is nothing to track. A nil bar is accepted by Add.
func New(total int, description string, enabled bool) *progressbar.ProgressBar {
	if !enabled || total <= 0 {
		return nil
	}
	return progressbar.Default(int64(total), description)
}

// Add increments the progress bar while safely handling errors.
func Add(bar *progressbar.ProgressBar, n int) {
	if bar == nil || n == 0 {
		return
	}

	if err := bar.Add(n); err != nil {
		log.Debug("Failed to update progress bar", "err", err)
	}
}
