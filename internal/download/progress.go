package download

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Progress is reported after every chunk. Total is an estimate when the
// server sent no Content-Length, so Percent may stall below or pass 100.
type Progress struct {
	Downloaded int64
	Total      int64
}

func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Downloaded) * 100 / float64(p.Total)
}

// Listener observes a running transfer.
type Listener func(p Progress)

var doNothingListener Listener = func(Progress) {
	// Substitution when listener is passed as nil
}

// NewConsoleProgress returns a Listener redrawing a single status line on w.
func NewConsoleProgress(w io.Writer) Listener {
	return func(p Progress) {
		_, _ = fmt.Fprintf(w, "\r    downloaded: %s (%.2f%%)", humanize.IBytes(uint64(p.Downloaded)), p.Percent())
	}
}
