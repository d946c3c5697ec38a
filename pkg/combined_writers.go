package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans a write out to all of its writers. A failing writer
// does not stop the others; all errors are combined and returned.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

// Write reports len(p) when at least one writer accepted the whole payload.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		err       error
		succeeded int
	)
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr == nil && written < len(p) {
			werr = io.ErrShortWrite
		}
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		succeeded++
	}
	if succeeded == 0 && len(cw.Writers) > 0 {
		return 0, err
	}
	return len(p), err
}
