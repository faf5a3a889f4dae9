package errors

import (
	"fmt"
	"os"
)

// LogHandler is a Handler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including timestamps.
	Verbose bool
}

// HandleError logs a RenderError to stderr.
func (h *LogHandler) HandleError(err *RenderError) {
	if err == nil {
		return
	}
	if h.Verbose {
		fmt.Fprintf(os.Stderr, "[render error] %s [%s] at %s: %v\n", err.Op, err.Kind, err.Timestamp.Format("15:04:05.000"), err.Err)
		return
	}
	fmt.Fprintf(os.Stderr, "[render error] %s: %v\n", err.Op, err.Err)
}
