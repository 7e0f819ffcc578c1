package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// New returns a stdlib-backed console reporter with component prefix.
func New(component string) *log.Logger {
	return NewWithWriter(os.Stdout, component)
}

// NewWithWriter builds a reporter writing plain progress lines to w.
func NewWithWriter(w io.Writer, component string) *log.Logger {
	prefix := ""
	if component != "" {
		prefix = fmt.Sprintf("[%s] ", component)
	}
	return log.New(w, prefix, 0)
}
