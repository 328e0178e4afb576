package logging

import (
	"fmt"
	"io"
	"strings"
)

// Supported backends.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a Logger writing JSON lines to w with the given backend and level
// ("debug", "info", "warn", "error").
func New(backend, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		l, err := NewSlogJSONLogger(level, w)
		if err != nil {
			return nil, err
		}
		return l, nil
	case BackendZap:
		l, err := NewZapJSONLogger(level, w)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
