package misc

import (
	"fmt"
	"log/slog"
	"strings"
)

// Logger is a printf style logger tagged with a component prefix. It satisfies
// resty.Logger so the HTTP client reports through the same slog handler.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// NewLogger create Logger instance with `prefix`.
//
//	Example:
//		log := NewLogger("Fetch")
func NewLogger(prefix string) Logger {
	return &logPrefix{
		prefix: strings.ToTitle(prefix),
	}
}

type logPrefix struct {
	prefix string
}

func (l *logPrefix) format(format string, v ...interface{}) string {
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	if l.prefix == "" {
		return msg
	}
	return fmt.Sprintf("[%s] %s", l.prefix, msg)
}

func (l *logPrefix) Debugf(format string, v ...interface{}) {
	slog.Debug(l.format(format, v...))
}

func (l *logPrefix) Infof(format string, v ...interface{}) {
	slog.Info(l.format(format, v...))
}

func (l *logPrefix) Warnf(format string, v ...interface{}) {
	slog.Warn(l.format(format, v...))
}

func (l *logPrefix) Errorf(format string, v ...interface{}) {
	slog.Error(l.format(format, v...))
}
