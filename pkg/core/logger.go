package core

import "log"

// stdLogger implements Logger by writing to a standard library
// *log.Logger, following the teacher's own DefaultLogger (writes to
// stdout) but routed through log.Logger so timestamps/prefixes are
// configurable by the caller.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger wraps l as a Logger. A nil l wraps log.Default().
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}
	return &stdLogger{l: l}
}

func (s *stdLogger) Printf(format string, args ...interface{}) {
	s.l.Printf(format, args...)
}
