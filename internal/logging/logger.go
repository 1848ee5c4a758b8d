package logging

import "log"

// Logger is the minimal logging contract the core packages depend on.
// Absence of a logger never breaks functionality: pass Nop() instead.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// stdLogger adapts the standard library logger.
type stdLogger struct {
	l     *log.Logger
	debug bool
}

// New wraps the given *log.Logger. If l is nil, log.Default() is used.
func New(l *log.Logger, debug bool) Logger {
	if l == nil {
		l = log.Default()
	}
	return &stdLogger{l: l, debug: debug}
}

func (s *stdLogger) Debugf(format string, args ...interface{}) {
	if s.debug {
		s.l.Printf("DEBUG "+format, args...)
	}
}

func (s *stdLogger) Infof(format string, args ...interface{}) {
	s.l.Printf(format, args...)
}

func (s *stdLogger) Warnf(format string, args ...interface{}) {
	s.l.Printf("⚠️  "+format, args...)
}

func (s *stdLogger) Errorf(format string, args ...interface{}) {
	s.l.Printf("❌ "+format, args...)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}
