package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is a named component logger. Every line carries the component
// name as a "[name>]" prefix after the level.
type Logger struct {
	name string
	std  *log.Logger
}

// Level names written in front of each line.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

var (
	mu          sync.RWMutex
	output      io.Writer = os.Stderr
	globalDebug bool
	debugFor    = map[string]bool{}
	loggers     = map[string]*Logger{}
)

// ForService returns the memoized logger for a component such as "search"
// or "storage".
func ForService(name string) *Logger {
	if name == "" {
		name = "unknown"
	}

	mu.RLock()
	l, ok := loggers[name]
	mu.RUnlock()
	if ok {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	l = &Logger{name: name, std: log.New(output, "", log.LstdFlags|log.Lmicroseconds)}
	loggers[name] = l
	return l
}

// SetOutput redirects every logger, existing and future, to w.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	output = w
	for _, l := range loggers {
		l.std.SetOutput(w)
	}
}

// SetGlobalDebug toggles debug output for all components.
func SetGlobalDebug(enabled bool) {
	mu.Lock()
	globalDebug = enabled
	mu.Unlock()
}

// GlobalDebug reports whether debug output is enabled for all components.
func GlobalDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return globalDebug
}

// EnableDebugFor turns on debug output for a single component.
func EnableDebugFor(name string) {
	mu.Lock()
	debugFor[name] = true
	mu.Unlock()
}

// DisableDebugFor turns off the per-component debug override.
func DisableDebugFor(name string) {
	mu.Lock()
	delete(debugFor, name)
	mu.Unlock()
}

// DebugEnabledFor reports whether name emits debug lines.
func DebugEnabledFor(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return globalDebug || debugFor[name]
}

func (l *Logger) emit(level, format string, args ...any) {
	l.std.Println(level + " [" + l.name + ">] " + fmt.Sprintf(format, args...))
}

// Name returns the component name.
func (l *Logger) Name() string { return l.name }

func (l *Logger) Infof(format string, args ...any)  { l.emit(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.emit(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.emit(LevelError, format, args...) }

// Debugf logs only when debug is enabled globally or for this component.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.emit(LevelDebug, format, args...)
}
