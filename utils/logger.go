package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// LogSink receives every formatted log line. Sinks are append-only.
type LogSink interface {
	Append(line string)
}

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	mu    sync.RWMutex
	sinks []LogSink
}

// NewLogger creates a new Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return newLogger(os.Stdout, os.Stderr)
}

// NewDiscardLogger creates a Logger that prints nothing; sinks still receive lines.
func NewDiscardLogger() *Logger {
	return newLogger(io.Discard, io.Discard)
}

func newLogger(out, errOut io.Writer) *Logger {
	flags := 0
	return &Logger{
		info:  log.New(out, "", flags),
		warn:  log.New(out, "", flags),
		err:   log.New(errOut, "", flags),
		debug: log.New(out, "", flags),
	}
}

// AddSink attaches a sink that receives every subsequent line.
func (l *Logger) AddSink(s LogSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.emit(l.info, "\033[32mINFO\033[0m ", "INFO ", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.emit(l.warn, "\033[33mWARN\033[0m ", "WARN ", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.emit(l.err, "\033[31mERROR\033[0m", "ERROR", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.emit(l.debug, "\033[36mDEBUG\033[0m", "DEBUG", format, args...)
}

func (l *Logger) emit(dst *log.Logger, tag, plainTag, format string, args ...any) {
	ts := l.timestamp()
	msg := fmt.Sprintf(format, args...)
	dst.Printf("[%s] %s %s\n", ts, tag, msg)

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sinks {
		s.Append(fmt.Sprintf("[%s] %s %s", ts, plainTag, msg))
	}
}

// LineLog is an in-memory LogSink that keeps lines in arrival order.
type LineLog struct {
	mu    sync.Mutex
	lines []string
}

// NewLineLog creates an empty LineLog.
func NewLineLog() *LineLog {
	return &LineLog{}
}

func (ll *LineLog) Append(line string) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.lines = append(ll.lines, line)
}

// Lines returns a copy of the recorded lines.
func (ll *LineLog) Lines() []string {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	out := make([]string, len(ll.lines))
	copy(out, ll.lines)
	return out
}
