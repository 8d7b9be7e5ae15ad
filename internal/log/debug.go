// Package log is the process-wide debug log for lazyplaylist.
//
// Messages written before a destination is chosen are held in memory. Once the
// startup code has read flags and config it either points the log at a file
// (flushing what was held) or turns it off, discarding everything.
package log

import (
	"log"
	"os"
	"sync"
)

// sink buffers log output until SetFile decides where it goes.
type sink struct {
	mu      sync.Mutex
	file    *os.File
	pending []byte
	off     bool
}

var (
	debugSink = &sink{}
	logger    = log.New(debugSink, "", log.LstdFlags|log.Lmicroseconds)
)

// Write implements io.Writer.
func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.off {
		return len(p), nil
	}
	if s.file != nil {
		n, err := s.file.Write(p)
		_ = s.file.Sync()
		return n, err
	}

	// p may be reused by the caller.
	s.pending = append(s.pending, p...)
	return len(p), nil
}

// SetFile routes the log to path, creating it if needed and appending otherwise.
// An empty path turns the log off and drops anything buffered.
func SetFile(path string) error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()

	if debugSink.file != nil {
		_ = debugSink.file.Close()
		debugSink.file = nil
	}

	if path == "" {
		debugSink.off = true
		debugSink.pending = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		debugSink.off = true
		debugSink.pending = nil
		return err
	}

	debugSink.file = f
	debugSink.off = false
	if len(debugSink.pending) > 0 {
		_, _ = f.Write(debugSink.pending)
		_ = f.Sync()
		debugSink.pending = nil
	}
	return nil
}

// Printf writes a formatted debug line.
func Printf(format string, args ...any) {
	logger.Printf(format, args...)
}

// Println writes a debug line.
func Println(v ...any) {
	logger.Println(v...)
}

// Close closes the log file if one is open.
func Close() error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()

	if debugSink.file == nil {
		return nil
	}
	err := debugSink.file.Close()
	debugSink.file = nil
	return err
}
