// Package debug is the optional file logger enabled with -d.
package debug

import (
	"log"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger *log.Logger
	file   *os.File
)

// Open starts appending debug lines to path. An empty path leaves logging off.
func Open(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	file = f
	logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	return nil
}

// SetLogger routes debug output to l; nil turns logging off.
func SetLogger(l *log.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Enabled reports whether a debug destination is configured.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return logger != nil
}

func Log(format string, v ...interface{}) {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l != nil {
		l.Printf(format, v...)
	}
}

// Close flushes and closes the debug file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
}
