package bootloader

import (
	"time"

	"github.com/ch55x-tools/ch559flash/protocol"
)

// Operation phases reported through Progress.
const (
	PhaseErasing   = "erasing"
	PhaseReading   = "reading"
	PhaseWriting   = "writing"
	PhaseVerifying = "verifying"
)

// Progress contains information about a running flash operation.
// Passed to ProgressCallback after every chunk.
type Progress struct {
	// Phase is one of PhaseErasing, PhaseReading, PhaseWriting, PhaseVerifying
	Phase string

	// Region is the flash region being processed
	Region protocol.Region

	// Done is the number of region bytes processed so far
	Done int

	// Total is the number of region bytes the operation covers
	Total int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called after each processed chunk.
// Implementations should return quickly; the device waits on the next request.
//
// Example:
//
//	s, err := bootloader.Open(ctx,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s %s] %.1f%%\n", p.Phase, p.Region, p.Percentage)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the session.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Warn(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a notice that does not stop the operation
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
