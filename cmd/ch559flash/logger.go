package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ch55x-tools/ch559flash/bootloader"
)

// logrusLogger adapts logrus to bootloader.Logger.
type logrusLogger struct {
	l *log.Logger
}

var _ bootloader.Logger = (*logrusLogger)(nil)

func newLogger(l *log.Logger) *logrusLogger {
	return &logrusLogger{l: l}
}

func (g *logrusLogger) Debug(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Debug(msg)
}

func (g *logrusLogger) Info(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Info(msg)
}

func (g *logrusLogger) Warn(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Warn(msg)
}

func (g *logrusLogger) Error(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Error(msg)
}

// fields turns alternating keys and values into logrus fields.
// A trailing key without a value is kept under "extra".
func fields(kv []interface{}) log.Fields {
	f := make(log.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		f["extra"] = kv[len(kv)-1]
	}
	return f
}
