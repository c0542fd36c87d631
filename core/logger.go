package core

// logger.go – package-level structured logger. Subsystems log through this
// handle so embedding applications can swap in their own configured instance.

import (
	log "github.com/sirupsen/logrus"
)

var coreLogger = log.New()

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	if l != nil {
		coreLogger = l
	}
}

// Logger returns the current package logger.
func Logger() *log.Logger { return coreLogger }
