// Package logging provides the leveled, subject-prefixed logger used
// across Janus. Log lines read "<subject>: <message>" when a subject
// is given, so a line can always be traced back to the workspace or
// connection it concerns.
package logging

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Level controls which calls actually print.
type Level int32

// Levels, from quietest to loudest.
const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

var (
	level     atomic.Int32
	errors    atomic.Int64
	stdLogger = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// GetLevel returns the global log level.
func GetLevel() Level {
	return Level(level.Load())
}

// ErrorCount returns the number of Errorf calls made so far.
func ErrorCount() int64 {
	return errors.Load()
}

func prefix(subject interface{}) string {
	if subject == nil {
		return ""
	}
	if s, ok := subject.(string); ok && s == "" {
		return ""
	}
	return fmt.Sprintf("%v: ", subject)
}

func logf(lvl Level, subject interface{}, format string, args ...interface{}) {
	if Level(level.Load()) < lvl {
		return
	}
	stdLogger.Printf("%s%s", prefix(subject), fmt.Sprintf(format, args...))
}

// Debugf logs a debug-level line, only visible when the level is at
// least LevelDebug. subject may be nil.
func Debugf(subject interface{}, format string, args ...interface{}) {
	logf(LevelDebug, subject, format, args...)
}

// Infof logs an info-level line.
func Infof(subject interface{}, format string, args ...interface{}) {
	logf(LevelInfo, subject, format, args...)
}

// Logf is an alias for Infof, used for non-error status lines; like
// Infof it prints nothing when the level is below LevelInfo.
func Logf(subject interface{}, format string, args ...interface{}) {
	logf(LevelInfo, subject, format, args...)
}

// Errorf logs an error-level line unconditionally and bumps the
// process-wide error counter.
func Errorf(subject interface{}, format string, args ...interface{}) {
	errors.Add(1)
	stdLogger.Printf("%sERROR: %s", prefix(subject), fmt.Sprintf(format, args...))
}
