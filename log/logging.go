// SPDX-License-Identifier: GPL-3.0-or-later
package log

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggersMu sync.RWMutex
	loggers   map[string]*logrus.Logger
)

func NewPrefixLogger(prefix string) *PrefixLogger {
	stringPrefix := fmt.Sprintf("%s:\t", prefix)

	formatter := &logrus.TextFormatter{}
	formatter.FullTimestamp = true
	formatter.TimestampFormat = "15:04:05"
	formatter.DisableColors = strings.Contains(runtime.GOOS, "windows")
	return &PrefixLogger{
		formatter,
		[]byte(stringPrefix),
	}
}

type PrefixLogger struct {
	formatter logrus.Formatter
	prefix    []byte
}

func (f *PrefixLogger) Format(entry *logrus.Entry) ([]byte, error) {
	text, err := f.formatter.Format(entry)
	if err != nil {
		return nil, err
	}
	return append(f.prefix, text...), nil
}

const (
	LOG_MAIN     = "MA"
	LOG_SESSION  = "SE"
	LOG_CACHE    = "CA"
	LOG_SYNC     = "SY"
	LOG_FACADE   = "FA"
	LOG_REGISTRY = "RG"
)

var prefixes = []string{
	LOG_MAIN,
	LOG_SESSION,
	LOG_CACHE,
	LOG_SYNC,
	LOG_FACADE,
	LOG_REGISTRY,
}

func getLevel(loglevel string) logrus.Level {
	switch strings.ToLower(loglevel) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "panic":
		return logrus.PanicLevel
	case "fatal":
		return logrus.FatalLevel
	}

	// Info is default
	return logrus.InfoLevel
}

func newLogger(prefix, loglevel string) *logrus.Logger {
	l := logrus.New()
	l.Level = getLevel(loglevel)
	l.Formatter = NewPrefixLogger(prefix)
	return l
}

func InitLogging(loglevel string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	loggers = make(map[string]*logrus.Logger)
	for _, prefix := range prefixes {
		loggers[prefix] = newLogger(prefix, loglevel)
	}
}

func SetLogLevel(loglevel string) {
	loggersMu.RLock()
	defer loggersMu.RUnlock()

	for _, v := range loggers {
		v.SetLevel(getLevel(loglevel))
	}
}

// Logger returns the logger registered for prefix. Packages used as a library without
// InitLogging get a logger at info level instead of a panic.
func Logger(logger string) *logrus.Logger {
	loggersMu.RLock()
	l, ok := loggers[logger]
	loggersMu.RUnlock()
	if ok {
		return l
	}

	known := false
	for _, p := range prefixes {
		if p == logger {
			known = true
			break
		}
	}
	if !known {
		panic("Logger " + logger + " unknown")
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if loggers == nil {
		loggers = make(map[string]*logrus.Logger)
	}
	if l, ok = loggers[logger]; !ok {
		l = newLogger(logger, "info")
		loggers[logger] = l
	}
	return l
}

// NullLogger discards everything, used by tests and embedders that bring their own logging.
func NullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
