package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	output io.Writer = os.Stderr
	level            = ""
	format           = ""
)

// Configure sets the level and format used by loggers created afterwards.
// Level falls back to TIMEWARP_LOG_LEVEL, then "info". Format is "text"
// (default) or "json".
func Configure(lvl, fmtName string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	level = lvl
	format = fmtName
	for component := range loggers {
		delete(loggers, component)
	}
}

// SetOutput redirects all loggers created afterwards. A nil writer restores
// stderr.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
	for component := range loggers {
		delete(loggers, component)
	}
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// Loggers are cached per component.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	logger.SetOutput(output)

	levelStr := "info"
	if env := os.Getenv("TIMEWARP_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if level != "" {
		levelStr = level
	}
	lvl, err := logrus.ParseLevel(levelStr)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}
