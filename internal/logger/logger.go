// Package logger configures the process-wide structured loggers. Info and
// error streams are rotated separately so operational noise does not bury
// failures.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	// Safe defaults so packages can log before InitLoggers runs (tests).
	InfoLogger = logrus.New()
	ErrorLogger = logrus.New()
}

// InitLoggers points the loggers at rotated files under logDir and mirrors
// output to stderr. Call once at process start.
func InitLoggers(logDir string) {
	if logDir == "" {
		logDir = "logs"
	}
	_ = os.MkdirAll(logDir, 0o755)

	InfoLogger = newLogger(logDir+"/info.log", logrus.InfoLevel)
	ErrorLogger = newLogger(logDir+"/error.log", logrus.ErrorLevel)
}

func newLogger(path string, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
	l.AddHook(&stderrHook{})
	return l
}

// stderrHook mirrors every entry to stderr in text form.
type stderrHook struct{}

func (h *stderrHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *stderrHook) Fire(entry *logrus.Entry) error {
	line, err := (&logrus.TextFormatter{}).Format(entry)
	if err != nil {
		return err
	}
	_, err = os.Stderr.Write(line)
	return err
}
