package blogsite

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger builds the site logger from cfg. The returned closer releases
// the log file, if any.
func SetupLogger(cfg SiteConfig) (*logrus.Logger, io.Closer) {
	log := logrus.New()
	if cfg.LogFormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	log.SetLevel(LogLevel(cfg.LogLevel))

	if cfg.LogsPath == "" {
		log.SetOutput(os.Stdout)
		return log, nopCloser{}
	}

	path := cfg.LogsPath
	if !strings.HasSuffix(path, ".log") {
		path += ".log"
	}
	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		Compress:   true,
	}
	if cfg.LogToStdout {
		log.SetOutput(combinedWriter{os.Stdout, rotated})
	} else {
		log.SetOutput(rotated)
	}
	return log, rotated
}

// LogLevel maps a config level name to a logrus level. Unknown names fall
// back to info.
func LogLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// combinedWriter writes every line to all writers, reporting every failure.
type combinedWriter []io.Writer

func (cw combinedWriter) Write(p []byte) (int, error) {
	var err error
	for _, w := range cw {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	return len(p), err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
