package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"telemetry-service/internal/config"
)

// Logger writes to stdout and a rotating file under the configured log dir.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

func New(cfg config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Log.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create logs folder failed: %v", err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Log.Dir, "service.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 7,
		MaxAge:     30, // days
		Compress:   true,
	}

	l := newLogrus(io.MultiWriter(file, os.Stdout))
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return &Logger{Logger: l, file: file}, nil
}

// NewWithWriter builds a Logger without a backing file.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{Logger: newLogrus(w)}
}

func newLogrus(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	return l
}

func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.WithField("request_id", requestID)
}

func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}
