package logging

import (
	"io"
	"log"
	"os"

	"elsa-proficiency-test/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger at stderr and, when a file is configured, a
// rotating log file. The returned closer releases the file.
func Setup(cfg config.Config) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if cfg.Log.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}
	file := NewRotatingFile(cfg)
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file
}

func NewRotatingFile(cfg config.Config) *lumberjack.Logger {
	maxSize := cfg.Log.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := cfg.Log.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}
	maxAge := cfg.Log.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 28
	}
	return &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
