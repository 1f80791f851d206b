// Package logger configures the global zerolog logger from command line
// options shared by every binary.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a go-flags option group.
type Logger struct {
	Level      string `long:"log-level"       env:"LOG_LEVEL"       description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format     string `long:"log-format"      env:"LOG_FORMAT"      description:"Log output format" choice:"console" choice:"json" default:"console"`
	File       string `long:"log-file"        env:"LOG_FILE"        description:"Also write JSON logs to this file, rotated"`
	MaxSizeMB  int    `long:"log-max-size"    env:"LOG_MAX_SIZE"    description:"Rotate the log file after this many megabytes" default:"32"`
	MaxBackups int    `long:"log-max-backups" env:"LOG_MAX_BACKUPS" description:"Rotated log files to keep" default:"3"`
}

// Setup installs the global logger. An unknown level falls back to info.
func (l Logger) Setup() {
	log.Logger = l.New(os.Stderr)
}

// New builds a logger writing to out, plus the rotated file if configured.
func (l Logger) New(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = out
	if l.Format != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}

	if l.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			Compress:   true,
		}
		w = zerolog.MultiLevelWriter(w, rotated)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
