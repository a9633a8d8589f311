package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 7
)

// New - JSON logger on stdout, mirrored into a rotating file when conf.LogFile is set.
// The returned closer releases the file and is safe to call when no file is used.
func New(conf *config.Config) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)

	if conf.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   conf.LogFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	return NewWithWriter(out, level), closer, nil
}

func NewWithWriter(out io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
