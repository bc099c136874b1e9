package cli

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ambiyansyah-risyal/corkboard/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the CLI logger. Logs go to stderr unless a file is
// configured, in which case they go to a size-rotated file instead.
func newLogger(cfg config.LogConfig, stderr io.Writer, verbose bool) (zerolog.Logger, io.Closer, error) {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		level = parsed
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	var (
		out    io.Writer = stderr
		closer io.Closer = nopCloser{}
		color            = true
	)
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		out = rotating
		closer = rotating
		color = false
	}

	var w io.Writer = out
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: out, NoColor: !color}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}
