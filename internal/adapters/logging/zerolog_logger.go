package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/andrescamacho/skirmish-economy-go/internal/application/common"
)

// Options selects where and how log lines are written
type Options struct {
	Level    string // debug, info, warn, error
	Format   string // json, text
	Output   string // stdout, stderr, file
	FilePath string
}

// ZerologLogger implements common.Logger on top of zerolog
type ZerologLogger struct {
	logger zerolog.Logger
}

var _ common.Logger = (*ZerologLogger)(nil)

// NewZerologLogger writes to w at the given minimum level. Text format uses
// the zerolog console writer.
func NewZerologLogger(w io.Writer, level, format string) (*ZerologLogger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return &ZerologLogger{logger: zerolog.New(w).Level(lvl).With().Timestamp().Logger()}, nil
}

// Open builds a logger from opts. The returned closer releases the log file
// when output is "file" and is a no-op otherwise.
func Open(opts Options) (*ZerologLogger, io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	switch opts.Output {
	case "", "stdout":
	case "stderr":
		w = os.Stderr
	case "file":
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	default:
		return nil, nil, fmt.Errorf("unknown log output %q", opts.Output)
	}

	logger, err := NewZerologLogger(w, opts.Level, opts.Format)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return logger, closer, nil
}

// With returns a logger that tags every line with component
func (l *ZerologLogger) With(component string) *ZerologLogger {
	return &ZerologLogger{logger: l.logger.With().Str("component", component).Logger()}
}

// Log writes message at level with metadata as structured fields
func (l *ZerologLogger) Log(level, message string, metadata map[string]interface{}) {
	var event *zerolog.Event
	switch strings.ToUpper(level) {
	case "DEBUG":
		event = l.logger.Debug()
	case "WARNING", "WARN":
		event = l.logger.Warn()
	case "ERROR":
		event = l.logger.Error()
	default:
		event = l.logger.Info()
	}
	if len(metadata) > 0 {
		event = event.Fields(metadata)
	}
	event.Msg(message)
}

func parseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
