package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Zerolog is a Logger backed by zerolog, used in place of Slog when a
// deployment needs rotating file output (call recordings directories and
// Via/registrar audit trails tend to run long-lived and unattended).
type Zerolog struct {
	log zerolog.Logger
}

// ZerologOption configures the writer and level a Zerolog instance logs
// through.
type ZerologOption func(*zerologConfig)

type zerologConfig struct {
	writer io.Writer
	level  zerolog.Level
}

// WithZerologWriter sets the destination for log events. Defaults to
// os.Stdout.
func WithZerologWriter(w io.Writer) ZerologOption {
	return func(cfg *zerologConfig) {
		if w != nil {
			cfg.writer = w
		}
	}
}

// WithZerologLevel sets the minimum level that reaches the writer.
func WithZerologLevel(level zerolog.Level) ZerologOption {
	return func(cfg *zerologConfig) {
		cfg.level = level
	}
}

// RotatingFileWriter returns an io.Writer that rotates the named log file
// by size via lumberjack, suitable for WithZerologWriter. maxSizeMB is the
// size at which a new file is cut; maxBackups/maxAgeDays bound retention.
func RotatingFileWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
}

// NewZerolog creates a new Zerolog logger using functional options.
func NewZerolog(opts ...ZerologOption) *Zerolog {
	cfg := zerologConfig{
		writer: os.Stdout,
		level:  zerolog.InfoLevel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Zerolog{
		log: zerolog.New(cfg.writer).Level(cfg.level).With().Timestamp().Logger(),
	}
}

func (z *Zerolog) event(level zerolog.Level, msg string, args ...any) {
	ev := z.log.WithLevel(level)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, args[i+1])
	}
	ev.Msg(msg)
}

func (z *Zerolog) Debug(msg string, args ...any) { z.event(zerolog.DebugLevel, msg, args...) }
func (z *Zerolog) Info(msg string, args ...any)  { z.event(zerolog.InfoLevel, msg, args...) }
func (z *Zerolog) Warn(msg string, args ...any)  { z.event(zerolog.WarnLevel, msg, args...) }
func (z *Zerolog) Error(msg string, args ...any) { z.event(zerolog.ErrorLevel, msg, args...) }

func (z *Zerolog) Fatal(msg string, args ...any) {
	z.event(zerolog.FatalLevel, msg, args...)
	//nolint:revive // exit on fatal log
	os.Exit(1)
}

func (z *Zerolog) With(args ...any) *Zerolog {
	ctx := z.log.With()
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, args[i+1])
	}

	return &Zerolog{log: ctx.Logger()}
}
