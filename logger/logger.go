package logger

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// TimestampLayout is the layout of the timestamp written at the start of every line.
const TimestampLayout = "2006-01-02 15:04:05,000"

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
// Records are fanned out to the sinks the logger was built with; a logger
// built without sinks discards everything.
type ZeroLogger struct {
	zlog     *zerolog.Logger
	redactor *Redactor
	closers  []io.Closer
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// timestampHook stamps each record with a millisecond-precision local time.
type timestampHook struct {
	now func() time.Time
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, h.now().Format(TimestampLayout))
}

// New creates a ZeroLogger with the given minimum level writing to sinks.
// An unparsable level falls back to info.
func New(level string, sinks ...Sink) *ZeroLogger {
	writers := make([]io.Writer, 0, len(sinks))
	var closers []io.Closer
	for _, s := range sinks {
		writers = append(writers, &levelFilter{w: s.Writer, min: s.Level})
		if s.closer != nil {
			closers = append(closers, s.closer)
		}
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(timestampHook{now: time.Now}).
		With().
		CallerWithSkipFrameCount(3).
		Logger().
		Level(ParseLevel(level))

	return &ZeroLogger{zlog: &l, redactor: NewRedactor(), closers: closers}
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	zLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return zLevel
}

// WithContext returns a logger with context information attached.
func (l *ZeroLogger) WithContext(ctx any) Logger {
	if c, ok := ctx.(context.Context); ok {
		zl := zerolog.Ctx(c)
		if zl == nil || zl.GetLevel() == zerolog.Disabled {
			return l
		}
		return &ZeroLogger{zlog: zl, redactor: l.redactor}
	}
	return l
}

// WithFields returns a logger with additional fields attached to all log entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.redactor != nil {
		fields = l.redactor.FilterFields(fields)
	}
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log, redactor: l.redactor}
}

// Close releases the files held by the logger's sinks. Loggers derived with
// WithFields share the sinks and must not be used after Close.
func (l *ZeroLogger) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}
