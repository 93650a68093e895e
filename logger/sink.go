package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink is one destination of log records together with the minimum level it accepts.
type Sink struct {
	Writer io.Writer
	Level  zerolog.Level

	closer io.Closer
}

// NewSink wraps an arbitrary writer as a sink accepting records at level and above.
func NewSink(w io.Writer, level zerolog.Level) Sink {
	return Sink{Writer: w, Level: level}
}

// levelFilter drops records below min before they reach the wrapped writer.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f *levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

// FileOptions describes a rotating file sink.
type FileOptions struct {
	Path     string
	Level    string
	MaxBytes int64
	Backups  int

	// Dated switches from numbered segments (path.1, path.2, ...) to
	// lumberjack's timestamped backups, which rotate at megabyte granularity.
	Dated      bool
	MaxAgeDays int
	Compress   bool
}

// NewFileSink opens the log file described by opts and returns a sink that
// writes formatted lines to it. The parent directory must already exist.
func NewFileSink(opts FileOptions) (Sink, error) {
	var w io.WriteCloser
	if opts.Dated {
		if err := probeWritable(opts.Path); err != nil {
			return Sink{}, err
		}
		w = &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    megabytes(opts.MaxBytes),
			MaxBackups: opts.Backups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
	} else {
		rf, err := OpenRotatingFile(opts.Path, opts.MaxBytes, opts.Backups)
		if err != nil {
			return Sink{}, err
		}
		w = rf
	}

	return Sink{
		Writer: NewLineWriter(w),
		Level:  ParseLevel(opts.Level),
		closer: w,
	}, nil
}

// NewConsoleSink returns a sink writing formatted lines to stdout.
func NewConsoleSink(level string) Sink {
	return Sink{Writer: NewLineWriter(os.Stdout), Level: ParseLevel(level)}
}

// probeWritable opens path for appending without creating missing directories.
func probeWritable(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	return f.Close()
}

// megabytes rounds a byte threshold up to lumberjack's unit.
func megabytes(n int64) int {
	const mb = 1024 * 1024
	if n <= 0 {
		return 1
	}
	return int((n + mb - 1) / mb)
}
