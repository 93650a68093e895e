package logger

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var levelNames = map[string]string{
	zerolog.LevelTraceValue: "DEBUG",
	zerolog.LevelDebugValue: "DEBUG",
	zerolog.LevelInfoValue:  "INFO",
	zerolog.LevelWarnValue:  "WARNING",
	zerolog.LevelErrorValue: "ERROR",
	zerolog.LevelFatalValue: "CRITICAL",
	zerolog.LevelPanicValue: "CRITICAL",
}

// NewLineWriter returns a writer that turns zerolog JSON records into lines of the form
//
//	2024-01-02 15:04:05,000 INFO: message [in file.go: 42] key=value
func NewLineWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:     out,
		NoColor: true,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
			zerolog.CallerFieldName,
		},
		FormatTimestamp: func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
		FormatLevel:   formatLevel,
		FormatMessage: func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
		FormatCaller: formatCaller,
	}
}

func formatLevel(i any) string {
	s, _ := i.(string)
	if name, ok := levelNames[s]; ok {
		return name + ":"
	}
	return strings.ToUpper(s) + ":"
}

// formatCaller renders "/path/to/file.go:42" as "[in file.go: 42]".
func formatCaller(i any) string {
	s, ok := i.(string)
	if !ok || s == "" {
		return ""
	}
	file, line := s, ""
	if idx := strings.LastIndex(s, ":"); idx > 0 {
		file, line = s[:idx], s[idx+1:]
	}
	return fmt.Sprintf("[in %s: %s]", filepath.Base(file), line)
}
