package observability

import "errors"

// ErrNilConfig is returned when NewProvider is called with a nil config.
var ErrNilConfig = errors.New("observability: config is nil")

// ErrInvalidExporter is returned for an exporter name other than stdout or otlphttp.
var ErrInvalidExporter = errors.New("observability: exporter must be either 'stdout' or 'otlphttp'")
