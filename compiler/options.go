package compiler

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// DefaultBuildThreshold is the element count above which list and set
// displays are built incrementally.
const DefaultBuildThreshold = 16

type config struct {
	filename       string
	logger         zerolog.Logger
	hidden         bool
	trueDivision   bool
	absoluteImport bool
	errOut         io.Writer
	buildThreshold int
}

func defaultConfig() *config {
	return &config{
		filename:       "<string>",
		logger:         zerolog.Nop(),
		errOut:         os.Stderr,
		buildThreshold: DefaultBuildThreshold,
	}
}

// Option describes a function used to configure a compilation.
type Option func(*config)

// WithFilename sets the filename recorded in every compiled unit.
func WithFilename(filename string) Option {
	return func(cfg *config) {
		cfg.filename = filename
	}
}

// WithLogger sets the logger used for debug events. Defaults to a
// disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHidden marks every compiled unit as hidden from introspection.
func WithHidden(hidden bool) Option {
	return func(cfg *config) {
		cfg.hidden = hidden
	}
}

// WithTrueDivision compiles "/" as true division.
func WithTrueDivision(enabled bool) Option {
	return func(cfg *config) {
		cfg.trueDivision = enabled
	}
}

// WithAbsoluteImport compiles imports without a leading dot as absolute
// imports rather than implicit relative ones.
func WithAbsoluteImport(enabled bool) Option {
	return func(cfg *config) {
		cfg.absoluteImport = enabled
	}
}

// WithErrorWriter sets where raw diagnostics of internal compiler errors
// are written. Defaults to os.Stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(cfg *config) {
		cfg.errOut = w
	}
}

// WithBuildThreshold sets the element count above which list and set
// displays are built one element at a time. Values below 1 are ignored.
func WithBuildThreshold(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.buildThreshold = n
		}
	}
}
