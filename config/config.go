// Package config handles tessera.toml compiler configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/risor-io/tessera/compiler"
)

// FileName is the name of the configuration file looked up by FindAndLoad.
const FileName = "tessera.toml"

// Options is a tessera.toml document.
type Options struct {
	Compiler CompilerConfig `toml:"compiler"`
	Log      LogConfig      `toml:"log"`

	// Path is the file the options were loaded from, if any.
	Path string `toml:"-"`
}

// CompilerConfig mirrors the options of the compiler package.
type CompilerConfig struct {
	Filename       string `toml:"filename"`
	Hidden         bool   `toml:"hidden"`
	TrueDivision   bool   `toml:"true-division"`
	AbsoluteImport bool   `toml:"absolute-import"`
	BuildThreshold int    `toml:"build-threshold"`
}

// LogConfig configures the compiler's debug logger.
type LogConfig struct {
	Level   string `toml:"level"`
	Console bool   `toml:"console"`
}

// Default returns the options used when no file is present.
func Default() *Options {
	return &Options{
		Compiler: CompilerConfig{
			Filename:       "<string>",
			BuildThreshold: compiler.DefaultBuildThreshold,
		},
		Log: LogConfig{Level: "disabled"},
	}
}

// Parse decodes a TOML document. Keys that are absent keep their defaults;
// unknown keys are an error.
func Parse(data []byte) (*Options, error) {
	opts := Default()
	md, err := toml.Decode(string(data), opts)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return opts, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	opts, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts.Path = path
	return opts, nil
}

// FindAndLoad walks up from startDir looking for a tessera.toml file. When
// none is found it returns the default options.
func FindAndLoad(startDir string) (*Options, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate reports every invalid setting.
func (o *Options) Validate() error {
	var result error
	if o.Compiler.Filename == "" {
		result = multierror.Append(result, errors.New("compiler.filename must not be empty"))
	}
	if o.Compiler.BuildThreshold < 1 {
		result = multierror.Append(result,
			fmt.Errorf("compiler.build-threshold must be positive, got %d", o.Compiler.BuildThreshold))
	}
	if _, err := zerolog.ParseLevel(o.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}
	return result
}

// Logger returns the logger described by the log section, writing to w.
func (o *Options) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(o.Log.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if level == zerolog.Disabled {
		return zerolog.Nop(), nil
	}
	if o.Log.Console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// CompilerOptions validates the options and converts them into compiler
// options. Log output and error diagnostics go to w.
func (o *Options) CompilerOptions(w io.Writer) ([]compiler.Option, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	logger, err := o.Logger(w)
	if err != nil {
		return nil, err
	}
	return []compiler.Option{
		compiler.WithFilename(o.Compiler.Filename),
		compiler.WithHidden(o.Compiler.Hidden),
		compiler.WithTrueDivision(o.Compiler.TrueDivision),
		compiler.WithAbsoluteImport(o.Compiler.AbsoluteImport),
		compiler.WithBuildThreshold(o.Compiler.BuildThreshold),
		compiler.WithLogger(logger),
		compiler.WithErrorWriter(w),
	}, nil
}
