package capture

import (
	"context"
	"strings"
	"time"

	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Source yields one finished recording per call: samples already windowed
// and resampled to the target rate. Hardware acquisition sits behind this
// boundary; a failed capture produces no segment.
type Source interface {

	// Capture blocks for the configured window and returns the finished
	// clip, or an error if the underlying device failed.
	Capture(context.Context) (models.Clip, error)
}

// Config encapsulates the requirements for generating a Source
type Config struct {
	name        string
	window      time.Duration
	captureRate int
	targetRate  int
}

// Option defines a option for generating a capture Config
type Option func(*Config) error

// Build ingests configuration options to then yield a Config and return an
// error if it fails during setup.
func Build(opts ...Option) (*Config, error) {
	var config Config
	for _, opt := range opts {
		err := opt(&config)
		if err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// With adds a type of source to use for the configuration.
func With(name string) Option {
	return func(config *Config) error {
		config.name = name
		return nil
	}
}

// WithWindow adds a capture window length to the configuration
func WithWindow(window time.Duration) Option {
	return func(config *Config) error {
		config.window = window
		return nil
	}
}

// WithCaptureRate adds a device sample rate to the configuration
func WithCaptureRate(rate int) Option {
	return func(config *Config) error {
		config.captureRate = rate
		return nil
	}
}

// WithTargetRate adds a resample target rate to the configuration
func WithTargetRate(rate int) Option {
	return func(config *Config) error {
		config.targetRate = rate
		return nil
	}
}

// New creates a source from a configuration or returns error if on failure.
func New(config *Config, logger log.Logger) (source Source, err error) {
	switch strings.ToLower(config.name) {
	case "virtual":
		source, err = newVirtualSource(config)
		if err != nil {
			err = errors.Wrap(err, "virtual source")
			return
		}
	case "nop":
		source = newNopSource()
	default:
		err = errors.Errorf("unexpected source type %q", config.name)
	}
	return
}
