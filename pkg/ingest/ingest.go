package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Request carries one segment's payload to the remote ingestion service.
type Request struct {
	DeviceID    string
	TimestampMs int64
	SampleRate  int
	Body        []byte
}

// Ack is the receiver's acknowledgement. Success false is a negative
// acknowledgement and counts as a delivery failure.
type Ack struct {
	Success bool   `json:"success"`
	Seq     string `json:"ack_seq"`
}

// Ingestor submits captured payloads to the remote ingestion service with a
// caller-supplied timeout on each attempt.
type Ingestor interface {

	// SendAudio performs a single synchronous upload attempt.
	SendAudio(context.Context, Request) (Ack, error)
}

// RemoteConfig creates a configuration to create a remote Ingestor.
type RemoteConfig struct {
	Addr    string
	Timeout time.Duration
	RootCA  string
	Cert    string
	Key     string
}

// RemoteConfigOption defines a option for generating a RemoteConfig
type RemoteConfigOption func(*RemoteConfig) error

// BuildRemoteConfig ingests configuration options to then yield a
// RemoteConfig, and return an error if it fails during configuring.
func BuildRemoteConfig(opts ...RemoteConfigOption) (*RemoteConfig, error) {
	var config RemoteConfig
	for _, opt := range opts {
		err := opt(&config)
		if err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// WithAddr adds a receiver address to the configuration
func WithAddr(addr string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Addr = addr
		return nil
	}
}

// WithTimeout adds a per-attempt timeout to the configuration
func WithTimeout(timeout time.Duration) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Timeout = timeout
		return nil
	}
}

// WithRootCA adds a root certificate authority path to the configuration
func WithRootCA(path string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.RootCA = path
		return nil
	}
}

// WithCert adds a device certificate path to the configuration
func WithCert(path string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Cert = path
		return nil
	}
}

// WithKey adds a device private key path to the configuration
func WithKey(path string) RemoteConfigOption {
	return func(config *RemoteConfig) error {
		config.Key = path
		return nil
	}
}

// Config encapsulates the requirements for generating an Ingestor
type Config struct {
	name         string
	remoteConfig *RemoteConfig
}

// Option defines a option for generating an ingest Config
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

// With adds a type of ingestor to use for the configuration.
func With(name string) Option {
	return func(config *Config) error {
		config.name = name
		return nil
	}
}

// WithConfig adds a remote ingestor config to the configuration
func WithConfig(remoteConfig *RemoteConfig) Option {
	return func(config *Config) error {
		config.remoteConfig = remoteConfig
		return nil
	}
}

// New creates an ingestor from a configuration or returns error if on
// failure.
func New(config *Config, logger log.Logger) (ingestor Ingestor, err error) {
	switch strings.ToLower(config.name) {
	case "remote":
		ingestor, err = newRemoteIngestor(config.remoteConfig, logger)
		if err != nil {
			err = errors.Wrap(err, "remote ingestor")
			return
		}
	case "virtual":
		ingestor = newVirtualIngestor()
	case "nop":
		ingestor = newNopIngestor()
	default:
		err = errors.Errorf("unexpected ingestor type %q", config.name)
	}
	return
}
