package store

import (
	"strings"

	"github.com/deepakmuvva99/transmitter/pkg/fs"
	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// Store is the durable buffer between the capture producer and the delivery
// sweeper. The two loops communicate only through it; every metadata
// mutation is a full snapshot made visible by a single atomic rename, so a
// concurrent reader observes either the old or the new version, never a mix.
type Store interface {

	// Create persists the metadata for a freshly captured segment. The
	// payload must already be durable; a visible CREATED record always has a
	// complete payload behind it.
	Create(models.Segment) error

	// Update replaces the metadata snapshot for a segment. Only forward
	// status transitions are accepted and the retry count may never decrease.
	Update(models.Segment) error

	// ListPending returns every CREATED segment ordered by sequence id,
	// oldest first. Malformed metadata entries are skipped, not fatal.
	ListPending() ([]models.Segment, error)

	// Quarantined returns every segment held in the quarantine area, ordered
	// by sequence id.
	Quarantined() ([]models.Segment, error)

	// WritePayload persists the payload for a segment and returns its
	// location. Callers write the payload before creating the metadata.
	WritePayload(seqID string, body []byte) (string, error)

	// ReadPayload returns the payload bytes behind a segment.
	ReadPayload(models.Segment) ([]byte, error)

	// Quarantine marks a segment FAILED and relocates its payload and
	// metadata out of the active buffer. The two renames are not a single
	// transaction; a crash between them leaves a window where the payload
	// has moved but the metadata has not. The stranded metadata is terminal
	// and filtered from listings, so the window is benign.
	Quarantine(models.Segment) error
}

// Config encapsulates the requirements for generating a Store
type Config struct {
	name           string
	bufferRoot     string
	quarantineRoot string
	fsys           fs.Filesystem
}

// Option defines a option for generating a store Config
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

// With adds a type of store to use for the configuration.
func With(name string) Option {
	return func(config *Config) error {
		config.name = name
		return nil
	}
}

// WithBufferRoot adds a buffer root directory to the configuration
func WithBufferRoot(root string) Option {
	return func(config *Config) error {
		config.bufferRoot = root
		return nil
	}
}

// WithQuarantineRoot adds a quarantine root directory to the configuration
func WithQuarantineRoot(root string) Option {
	return func(config *Config) error {
		config.quarantineRoot = root
		return nil
	}
}

// WithFilesystem adds a filesystem to the configuration
func WithFilesystem(fsys fs.Filesystem) Option {
	return func(config *Config) error {
		config.fsys = fsys
		return nil
	}
}

// New creates a store from a configuration or returns error if on failure.
func New(config *Config, logger log.Logger) (store Store, err error) {
	switch strings.ToLower(config.name) {
	case "local":
		store, err = newLocalStore(config, logger)
		if err != nil {
			err = errors.Wrap(err, "local store")
			return
		}
	case "virtual":
		store = newVirtualStore()
	case "nop":
		store = newNopStore()
	default:
		err = errors.Errorf("unexpected store type %q", config.name)
	}
	return
}
