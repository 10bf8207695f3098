package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/deepakmuvva99/transmitter/pkg/config"
	"github.com/deepakmuvva99/transmitter/pkg/fs"
	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/deepakmuvva99/transmitter/pkg/store"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

// runQueue reads the on-disk buffers directly; it is safe to run alongside a
// live agent because it never writes.
func runQueue(args []string) error {
	// flags for the queue command
	defaults := config.Default()

	var (
		flagset = flag.NewFlagSet("queue", flag.ExitOnError)

		debug          = flagset.Bool("debug", false, "debug logging")
		bufferRoot     = flagset.String("buffer.path", defaults.BufferRoot, "root directory for pending segments")
		quarantineRoot = flagset.String("quarantine.path", defaults.QuarantineRoot, "root directory for quarantined segments")
	)

	var envArgs []string
	flagset.VisitAll(func(flag *flag.Flag) {
		key := envName(flag.Name)
		if value, ok := syscall.Getenv(key); ok {
			envArgs = append(envArgs, fmt.Sprintf("-%s=%s", flag.Name, value))
		}
	})

	flagsetArgs := append(args, envArgs...)
	flagset.Usage = usageFor(flagset, "queue [flags]")
	if err := flagset.Parse(flagsetArgs); err != nil {
		return nil
	}

	// Setup the logger.
	var logger log.Logger
	{
		logLevel := level.AllowInfo()
		if *debug {
			logLevel = level.AllowAll()
		}
		logger = log.NewLogfmtLogger(os.Stdout)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = level.NewFilter(logger, logLevel)
	}

	fsysConfig, err := fs.Build(
		fs.With("local"),
	)
	if err != nil {
		return errors.Wrap(err, "filesystem config")
	}

	fsys, err := fs.New(fsysConfig)
	if err != nil {
		return errors.Wrap(err, "filesystem")
	}

	storeConfig, err := store.Build(
		store.With("local"),
		store.WithBufferRoot(*bufferRoot),
		store.WithQuarantineRoot(*quarantineRoot),
		store.WithFilesystem(fsys),
	)
	if err != nil {
		return errors.Wrap(err, "store config")
	}

	s, err := store.New(storeConfig, log.With(logger, "component", "store"))
	if err != nil {
		return errors.Wrap(err, "store")
	}

	pending, err := s.ListPending()
	if err != nil {
		return errors.Wrap(err, "listing pending")
	}

	quarantined, err := s.Quarantined()
	if err != nil {
		return errors.Wrap(err, "listing quarantined")
	}

	return json.NewEncoder(os.Stdout).Encode(struct {
		Pending     []models.Segment `json:"pending"`
		Quarantined []models.Segment `json:"quarantined"`
	}{
		Pending:     pending,
		Quarantined: quarantined,
	})
}
