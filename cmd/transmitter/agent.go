package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/SimonRichardson/flagset"
	"github.com/SimonRichardson/gexec"
	"github.com/deepakmuvva99/transmitter/pkg/capture"
	"github.com/deepakmuvva99/transmitter/pkg/config"
	"github.com/deepakmuvva99/transmitter/pkg/fs"
	"github.com/deepakmuvva99/transmitter/pkg/ingest"
	"github.com/deepakmuvva99/transmitter/pkg/producer"
	"github.com/deepakmuvva99/transmitter/pkg/sequence"
	"github.com/deepakmuvva99/transmitter/pkg/status"
	"github.com/deepakmuvva99/transmitter/pkg/store"
	"github.com/deepakmuvva99/transmitter/pkg/sweeper"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultSource              = "virtual"
	defaultFilesystem          = "local"
	defaultStore               = "local"
	defaultIngestor            = "remote"
	defaultMetricsRegistration = true
)

func runAgent(args []string) error {
	// flags for the agent command
	defaults := config.Default()

	var (
		flags = flagset.NewFlagSet("agent", flag.ExitOnError)

		debug      = flags.Bool("debug", false, "debug logging")
		apiAddr    = flags.String("api", defaultAPIAddr, "listen address for status API")
		configFile = flags.String("config.file", "", "path to a TOML configuration file")

		deviceID  = flags.String("device.id", defaults.DeviceID, "stable identifier for this device")
		machineID = flags.String("machine.id", "", "machine identity (derived from the host when empty)")

		sourceType  = flags.String("source", defaultSource, "type of capture source to use (virtual, nop)")
		captureRate = flags.Int("capture.rate", defaults.CaptureRate, "sample rate the device records at")
		targetRate  = flags.Int("target.rate", defaults.TargetRate, "sample rate payloads are resampled to")
		window      = flags.String("window", "", "length of each capture window")

		filesystemType = flags.String("filesystem", defaultFilesystem, "type of filesystem backing (local, virtual, nop)")
		storeType      = flags.String("store", defaultStore, "type of store to use (local, virtual, nop)")
		bufferRoot     = flags.String("buffer.path", defaults.BufferRoot, "root directory for pending segments")
		quarantineRoot = flags.String("quarantine.path", defaults.QuarantineRoot, "root directory for quarantined segments")

		ingestorType = flags.String("ingestor", defaultIngestor, "type of ingestor to use (remote, virtual, nop)")
		receiverAddr = flags.String("receiver.url", "", "URL to hit with the segment payload")
		sendTimeout  = flags.String("send.timeout", "", "timeout for a single delivery attempt")
		tlsRootCA    = flags.String("tls.ca", "", "root certificate authority for the receiver")
		tlsCert      = flags.String("tls.cert", "", "client certificate for the receiver")
		tlsKey       = flags.String("tls.key", "", "client private key for the receiver")

		maxRetries    = flags.Int("max.retries", defaults.MaxRetries, "cumulative delivery failures before quarantine")
		attempts      = flags.Int("attempts", defaults.AttemptsPerSweep, "delivery attempts per segment within one sweep")
		sweepInterval = flags.String("sweep.interval", "", "how often the sweeper scans the buffer")

		metricsRegistration = flags.Bool("metrics.registration", defaultMetricsRegistration, "Registration of metrics on launch")
	)

	flags.Usage = usageFor(flags, "agent [flags]")
	if err := flags.Parse(args); err != nil {
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

	// File configuration first, explicit flags over the top.
	cfg, err := config.Load(*configFile)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device.id":
			cfg.DeviceID = *deviceID
		case "machine.id":
			cfg.MachineID = *machineID
		case "capture.rate":
			cfg.CaptureRate = *captureRate
		case "target.rate":
			cfg.TargetRate = *targetRate
		case "buffer.path":
			cfg.BufferRoot = *bufferRoot
		case "quarantine.path":
			cfg.QuarantineRoot = *quarantineRoot
		case "receiver.url":
			cfg.ReceiverAddr = *receiverAddr
		case "tls.ca":
			cfg.TLS.RootCA = *tlsRootCA
		case "tls.cert":
			cfg.TLS.Cert = *tlsCert
		case "tls.key":
			cfg.TLS.Key = *tlsKey
		case "max.retries":
			cfg.MaxRetries = *maxRetries
		case "attempts":
			cfg.AttemptsPerSweep = *attempts
		}
	})

	windowDuration := cfg.Window()
	if *window != "" {
		if windowDuration, err = time.ParseDuration(*window); err != nil {
			return errors.Wrap(err, "window")
		}
	}
	sendTimeoutDuration := cfg.SendTimeout()
	if *sendTimeout != "" {
		if sendTimeoutDuration, err = time.ParseDuration(*sendTimeout); err != nil {
			return errors.Wrap(err, "send timeout")
		}
	}
	sweepIntervalDuration := cfg.SweepInterval()
	if *sweepInterval != "" {
		if sweepIntervalDuration, err = time.ParseDuration(*sweepInterval); err != nil {
			return errors.Wrap(err, "sweep interval")
		}
	}

	// Instrumentation
	capturedSegments := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transmitter",
		Name:      "captured_segments",
		Help:      "Segments captured and durably buffered.",
	})
	capturedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transmitter",
		Name:      "captured_bytes",
		Help:      "Payload bytes captured and durably buffered.",
	})
	captureFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transmitter",
		Name:      "capture_failures",
		Help:      "Capture cycles that produced no segment.",
	})
	deliveredSegments := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transmitter",
		Name:      "delivered_segments",
		Help:      "Segments acknowledged by the receiver.",
	})
	deliveryFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transmitter",
		Name:      "delivery_failures",
		Help:      "Delivery attempts that failed or were rejected.",
	})
	quarantinedSegments := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transmitter",
		Name:      "quarantined_segments",
		Help:      "Segments relocated to quarantine after exhausting retries.",
	})
	pendingDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "transmitter",
		Name:      "queue_pending_depth",
		Help:      "Segments awaiting delivery at last observation.",
	})

	if *metricsRegistration {
		prometheus.MustRegister(
			capturedSegments,
			capturedBytes,
			captureFailures,
			deliveredSegments,
			deliveryFailures,
			quarantinedSegments,
			pendingDepth,
		)
	}

	apiNetwork, apiAddress, err := parseAddr(*apiAddr, defaultAPIPort)
	if err != nil {
		return err
	}
	apiListener, err := net.Listen(apiNetwork, apiAddress)
	if err != nil {
		return err
	}
	level.Debug(logger).Log("API", fmt.Sprintf("%s://%s", apiNetwork, apiAddress))

	// Filesystem setup.
	fsysConfig, err := fs.Build(
		fs.With(*filesystemType),
	)
	if err != nil {
		return errors.Wrap(err, "filesystem config")
	}

	fsys, err := fs.New(fsysConfig)
	if err != nil {
		return errors.Wrap(err, "filesystem")
	}

	// Store setup.
	storeConfig, err := store.Build(
		store.With(*storeType),
		store.WithBufferRoot(cfg.BufferRoot),
		store.WithQuarantineRoot(cfg.QuarantineRoot),
		store.WithFilesystem(fsys),
	)
	if err != nil {
		return errors.Wrap(err, "store config")
	}

	s, err := store.New(storeConfig, log.With(logger, "component", "store"))
	if err != nil {
		return errors.Wrap(err, "store")
	}

	// Capture setup.
	captureConfig, err := capture.Build(
		capture.With(*sourceType),
		capture.WithWindow(windowDuration),
		capture.WithCaptureRate(cfg.CaptureRate),
		capture.WithTargetRate(cfg.TargetRate),
	)
	if err != nil {
		return errors.Wrap(err, "capture config")
	}

	source, err := capture.New(captureConfig, log.With(logger, "component", "capture"))
	if err != nil {
		return errors.Wrap(err, "capture")
	}

	// Ingestor setup.
	remoteConfig, err := ingest.BuildRemoteConfig(
		ingest.WithAddr(cfg.ReceiverAddr),
		ingest.WithTimeout(sendTimeoutDuration),
		ingest.WithRootCA(cfg.TLS.RootCA),
		ingest.WithCert(cfg.TLS.Cert),
		ingest.WithKey(cfg.TLS.Key),
	)
	if err != nil {
		return errors.Wrap(err, "ingest remote config")
	}

	ingestConfig, err := ingest.Build(
		ingest.With(*ingestorType),
		ingest.WithConfig(remoteConfig),
	)
	if err != nil {
		return errors.Wrap(err, "ingest config")
	}

	client, err := ingest.New(ingestConfig, log.With(logger, "component", "ingest"))
	if err != nil {
		return errors.Wrap(err, "ingest")
	}

	allocator := sequence.NewAllocator(cfg.DeviceID)

	// Execution group.
	g := gexec.NewGroup()
	gexec.Block(g)
	{
		p := producer.New(
			source,
			s,
			allocator,
			cfg.DeviceID, cfg.MachineID,
			windowDuration,
			capturedSegments, capturedBytes,
			captureFailures,
			log.With(logger, "component", "producer"),
		)
		g.Add(func() error {
			p.Run()
			return nil
		}, func(error) {
			p.Stop()
		})
	}
	{
		sw := sweeper.New(
			client,
			s,
			sweepIntervalDuration,
			cfg.AttemptsPerSweep, cfg.MaxRetries,
			deliveredSegments, deliveryFailures,
			quarantinedSegments,
			log.With(logger, "component", "sweeper"),
		)
		g.Add(func() error {
			sw.Run()
			return nil
		}, func(error) {
			sw.Stop()
		})
	}
	{
		g.Add(func() error {
			mux := http.NewServeMux()
			mux.Handle("/status/", http.StripPrefix("/status", status.NewAPI(
				s,
				pendingDepth,
				log.With(logger, "component", "status_api"),
			)))

			registerMetrics(mux)
			registerProfile(mux)

			return http.Serve(apiListener, mux)
		}, func(error) {
			apiListener.Close()
		})
	}
	gexec.Interrupt(g)
	return g.Run()
}
