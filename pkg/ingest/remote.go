package ingest

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/SimonRichardson/resilience/breaker"
	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

const (
	defaultFailureRate    = 10
	defaultFailureTimeout = time.Minute
	defaultSendTimeout    = 5 * time.Second
)

// remoteIngestor uploads payloads over a mutually authenticated channel.
// Each attempt is bounded by the configured timeout; an attempt that
// exceeds it is abandoned and treated as a failure.
type remoteIngestor struct {
	circuit *breaker.CircuitBreaker
	client  *http.Client
	addr    string
	timeout time.Duration
	logger  log.Logger
}

func newRemoteIngestor(config *RemoteConfig, logger log.Logger) (Ingestor, error) {
	if config == nil {
		return nil, errors.New("no remote config")
	}
	if config.Addr == "" {
		return nil, errors.New("no receiver address")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultSendTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		Dial: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).Dial,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableKeepAlives:   false,
		MaxIdleConnsPerHost: 1,
	}

	if config.RootCA != "" || config.Cert != "" || config.Key != "" {
		tlsConfig, err := buildTLSConfig(config)
		if err != nil {
			return nil, errors.Wrap(err, "tls config")
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &remoteIngestor{
		circuit: breaker.New(defaultFailureRate, defaultFailureTimeout),
		client:  &http.Client{Transport: transport},
		addr:    config.Addr,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// buildTLSConfig assembles mutual authentication credentials from the root
// CA, device certificate and device private key supplied externally.
func buildTLSConfig(config *RemoteConfig) (*tls.Config, error) {
	ca, err := ioutil.ReadFile(config.RootCA)
	if err != nil {
		return nil, errors.Wrapf(err, "reading root ca %s", config.RootCA)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return nil, errors.Errorf("no certificates found in %s", config.RootCA)
	}

	pair, err := tls.LoadX509KeyPair(config.Cert, config.Key)
	if err != nil {
		return nil, errors.Wrap(err, "loading device key pair")
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{pair},
	}, nil
}

// SendAudio submits the payload and waits for the acknowledgement. Anything
// other than an affirmative acknowledgement within the timeout is an error.
func (i *remoteIngestor) SendAudio(ctx context.Context, req Request) (Ack, error) {
	var ack Ack
	err := i.circuit.Run(func() error {
		ctx, cancel := context.WithTimeout(ctx, i.timeout)
		defer cancel()

		request, err := http.NewRequest("POST", i.addr, bytes.NewReader(req.Body))
		if err != nil {
			return err
		}
		request = request.WithContext(ctx)
		request.Header.Set("Content-Type", "application/octet-stream")
		request.Header.Set("X-Device-ID", req.DeviceID)
		request.Header.Set("X-Timestamp-Ms", strconv.FormatInt(req.TimestampMs, 10))
		request.Header.Set("X-Sample-Rate", strconv.Itoa(req.SampleRate))

		resp, err := i.client.Do(request)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("invalid status code: %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			return errors.Wrap(err, "decoding acknowledgement")
		}
		if !ack.Success {
			return errors.New("negative acknowledgement")
		}
		return nil
	})
	return ack, err
}
