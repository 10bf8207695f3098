package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/pkg/errors"
)

// TLSConfiguration points at the externally supplied credentials for the
// mutually authenticated channel to the receiver.
type TLSConfiguration struct {
	RootCA string `toml:"root_ca"`
	Cert   string `toml:"cert"`
	Key    string `toml:"key"`
}

// Config is the recognized configuration surface of the transmitter. A TOML
// file provides defaults; command line flags override individual values.
type Config struct {
	DeviceID  string `toml:"device_id"`
	MachineID string `toml:"machine_id"`

	CaptureRate   int `toml:"capture_rate"`
	TargetRate    int `toml:"target_rate"`
	WindowSeconds int `toml:"window_seconds"`

	ReceiverAddr       string `toml:"receiver_addr"`
	SendTimeoutSeconds int    `toml:"send_timeout_seconds"`

	MaxRetries           int `toml:"max_retries"`
	AttemptsPerSweep     int `toml:"attempts_per_sweep"`
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"`

	BufferRoot     string `toml:"buffer_root"`
	QuarantineRoot string `toml:"quarantine_root"`

	TLS TLSConfiguration `toml:"tls"`
}

// Default returns the configuration used when neither a file nor flags say
// otherwise.
func Default() *Config {
	return &Config{
		DeviceID:             "raspi-01",
		CaptureRate:          48000,
		TargetRate:           16000,
		WindowSeconds:        5,
		SendTimeoutSeconds:   5,
		MaxRetries:           2,
		AttemptsPerSweep:     3,
		SweepIntervalSeconds: 1,
		BufferRoot:           "data/buffer",
		QuarantineRoot:       "data/error_buffer",
	}
}

// Load reads an optional TOML file over the defaults. A missing machine
// identity falls back to the host's protected machine id.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", path)
		}
	}

	if config.MachineID == "" {
		id, err := machineid.ProtectedID("transmitter")
		if err != nil {
			return nil, errors.Wrap(err, "deriving machine id")
		}
		config.MachineID = id
	}

	return config, nil
}

// Window returns the capture window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// SendTimeout returns the per-attempt delivery timeout as a duration.
func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSeconds) * time.Second
}

// SweepInterval returns the sweep cycle period as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
