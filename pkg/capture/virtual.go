package capture

import (
	"context"
	"time"

	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/pkg/errors"
)

const bytesPerSample = 2 // 16-bit mono

// virtualSource synthesises deterministic payloads of the exact size a real
// capture of the configured window would produce. Useful for the harness
// and for exercising the pipeline without audio hardware.
type virtualSource struct {
	window     time.Duration
	targetRate int
}

func newVirtualSource(config *Config) (Source, error) {
	if config.window <= 0 {
		return nil, errors.New("no capture window")
	}
	if config.targetRate <= 0 {
		return nil, errors.New("no target sample rate")
	}
	return &virtualSource{
		window:     config.window,
		targetRate: config.targetRate,
	}, nil
}

func (s *virtualSource) Capture(ctx context.Context) (models.Clip, error) {
	if err := ctx.Err(); err != nil {
		return models.Clip{}, err
	}

	samples := int(s.window.Seconds() * float64(s.targetRate))
	body := make([]byte, samples*bytesPerSample)
	for i := range body {
		body[i] = byte(i)
	}

	return models.Clip{
		Body:       body,
		SampleRate: s.targetRate,
	}, nil
}
