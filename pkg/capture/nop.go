package capture

import (
	"context"

	"github.com/deepakmuvva99/transmitter/pkg/models"
)

type nopSource struct{}

func newNopSource() Source {
	return nopSource{}
}

func (nopSource) Capture(context.Context) (models.Clip, error) {
	return models.Clip{Body: make([]byte, 0)}, nil
}
