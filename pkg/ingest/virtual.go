package ingest

import (
	"context"
	"fmt"
	"sync"
)

// virtualIngestor acknowledges everything. It keeps a call count so the
// harness can observe throughput without a receiver.
type virtualIngestor struct {
	mutex sync.Mutex
	calls int
}

func newVirtualIngestor() Ingestor {
	return &virtualIngestor{}
}

func (v *virtualIngestor) SendAudio(ctx context.Context, req Request) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.calls++
	return Ack{
		Success: true,
		Seq:     fmt.Sprintf("%08d", v.calls),
	}, nil
}
