package producer

import (
	"context"
	"time"

	"github.com/deepakmuvva99/transmitter/pkg/capture"
	"github.com/deepakmuvva99/transmitter/pkg/metrics"
	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/deepakmuvva99/transmitter/pkg/sequence"
	"github.com/deepakmuvva99/transmitter/pkg/store"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Producer drives the capture cadence: one finished clip per cycle, written
// payload-first into the store so that a visible CREATED record always has
// a complete payload behind it. Capture failures are local: logged, counted
// and retried on the next cycle, never escalated to the store.
type Producer struct {
	source           capture.Source
	store            store.Store
	allocator        *sequence.Allocator
	deviceID         string
	machineID        string
	interval         time.Duration
	stop             chan chan struct{}
	capturedSegments metrics.Counter
	capturedBytes    metrics.Counter
	captureFailures  metrics.Counter
	logger           log.Logger
}

// New creates a producer.
func New(
	source capture.Source,
	store store.Store,
	allocator *sequence.Allocator,
	deviceID, machineID string,
	interval time.Duration,
	capturedSegments, capturedBytes metrics.Counter,
	captureFailures metrics.Counter,
	logger log.Logger,
) *Producer {
	return &Producer{
		source:           source,
		store:            store,
		allocator:        allocator,
		deviceID:         deviceID,
		machineID:        machineID,
		interval:         interval,
		stop:             make(chan chan struct{}),
		capturedSegments: capturedSegments,
		capturedBytes:    capturedBytes,
		captureFailures:  captureFailures,
		logger:           logger,
	}
}

// Run captures clips at the configured cadence and buffers them durably.
// Run returns when Stop is invoked.
func (p *Producer) Run() {
	step := time.NewTicker(p.interval)
	defer step.Stop()

	for {
		select {
		case <-step.C:
			p.cycle()

		case q := <-p.stop:
			close(q)
			return
		}
	}
}

// Stop the producer from capturing.
func (p *Producer) Stop() {
	q := make(chan struct{})
	p.stop <- q
	<-q
}

func (p *Producer) cycle() {
	var (
		base = log.With(p.logger, "state", "capture")
		warn = level.Warn(base)
	)

	clip, err := p.source.Capture(context.Background())
	if err != nil {
		// No record is created for a failed capture; the next cycle is the
		// retry.
		p.captureFailures.Inc()
		warn.Log("reason", "capturing", "err", err)
		return
	}

	seqID := p.allocator.Next()

	path, err := p.store.WritePayload(seqID, clip.Body)
	if err != nil {
		warn.Log("reason", "writing payload", "seq_id", seqID, "err", err)
		return
	}

	segment := models.Segment{
		SeqID:      seqID,
		DeviceID:   p.deviceID,
		MachineID:  p.machineID,
		Payload:    path,
		SampleRate: clip.SampleRate,
		CreatedUTC: time.Now().UTC(),
		Status:     models.Created,
		Retries:    0,
	}

	if err := p.store.Create(segment); err != nil {
		warn.Log("reason", "creating segment", "seq_id", seqID, "err", err)
		return
	}

	p.capturedSegments.Inc()
	p.capturedBytes.Add(float64(len(clip.Body)))

	level.Debug(base).Log("state", "stored", "seq_id", seqID)
}
