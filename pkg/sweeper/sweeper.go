package sweeper

import (
	"context"
	"time"

	"github.com/deepakmuvva99/transmitter/pkg/ingest"
	"github.com/deepakmuvva99/transmitter/pkg/metrics"
	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/deepakmuvva99/transmitter/pkg/store"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Sweeper drains the store toward the remote ingestion service. Each cycle
// scans the pending segments in sequence order and walks them oldest first,
// so delivery approximates chronological capture order. Retries are split
// two ways: a tight local loop per sweep for momentary blips, and a
// cumulative budget across sweeps that bounds how long a segment can occupy
// the active queue before it is quarantined.
type Sweeper struct {
	client              ingest.Ingestor
	store               store.Store
	interval            time.Duration
	maxAttempts         int
	maxRetries          int
	stop                chan chan struct{}
	deliveredSegments   metrics.Counter
	deliveryFailures    metrics.Counter
	quarantinedSegments metrics.Counter
	logger              log.Logger
}

// New creates a sweeper.
func New(
	client ingest.Ingestor,
	store store.Store,
	interval time.Duration,
	maxAttempts, maxRetries int,
	deliveredSegments, deliveryFailures metrics.Counter,
	quarantinedSegments metrics.Counter,
	logger log.Logger,
) *Sweeper {
	return &Sweeper{
		client:              client,
		store:               store,
		interval:            interval,
		maxAttempts:         maxAttempts,
		maxRetries:          maxRetries,
		stop:                make(chan chan struct{}),
		deliveredSegments:   deliveredSegments,
		deliveryFailures:    deliveryFailures,
		quarantinedSegments: quarantinedSegments,
		logger:              logger,
	}
}

// Run sweeps the store at the configured interval. Run returns when Stop is
// invoked.
func (s *Sweeper) Run() {
	step := time.NewTicker(s.interval)
	defer step.Stop()

	for {
		select {
		case <-step.C:
			s.sweep()

		case q := <-s.stop:
			close(q)
			return
		}
	}
}

// Stop the sweeper from sweeping.
func (s *Sweeper) Stop() {
	q := make(chan struct{})
	s.stop <- q
	<-q
}

// sweep performs one scan-and-deliver pass over every pending segment. No
// failure aborts the pass; each segment is handled in isolation.
func (s *Sweeper) sweep() {
	warn := level.Warn(log.With(s.logger, "state", "scan"))

	pending, err := s.store.ListPending()
	if err != nil {
		warn.Log("reason", "listing pending segments", "err", err)
		return
	}

	for _, segment := range pending {
		s.deliver(segment)
	}
}

// deliver attempts one segment up to maxAttempts times in immediate
// succession, then either records the success, escalates an exhausted
// retry budget to quarantine, or persists the retry bookkeeping for the
// next cycle.
func (s *Sweeper) deliver(segment models.Segment) {
	var (
		base = log.With(s.logger, "state", "deliver", "seq_id", segment.SeqID)
		warn = level.Warn(base)

		delivered bool
	)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.attempt(segment); err != nil {
			segment.Retries++
			s.deliveryFailures.Inc()
			warn.Log("attempt", attempt, "retries", segment.Retries, "err", err)
			continue
		}

		delivered = true
		break
	}

	if delivered {
		segment.Status = models.Sent
		if err := s.store.Update(segment); err != nil {
			warn.Log("reason", "recording delivery", "err", err)
			return
		}
		s.deliveredSegments.Inc()
		level.Debug(base).Log("state", "acknowledged")
		return
	}

	if segment.Retries > s.maxRetries {
		if err := s.store.Quarantine(segment); err != nil {
			warn.Log("reason", "quarantining", "err", err)
			return
		}
		s.quarantinedSegments.Inc()
		level.Error(base).Log("state", "quarantined", "retries", segment.Retries)
		return
	}

	// Below the cumulative budget: persist the retry count and leave the
	// segment CREATED for the next cycle.
	if err := s.store.Update(segment); err != nil {
		warn.Log("reason", "recording retries", "err", err)
	}
}

func (s *Sweeper) attempt(segment models.Segment) error {
	body, err := s.store.ReadPayload(segment)
	if err != nil {
		return err
	}

	ack, err := s.client.SendAudio(context.Background(), ingest.Request{
		DeviceID:    segment.DeviceID,
		TimestampMs: time.Now().UnixMilli(),
		SampleRate:  segment.SampleRate,
		Body:        body,
	})
	if err != nil {
		return err
	}
	if !ack.Success {
		return errNegativeAck{}
	}
	return nil
}

type errNegativeAck struct{}

func (errNegativeAck) Error() string {
	return "negative acknowledgement"
}
