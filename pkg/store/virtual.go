package store

import (
	"sort"
	"sync"

	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/pkg/errors"
)

type virtualStore struct {
	mutex       sync.RWMutex
	segments    map[string]models.Segment
	payloads    map[string][]byte
	quarantined map[string]models.Segment
}

func newVirtualStore() Store {
	return &virtualStore{
		segments:    map[string]models.Segment{},
		payloads:    map[string][]byte{},
		quarantined: map[string]models.Segment{},
	}
}

func (v *virtualStore) Create(segment models.Segment) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if segment.SeqID == "" {
		return errors.New("no sequence id")
	}
	if _, ok := v.segments[segment.SeqID]; ok {
		return errors.Errorf("segment %s already exists", segment.SeqID)
	}

	v.segments[segment.SeqID] = segment
	return nil
}

func (v *virtualStore) Update(segment models.Segment) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	existing, ok := v.segments[segment.SeqID]
	if !ok {
		return errors.Errorf("segment %s not found", segment.SeqID)
	}
	if !existing.Status.CanTransition(segment.Status) {
		return errors.Errorf("illegal transition %s -> %s for segment %s",
			existing.Status, segment.Status, segment.SeqID,
		)
	}
	if segment.Retries < existing.Retries {
		return errors.Errorf("retry count may not decrease for segment %s", segment.SeqID)
	}

	v.segments[segment.SeqID] = segment
	return nil
}

func (v *virtualStore) ListPending() ([]models.Segment, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	var pending []models.Segment
	for _, segment := range v.segments {
		if segment.Status == models.Created {
			pending = append(pending, segment)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SeqID < pending[j].SeqID
	})
	return pending, nil
}

func (v *virtualStore) Quarantined() ([]models.Segment, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	var segments []models.Segment
	for _, segment := range v.quarantined {
		segments = append(segments, segment)
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].SeqID < segments[j].SeqID
	})
	return segments, nil
}

func (v *virtualStore) WritePayload(seqID string, body []byte) (string, error) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if seqID == "" {
		return "", errors.New("no sequence id")
	}

	v.payloads[seqID] = body
	return seqID + payloadExt, nil
}

func (v *virtualStore) ReadPayload(segment models.Segment) ([]byte, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	body, ok := v.payloads[segment.SeqID]
	if !ok {
		return nil, errors.Errorf("payload for segment %s not found", segment.SeqID)
	}
	return body, nil
}

func (v *virtualStore) Quarantine(segment models.Segment) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	segment.Status = models.Failed

	delete(v.segments, segment.SeqID)
	v.quarantined[segment.SeqID] = segment
	return nil
}
