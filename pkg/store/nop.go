package store

import "github.com/deepakmuvva99/transmitter/pkg/models"

type nopStore struct{}

func newNopStore() Store {
	return nopStore{}
}

func (nopStore) Create(models.Segment) error { return nil }
func (nopStore) Update(models.Segment) error { return nil }

func (nopStore) ListPending() ([]models.Segment, error) {
	return make([]models.Segment, 0), nil
}

func (nopStore) Quarantined() ([]models.Segment, error) {
	return make([]models.Segment, 0), nil
}

func (nopStore) WritePayload(seqID string, body []byte) (string, error) {
	return seqID + payloadExt, nil
}

func (nopStore) ReadPayload(models.Segment) ([]byte, error) {
	return make([]byte, 0), nil
}

func (nopStore) Quarantine(models.Segment) error { return nil }
