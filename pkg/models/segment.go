package models

import (
	"encoding/json"
	"time"
)

// Segment represents the metadata for one captured recording. It is written
// as a complete snapshot on every update, never incrementally patched.
type Segment struct {
	SeqID      string    `json:"seq_id"`
	DeviceID   string    `json:"device_id"`
	MachineID  string    `json:"machine_id"`
	Payload    string    `json:"payload"`
	SampleRate int       `json:"sample_rate"`
	CreatedUTC time.Time `json:"created_utc"`
	Status     Status    `json:"status"`
	Retries    int       `json:"retries"`
}

// Encode serialises the segment to its on-disk snapshot representation.
func (s Segment) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// DecodeSegment unserialises a segment snapshot. Anything that fails to
// decode or carries an unknown status is reported as corrupt, so that
// readers can skip it rather than abort.
func DecodeSegment(b []byte) (Segment, error) {
	var s Segment
	if err := json.Unmarshal(b, &s); err != nil {
		return s, errCorrupt{err}
	}
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return s, errCorrupt{err}
	}
	return s, nil
}

// Clip is the product of one capture cycle: an opaque payload and the rate
// it was resampled to.
type Clip struct {
	Body       []byte
	SampleRate int
}

type corrupt interface {
	Corrupt() bool
}

type errCorrupt struct {
	err error
}

func (e errCorrupt) Error() string {
	return e.err.Error()
}

func (e errCorrupt) Corrupt() bool {
	return true
}

// ErrCorrupt tests to see if the error passed is a corrupt record error or
// not.
func ErrCorrupt(err error) bool {
	if err != nil {
		if _, ok := err.(corrupt); ok {
			return true
		}
	}
	return false
}
