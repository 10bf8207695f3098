package models

import "github.com/pkg/errors"

// Status describes where a segment is in its delivery lifecycle.
type Status string

const (
	// Created states that the segment is buffered and awaiting delivery.
	Created Status = "CREATED"

	// Sent states that the segment was acknowledged by the receiver. Terminal.
	Sent Status = "SENT"

	// Failed states that the segment exhausted its retry budget. Terminal.
	Failed Status = "FAILED"
)

// ParseStatus attempts to parse a status and return a Status, or returns an
// error on failure.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case Created, Sent, Failed:
		return Status(s), nil
	}
	return Status(""), errors.Errorf("unexpected status %q", s)
}

// CanTransition returns if moving to the next status is legal. Transitions
// only go forward: CREATED may stay CREATED (retry bookkeeping) or move to
// SENT or FAILED. SENT and FAILED are terminal.
func (s Status) CanTransition(next Status) bool {
	if s != Created {
		return false
	}
	switch next {
	case Created, Sent, Failed:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
