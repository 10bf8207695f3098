package sequence

import (
	"fmt"
	"sync"
	"time"
)

const dateLayout = "20060102"

// Allocator hands out identifiers for captured segments. Identifiers are
// unique per allocator and sort lexicographically in allocation order, which
// is what makes a plain directory listing a correct FIFO. The counter resets
// whenever the wall-clock date rolls over; the date prefix keeps the new
// bucket sorting after the old one.
type Allocator struct {
	mutex    sync.Mutex
	deviceID string
	bucket   string
	counter  int
	now      func() time.Time
}

// Option defines a option for generating an Allocator
type Option func(*Allocator)

// WithClock overrides the wall clock, so rollover can be driven by tests.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) {
		a.now = now
	}
}

// NewAllocator creates an Allocator for the given device.
func NewAllocator(deviceID string, opts ...Option) *Allocator {
	a := &Allocator{
		deviceID: deviceID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Next returns the next identifier. It never fails and is safe for
// arbitrary concurrent callers.
func (a *Allocator) Next() string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	today := a.now().UTC().Format(dateLayout)
	if today != a.bucket {
		a.bucket = today
		a.counter = 0
	}
	a.counter++

	return fmt.Sprintf("%s-%s-%08d", a.deviceID, a.bucket, a.counter)
}
