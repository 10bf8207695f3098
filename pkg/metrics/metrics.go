package metrics

// Counter is the smallest counting surface the pipeline needs. It is
// satisfied by prometheus counters and by mocks in tests.
type Counter interface {
	Inc()
	Add(float64)
}

// Gauge reports a value that can go up and down, such as queue depth.
type Gauge interface {
	Set(float64)
}
