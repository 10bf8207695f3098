package ingest

import "context"

type nopIngestor struct{}

func newNopIngestor() Ingestor {
	return nopIngestor{}
}

func (nopIngestor) SendAudio(context.Context, Request) (Ack, error) {
	return Ack{Success: true}, nil
}
