package store

import (
	"testing"
	"time"

	"github.com/deepakmuvva99/transmitter/pkg/fs"
	"github.com/deepakmuvva99/transmitter/pkg/models"
	"github.com/go-kit/kit/log"
)

func newTestStore(t *testing.T) (Store, fs.Filesystem) {
	t.Helper()

	fsys := fs.NewVirtualFilesystem()

	config, err := Build(
		With("local"),
		WithBufferRoot("buffer"),
		WithQuarantineRoot("quarantine"),
		WithFilesystem(fsys),
	)
	if err != nil {
		t.Fatal(err)
	}

	store, err := New(config, log.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	return store, fsys
}

func newTestSegment(seqID string) models.Segment {
	return models.Segment{
		SeqID:      seqID,
		DeviceID:   "raspi-01",
		MachineID:  "fan-unit-01",
		SampleRate: 16000,
		CreatedUTC: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:     models.Created,
		Retries:    0,
	}
}

func createTestSegment(t *testing.T, store Store, seqID string) models.Segment {
	t.Helper()

	path, err := store.WritePayload(seqID, []byte("payload-"+seqID))
	if err != nil {
		t.Fatal(err)
	}

	segment := newTestSegment(seqID)
	segment.Payload = path

	if err := store.Create(segment); err != nil {
		t.Fatal(err)
	}
	return segment
}

func TestLocalStoreListPending(t *testing.T) {
	t.Parallel()

	t.Run("fifo order regardless of creation order", func(t *testing.T) {
		store, _ := newTestStore(t)

		for _, seqID := range []string{
			"raspi-01-20250101-00000003",
			"raspi-01-20250101-00000001",
			"raspi-01-20250101-00000002",
		} {
			createTestSegment(t, store, seqID)
		}

		pending, err := store.ListPending()
		if err != nil {
			t.Fatal(err)
		}

		want := []string{
			"raspi-01-20250101-00000001",
			"raspi-01-20250101-00000002",
			"raspi-01-20250101-00000003",
		}
		if expected, actual := len(want), len(pending); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		for i := range want {
			if expected, actual := want[i], pending[i].SeqID; expected != actual {
				t.Errorf("expected: %s, actual: %s", expected, actual)
			}
		}
	})

	t.Run("terminal segments are filtered", func(t *testing.T) {
		store, _ := newTestStore(t)

		sent := createTestSegment(t, store, "raspi-01-20250101-00000001")
		createTestSegment(t, store, "raspi-01-20250101-00000002")

		sent.Status = models.Sent
		if err := store.Update(sent); err != nil {
			t.Fatal(err)
		}

		pending, err := store.ListPending()
		if err != nil {
			t.Fatal(err)
		}

		if expected, actual := 1, len(pending); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := "raspi-01-20250101-00000002", pending[0].SeqID; expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
	})

	t.Run("malformed metadata is skipped", func(t *testing.T) {
		store, fsys := newTestStore(t)

		createTestSegment(t, store, "raspi-01-20250101-00000001")

		file, err := fsys.Create("buffer/meta/raspi-01-20250101-00000002.json")
		if err != nil {
			t.Fatal(err)
		}
		file.Write([]byte(`{"seq_id": "raspi-01-2025`))
		file.Close()

		pending, err := store.ListPending()
		if err != nil {
			t.Fatal(err)
		}

		if expected, actual := 1, len(pending); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("orphaned tmp from interrupted write is ignored", func(t *testing.T) {
		store, fsys := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")

		// Simulates a crash mid-update: the temporary sibling is written but
		// the rename never happened. The previous valid version must win.
		file, err := fsys.Create("buffer/meta/raspi-01-20250101-00000001.json.tmp")
		if err != nil {
			t.Fatal(err)
		}
		file.Write([]byte(`{"seq_id": "raspi-01-20250101-00000001", "status": "SEN`))
		file.Close()

		pending, err := store.ListPending()
		if err != nil {
			t.Fatal(err)
		}

		if expected, actual := 1, len(pending); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := segment.SeqID, pending[0].SeqID; expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
		if expected, actual := models.Created, pending[0].Status; expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
	})

	t.Run("rescan after success is empty", func(t *testing.T) {
		store, _ := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")
		segment.Status = models.Sent
		if err := store.Update(segment); err != nil {
			t.Fatal(err)
		}

		for i := 0; i < 2; i++ {
			pending, err := store.ListPending()
			if err != nil {
				t.Fatal(err)
			}
			if expected, actual := 0, len(pending); expected != actual {
				t.Errorf("expected: %d, actual: %d", expected, actual)
			}
		}
	})
}

func TestLocalStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("duplicate is rejected", func(t *testing.T) {
		store, _ := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")
		if err := store.Create(segment); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("empty sequence id is rejected", func(t *testing.T) {
		store, _ := newTestStore(t)

		if err := store.Create(models.Segment{}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLocalStoreUpdate(t *testing.T) {
	t.Parallel()

	t.Run("retry bookkeeping", func(t *testing.T) {
		store, _ := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")
		segment.Retries = 2
		if err := store.Update(segment); err != nil {
			t.Fatal(err)
		}

		pending, err := store.ListPending()
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 2, pending[0].Retries; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("terminal segments may not transition", func(t *testing.T) {
		store, _ := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")
		segment.Status = models.Sent
		if err := store.Update(segment); err != nil {
			t.Fatal(err)
		}

		segment.Status = models.Created
		if err := store.Update(segment); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("retry count may not decrease", func(t *testing.T) {
		store, _ := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")
		segment.Retries = 3
		if err := store.Update(segment); err != nil {
			t.Fatal(err)
		}

		segment.Retries = 1
		if err := store.Update(segment); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("missing segment", func(t *testing.T) {
		store, _ := newTestStore(t)

		if err := store.Update(newTestSegment("raspi-01-20250101-00000001")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestLocalStorePayload(t *testing.T) {
	t.Parallel()

	t.Run("write then read", func(t *testing.T) {
		store, _ := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")

		body, err := store.ReadPayload(segment)
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := "payload-raspi-01-20250101-00000001", string(body); expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
	})

	t.Run("missing payload", func(t *testing.T) {
		store, _ := newTestStore(t)

		_, err := store.ReadPayload(newTestSegment("raspi-01-20250101-00000001"))
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestLocalStoreQuarantine(t *testing.T) {
	t.Parallel()

	t.Run("payload and metadata move together", func(t *testing.T) {
		store, fsys := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")
		segment.Retries = 3

		if err := store.Quarantine(segment); err != nil {
			t.Fatal(err)
		}

		if expected, actual := false, fsys.Exists("buffer/meta/raspi-01-20250101-00000001.json"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := false, fsys.Exists("buffer/audio/raspi-01-20250101-00000001.wav"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := true, fsys.Exists("quarantine/meta/raspi-01-20250101-00000001.json"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := true, fsys.Exists("quarantine/audio/raspi-01-20250101-00000001.wav"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}

		quarantined, err := store.Quarantined()
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 1, len(quarantined); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := models.Failed, quarantined[0].Status; expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
		if expected, actual := 3, quarantined[0].Retries; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}

		pending, err := store.ListPending()
		if err != nil {
			t.Fatal(err)
		}
		if expected, actual := 0, len(pending); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("payload already relocated", func(t *testing.T) {
		store, fsys := newTestStore(t)

		segment := createTestSegment(t, store, "raspi-01-20250101-00000001")

		// Simulates the documented crash window: the payload rename landed on
		// a previous escalation attempt, the metadata rename did not.
		if err := fsys.Rename(
			"buffer/audio/raspi-01-20250101-00000001.wav",
			"quarantine/audio/raspi-01-20250101-00000001.wav",
		); err != nil {
			t.Fatal(err)
		}

		if err := store.Quarantine(segment); err != nil {
			t.Fatal(err)
		}

		if expected, actual := true, fsys.Exists("quarantine/meta/raspi-01-20250101-00000001.json"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}
