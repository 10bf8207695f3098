package capture

import (
	"context"
	"testing"
	"testing/quick"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

func TestBuildingCapture(t *testing.T) {
	t.Parallel()

	t.Run("build", func(t *testing.T) {
		fn := func(name string) bool {
			config, err := Build(
				With(name),
				WithWindow(5*time.Second),
				WithCaptureRate(48000),
				WithTargetRate(16000),
			)
			if err != nil {
				t.Fatal(err)
			}

			if expected, actual := name, config.name; expected != actual {
				t.Errorf("expected: %s, actual: %s", expected, actual)
			}
			if expected, actual := 16000, config.targetRate; expected != actual {
				t.Errorf("expected: %d, actual: %d", expected, actual)
			}

			return true
		}

		if err := quick.Check(fn, nil); err != nil {
			t.Error(err)
		}
	})

	t.Run("invalid build", func(t *testing.T) {
		_, err := Build(
			func(config *Config) error {
				return errors.Errorf("bad")
			},
		)

		if expected, actual := false, err == nil; expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("virtual", func(t *testing.T) {
		config, err := Build(
			With("virtual"),
			WithWindow(time.Second),
			WithTargetRate(16000),
		)
		if err != nil {
			t.Fatal(err)
		}

		if _, err = New(config, log.NewNopLogger()); err != nil {
			t.Error(err)
		}
	})

	t.Run("virtual without window", func(t *testing.T) {
		config, err := Build(
			With("virtual"),
			WithTargetRate(16000),
		)
		if err != nil {
			t.Fatal(err)
		}

		if _, err = New(config, log.NewNopLogger()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("nop", func(t *testing.T) {
		config, err := Build(
			With("nop"),
		)
		if err != nil {
			t.Fatal(err)
		}

		if _, err = New(config, log.NewNopLogger()); err != nil {
			t.Error(err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		config, err := Build(
			With("bad"),
		)
		if err != nil {
			t.Fatal(err)
		}

		if _, err = New(config, log.NewNopLogger()); err == nil {
			t.Error("expected error")
		}
	})
}

func TestVirtualSource(t *testing.T) {
	t.Parallel()

	t.Run("clip sized to window and rate", func(t *testing.T) {
		config, err := Build(
			With("virtual"),
			WithWindow(5*time.Second),
			WithTargetRate(16000),
		)
		if err != nil {
			t.Fatal(err)
		}

		source, err := New(config, log.NewNopLogger())
		if err != nil {
			t.Fatal(err)
		}

		clip, err := source.Capture(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		if expected, actual := 5*16000*bytesPerSample, len(clip.Body); expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
		if expected, actual := 16000, clip.SampleRate; expected != actual {
			t.Errorf("expected: %d, actual: %d", expected, actual)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		config, err := Build(
			With("virtual"),
			WithWindow(time.Second),
			WithTargetRate(16000),
		)
		if err != nil {
			t.Fatal(err)
		}

		source, err := New(config, log.NewNopLogger())
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err = source.Capture(ctx); err == nil {
			t.Error("expected error")
		}
	})
}
