package fs

import (
	"testing"
	"testing/quick"

	"github.com/pkg/errors"
)

func TestBuildingFilesystem(t *testing.T) {
	t.Parallel()

	t.Run("build", func(t *testing.T) {
		fn := func(name string) bool {
			config, err := Build(
				With(name),
			)
			if err != nil {
				t.Fatal(err)
			}

			if expected, actual := name, config.name; expected != actual {
				t.Errorf("expected: %s, actual: %s", expected, actual)
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

	for _, name := range []string{"local", "virtual", "nop"} {
		t.Run(name, func(t *testing.T) {
			config, err := Build(
				With(name),
			)
			if err != nil {
				t.Fatal(err)
			}

			if _, err = New(config); err != nil {
				t.Error(err)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		config, err := Build(
			With("bad"),
		)
		if err != nil {
			t.Fatal(err)
		}

		if _, err = New(config); err == nil {
			t.Error("expected error")
		}
	})
}

func TestErrNotFound(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		err := errNotFound{errors.New("missing")}
		if expected, actual := true, ErrNotFound(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		err := errors.New("missing")
		if expected, actual := false, ErrNotFound(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if expected, actual := false, ErrNotFound(nil); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})
}
