package fs

import (
	"io/ioutil"
	"os"
	"testing"
)

func TestVirtualFilesystem(t *testing.T) {
	t.Parallel()

	t.Run("create then open", func(t *testing.T) {
		fsys := NewVirtualFilesystem()

		f, err := fsys.Create("a/b.json")
		if err != nil {
			t.Fatal(err)
		}
		if _, err = f.Write([]byte("hello")); err != nil {
			t.Fatal(err)
		}
		if err = f.Close(); err != nil {
			t.Fatal(err)
		}

		g, err := fsys.Open("a/b.json")
		if err != nil {
			t.Fatal(err)
		}
		b, err := ioutil.ReadAll(g)
		if err != nil {
			t.Fatal(err)
		}

		if expected, actual := "hello", string(b); expected != actual {
			t.Errorf("expected: %s, actual: %s", expected, actual)
		}
	})

	t.Run("open does not drain content", func(t *testing.T) {
		fsys := NewVirtualFilesystem()

		f, _ := fsys.Create("a/b.json")
		f.Write([]byte("hello"))
		f.Close()

		for i := 0; i < 2; i++ {
			g, err := fsys.Open("a/b.json")
			if err != nil {
				t.Fatal(err)
			}
			b, _ := ioutil.ReadAll(g)
			if expected, actual := "hello", string(b); expected != actual {
				t.Errorf("expected: %s, actual: %s", expected, actual)
			}
		}
	})

	t.Run("open missing", func(t *testing.T) {
		fsys := NewVirtualFilesystem()

		_, err := fsys.Open("missing")
		if expected, actual := true, ErrNotFound(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("rename", func(t *testing.T) {
		fsys := NewVirtualFilesystem()

		f, _ := fsys.Create("old")
		f.Write([]byte("content"))

		if err := fsys.Rename("old", "new"); err != nil {
			t.Fatal(err)
		}

		if expected, actual := false, fsys.Exists("old"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
		if expected, actual := true, fsys.Exists("new"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("rename missing", func(t *testing.T) {
		fsys := NewVirtualFilesystem()

		err := fsys.Rename("old", "new")
		if expected, actual := true, ErrNotFound(err); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("remove", func(t *testing.T) {
		fsys := NewVirtualFilesystem()

		fsys.Create("a")
		if err := fsys.Remove("a"); err != nil {
			t.Fatal(err)
		}
		if expected, actual := false, fsys.Exists("a"); expected != actual {
			t.Errorf("expected: %t, actual: %t", expected, actual)
		}
	})

	t.Run("walk is sorted", func(t *testing.T) {
		fsys := NewVirtualFilesystem()

		for _, path := range []string{"dir/c", "dir/a", "dir/b", "other/z"} {
			fsys.Create(path)
		}

		var got []string
		err := fsys.Walk("dir", func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			got = append(got, path)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		want := []string{"dir/a", "dir/b", "dir/c"}
		if expected, actual := len(want), len(got); expected != actual {
			t.Fatalf("expected: %d, actual: %d", expected, actual)
		}
		for i := range want {
			if expected, actual := want[i], got[i]; expected != actual {
				t.Errorf("expected: %s, actual: %s", expected, actual)
			}
		}
	})
}
