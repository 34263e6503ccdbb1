package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(t.TempDir())
		if err != nil {
			t.Fatalf("NewLocal() error = %v", err)
		}
		defer local.Close()

		if !filepath.IsAbs(local.Root()) {
			t.Errorf("Root() = %s, want absolute path", local.Root())
		}
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal("/nonexistent/path/that/does/not/exist")
		if err == nil {
			t.Error("NewLocal() should fail for non-existent path")
		}
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.c")
		writeFile(t, path, "int main(){}")

		if _, err := NewLocal(path); err == nil {
			t.Error("NewLocal() should fail for file path (not directory)")
		}
	})
}

func TestLocalList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.c"), "b")
	writeFile(t, filepath.Join(root, "a.c"), "aa")
	writeFile(t, filepath.Join(root, "lib", "util.c"), "util")

	local, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	files, err := local.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []struct {
		rel   string
		isDir bool
	}{
		{"a.c", false},
		{"b.c", false},
		{"lib", true},
		{"lib/util.c", false},
	}
	if len(files) != len(want) {
		t.Fatalf("List() returned %d entries, want %d: %+v", len(files), len(want), files)
	}
	for i, w := range want {
		if files[i].RelativePath != w.rel || files[i].IsDir != w.isDir {
			t.Errorf("entry %d = %s (dir=%v), want %s (dir=%v)", i, files[i].RelativePath, files[i].IsDir, w.rel, w.isDir)
		}
	}
	if files[0].Size != 2 {
		t.Errorf("a.c size = %d, want 2", files[0].Size)
	}
}

func TestLocalList_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.c"), "a")

	local, err := NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := local.List(ctx, ""); err == nil {
		t.Error("List() should fail on a cancelled context")
	}
}

func TestBackendInterface(t *testing.T) {
	var _ Backend = (*Local)(nil)
}
