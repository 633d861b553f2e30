package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestAtomicWriteFile(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		perm os.FileMode
	}{
		{
			name: "successful write",
			data: []byte("version: 1\n"),
			perm: 0644,
		},
		{
			name: "empty data",
			data: []byte{},
			perm: 0644,
		},
		{
			name: "private permissions",
			data: []byte("secret: x\n"),
			perm: 0600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "provider.yaml")

			if err := AtomicWriteFile(afero.NewOsFs(), path, tt.data, tt.perm); err != nil {
				t.Fatalf("AtomicWriteFile() error = %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading file: %v", err)
			}
			if string(got) != string(tt.data) {
				t.Errorf("content = %q, want %q", got, tt.data)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stating file: %v", err)
			}
			if gotPerm := info.Mode().Perm(); gotPerm != tt.perm {
				t.Errorf("permissions = %o, want %o", gotPerm, tt.perm)
			}
		})
	}
}

func TestAtomicWriteFile_DirectoryNotExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent", "subdir", "file.txt")

	if err := AtomicWriteFile(afero.NewOsFs(), path, []byte("data"), 0600); err == nil {
		t.Error("AtomicWriteFile() expected error for nonexistent directory")
	}
}

func TestAtomicWriteFile_OverwriteExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/project/cairn.yaml"
	if err := afero.WriteFile(fs, path, []byte("original\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWriteFile(fs, path, []byte("new content\n"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile() error = %v", err)
	}

	got, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(got) != "new content\n" {
		t.Errorf("content = %q, want %q", got, "new content\n")
	}

	entries, err := afero.ReadDir(fs, "/project")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestAtomicWriteFile_ReadOnlyFs(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := afero.WriteFile(base, "/p/a.yaml", []byte("a: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fs := afero.NewReadOnlyFs(base)

	if err := AtomicWriteFile(fs, "/p/a.yaml", []byte("a: 2\n"), 0644); err == nil {
		t.Fatal("AtomicWriteFile() on read-only fs should fail")
	}

	got, _ := afero.ReadFile(base, "/p/a.yaml")
	if string(got) != "a: 1\n" {
		t.Errorf("original content changed to %q", got)
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantJSON string
		wantErr  bool
	}{
		{
			name:     "map",
			value:    map[string]int{"count": 42},
			wantJSON: "{\n  \"count\": 42\n}\n",
		},
		{
			name:     "slice",
			value:    []string{"a", "b"},
			wantJSON: "[\n  \"a\",\n  \"b\"\n]\n",
		},
		{
			name:    "unmarshalable channel",
			value:   make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			path := "/schemas/test.json"
			if err := fs.MkdirAll("/schemas", 0o755); err != nil {
				t.Fatal(err)
			}

			err := AtomicWriteJSON(fs, path, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AtomicWriteJSON() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				if _, err := fs.Stat(path); err == nil {
					t.Error("file should not exist after marshal error")
				}
				return
			}

			got, err := afero.ReadFile(fs, path)
			if err != nil {
				t.Fatalf("reading file: %v", err)
			}
			if string(got) != tt.wantJSON {
				t.Errorf("content = %q, want %q", got, tt.wantJSON)
			}
		})
	}
}
