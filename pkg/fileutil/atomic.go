// Package fileutil provides file system utilities including atomic write operations.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/thoreinstein/cairn/internal/errors"
)

// DefaultFilePerm is the permission used for config and schema files.
const DefaultFilePerm = 0o644

// AtomicWriteFile writes data to path on fs atomically using a temp file + rename pattern.
// This ensures interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Temp file in the same directory so the rename stays on one filesystem
	tmp, err := afero.TempFile(fs, dir, ".cairn-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if rename failed (file still exists)
		if _, statErr := fs.Stat(tmpName); statErr == nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := fs.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}

	if err := fs.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// MarshalJSON encodes v as indented JSON with 2-space indentation and a
// trailing newline for POSIX compliance.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return append(data, '\n'), nil
}

// AtomicWriteJSON writes v as indented JSON to path atomically.
//
// The caller is responsible for ensuring the parent directory exists.
// The file is created with DefaultFilePerm permissions.
func AtomicWriteJSON(fs afero.Fs, path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(fs, path, data, DefaultFilePerm)
}
