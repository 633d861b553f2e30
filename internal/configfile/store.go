package configfile

import (
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/pkg/fileutil"
)

// Store owns the file system and the mutable handles of one command run.
// Handles are keyed by resolved absolute path and are never evicted.
type Store struct {
	fs            afero.Fs
	docsInConfigs func() bool

	loads   singleflight.Group
	mu      sync.Mutex
	handles map[string]any
	schemas map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets the file system configs are read from and written to.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithDocsInConfigs sets the preference deciding whether new config files
// get a full documentation header.
func WithDocsInConfigs(fn func() bool) Option {
	return func(s *Store) {
		s.docsInConfigs = fn
	}
}

// NewStore returns an empty store on the OS file system.
func NewStore(opts ...Option) *Store {
	s := &Store{
		fs:            afero.NewOsFs(),
		docsInConfigs: func() bool { return false },
		handles:       make(map[string]any),
		schemas:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fs returns the store's file system.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

func (s *Store) cached(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[path]
	return h, ok
}

// claim stores h for path unless a handle is already there, and returns the
// handle that owns path.
func (s *Store) claim(path string, h any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.handles[path]; ok {
		return existing
	}
	s.handles[path] = h
	return h
}

// ensureSchema writes the schema file at path once per store.
func (s *Store) ensureSchema(path string, doc map[string]any) (bool, error) {
	s.mu.Lock()
	done := s.schemas[path]
	s.mu.Unlock()
	if done {
		return false, nil
	}

	written, err := writeSchemaFile(s.fs, path, doc)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.schemas[path] = true
	s.mu.Unlock()
	return written, nil
}

func (s *Store) exists(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *Store) write(path, text string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	if err := fileutil.AtomicWriteFile(s.fs, path, []byte(text), fileutil.DefaultFilePerm); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
