package configfile

import (
	"context"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
	"github.com/thoreinstein/cairn/internal/validator"
)

// Document is a loaded, valid config that is not meant to be changed.
type Document[T any] struct {
	value      T
	path       string
	ref        string
	text       string
	validators *Validators
}

// Value returns a copy of the config. Maps and slices inside it are shared
// with the document.
func (d *Document[T]) Value() T {
	return d.value
}

// Path returns the absolute path of the config file.
func (d *Document[T]) Path() string {
	return d.path
}

// Dir returns the directory holding the config file.
func (d *Document[T]) Dir() string {
	return filepath.Dir(d.path)
}

// String returns the config file's text.
func (d *Document[T]) String() string {
	return d.text
}

// Validators returns the compiled schemas of the config.
func (d *Document[T]) Validators() *Validators {
	return d.validators
}

// Handle is a loaded config shared by everyone who asks for the same path
// during one command run. Callers change Config and call Commit.
type Handle[T any] struct {
	Config *T

	path   string
	ref    string
	text   string
	loader *Loader[T]
}

// Path returns the absolute path of the config file.
func (h *Handle[T]) Path() string {
	return h.path
}

// Dir returns the directory holding the config file.
func (h *Handle[T]) Dir() string {
	return filepath.Dir(h.path)
}

// String returns the text last read from or written to disk.
func (h *Handle[T]) String() string {
	return h.text
}

// Commit validates Config against the latest schema and writes it, merged
// into the current text, when that changes the text.
func (h *Handle[T]) Commit(ctx context.Context) error {
	snapshot, err := toPlain(h.Config)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", h.path)
	}

	if res := h.loader.validators.checkLatest(snapshot); res.HasErrors() {
		return &CommitError{Name: h.loader.def.Name, Path: h.path, Issues: res}
	}

	merged, err := Merge(h.text, snapshot)
	if err != nil {
		return errors.Wrapf(err, "rewriting %s", h.path)
	}
	merged = SetSchemaComment(Format(merged), h.ref)
	if merged == h.text {
		return nil
	}

	if err := h.loader.store.write(h.path, merged); err != nil {
		return err
	}
	h.text = merged
	logging.FromContext(ctx).Debug("committed config", "config", h.loader.def.Name, "path", h.path)
	return nil
}

// CommitError reports an in-memory config that does not match its schema.
// Nothing was written.
type CommitError struct {
	Name   string
	Path   string
	Issues *validator.Result
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("refusing to write invalid %s config %s:\n%s", e.Name, e.Path, e.Issues.String())
}

func (e *CommitError) Unwrap() error {
	return errors.ErrInvalidConfig
}

// toPlain converts a config struct into the generic value its YAML
// encoding decodes to.
func toPlain(v any) (any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return plain(out), nil
}
