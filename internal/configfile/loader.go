package configfile

import (
	"context"
	iofs "io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/internal/validator"
	"github.com/thoreinstein/cairn/pkg/fileutil"
)

// Loader reads, creates, validates and migrates one kind of config file.
type Loader[T any] struct {
	store      *Store
	def        Definition[T]
	validators *Validators
}

// NewLoader checks def and compiles its schemas.
func NewLoader[T any](store *Store, def Definition[T]) (*Loader[T], error) {
	if store == nil {
		return nil, errors.New("config store is required")
	}
	if err := def.check(); err != nil {
		return nil, err
	}
	v, err := compileValidators(def.Name, def.Schemas)
	if err != nil {
		return nil, err
	}
	return &Loader[T]{store: store, def: def, validators: v}, nil
}

// Definition returns the definition the loader was built from.
func (l *Loader[T]) Definition() Definition[T] {
	return l.def
}

// Validators returns the compiled schemas.
func (l *Loader[T]) Validators() *Validators {
	return l.validators
}

// Load reads the config at path, which is either a directory or a YAML file
// path. A missing file is reported with ok == false.
func (l *Loader[T]) Load(ctx context.Context, path string) (*Document[T], bool, error) {
	configPath, err := l.Resolve(path)
	if err != nil {
		return nil, false, err
	}
	return l.load(ctx, configPath, false)
}

// LoadOrCreate reads the config at path, creating it from the definition's
// default when it does not exist.
func (l *Loader[T]) LoadOrCreate(ctx context.Context, path string) (*Document[T], error) {
	if l.def.Default == nil {
		return nil, errors.Newf("config %q has no default", l.def.Name)
	}
	configPath, err := l.Resolve(path)
	if err != nil {
		return nil, err
	}
	doc, _, err := l.load(ctx, configPath, true)
	return doc, err
}

// Find returns the cached mutable handle for the config at path, loading it
// on first use. A missing file is reported with ok == false.
func (l *Loader[T]) Find(ctx context.Context, path string) (*Handle[T], bool, error) {
	return l.handle(ctx, path, false)
}

// Ensure returns the cached mutable handle for the config at path, loading
// or creating it on first use.
func (l *Loader[T]) Ensure(ctx context.Context, path string) (*Handle[T], error) {
	if l.def.Default == nil {
		return nil, errors.Newf("config %q has no default", l.def.Name)
	}
	h, _, err := l.handle(ctx, path, true)
	return h, err
}

// Resolve returns the absolute config path for path. When the file does not
// exist but its sibling with the other YAML extension does, the sibling is
// returned.
func (l *Loader[T]) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}

	configPath := abs
	if !paths.IsYAMLFile(abs) {
		configPath = filepath.Join(abs, l.def.FileName)
	}

	if !l.store.exists(configPath) {
		if sibling := paths.SiblingExt(configPath); l.store.exists(sibling) {
			return sibling, nil
		}
	}
	return configPath, nil
}

func (l *Loader[T]) handle(ctx context.Context, path string, create bool) (*Handle[T], bool, error) {
	configPath, err := l.Resolve(path)
	if err != nil {
		return nil, false, err
	}

	// Concurrent loads of one path share a single read, so every caller
	// ends up with the same handle.
	key := "find:" + configPath
	if create {
		key = "ensure:" + configPath
	}
	v, err, _ := l.store.loads.Do(key, func() (any, error) {
		if cached, ok := l.store.cached(configPath); ok {
			return cached, nil
		}
		doc, ok, err := l.load(ctx, configPath, create)
		if err != nil || !ok {
			return nil, err
		}
		value := doc.value
		return l.store.claim(configPath, &Handle[T]{
			Config: &value,
			path:   doc.path,
			ref:    doc.ref,
			text:   doc.text,
			loader: l,
		}), nil
	})
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, nil
	}

	h, ok := v.(*Handle[T])
	if !ok {
		return nil, false, errors.Newf("config %s is already loaded as %T", configPath, v)
	}
	return h, true, nil
}

func (l *Loader[T]) load(ctx context.Context, configPath string, create bool) (*Document[T], bool, error) {
	logger := logging.FromContext(ctx).With("config", l.def.Name, "path", configPath)
	dir := filepath.Dir(configPath)

	data, err := fileutil.ReadFileWithLimit(l.store.fs, configPath)
	exists := err == nil
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return nil, false, errors.NewSystemError(
			errors.Wrapf(err, "reading %s", configPath), "Check the file permissions")
	}
	if !exists && !create {
		logger.Debug("config not found")
		return nil, false, nil
	}

	schemaPath := schemaFile(dir, l.def.SchemaDir, l.def.Name)
	written, err := l.store.ensureSchema(schemaPath, l.validators.LatestSchema())
	if err != nil {
		return nil, false, errors.NewSystemError(err, "Check that the config directory is writable")
	}
	if written {
		logger.Debug("wrote schema", "schema", schemaPath)
	}
	ref := schemaRef(dir, schemaPath)

	var text, onDisk string
	if exists {
		onDisk = string(data)
		text = SetSchemaComment(onDisk, ref)
		if text != onDisk {
			if err := l.store.write(configPath, text); err != nil {
				return nil, false, errors.NewSystemError(err, "Check that the config file is writable")
			}
			onDisk = text
			logger.Debug("updated schema comment")
		}
	} else {
		body, err := l.def.Default(ctx)
		if err != nil {
			return nil, false, errors.Wrapf(err, "generating default %s config", l.def.Name)
		}
		text = Format(l.header(ref) + "\n\n" + body)
		logger.Info("creating config")
	}

	doc, err := l.materialize(ctx, logger, configPath, ref, text)
	if err != nil {
		return nil, false, err
	}

	if doc.text != onDisk {
		if err := l.store.write(configPath, doc.text); err != nil {
			return nil, false, errors.NewSystemError(err, "Check that the config file is writable")
		}
		logger.Debug("wrote config")
	}
	return doc, true, nil
}

// materialize validates text, migrating it first when it is behind, and
// decodes the result. Nothing is written here.
func (l *Loader[T]) materialize(ctx context.Context, logger *slog.Logger, configPath, ref, text string) (*Document[T], error) {
	raw, err := parseYAML(text)
	if err != nil {
		return nil, l.fatal(configPath, StageStructure, issueResult("/", err.Error()), "", nil)
	}
	if res := l.validators.checkAll(raw); res.HasErrors() {
		return nil, l.fatal(configPath, StageStructure, res, "", nil)
	}

	cfg := raw.(map[string]any)
	version, _ := parseVersion(cfg["version"])

	stage := StageSemantic
	if version < len(l.def.Migrations) {
		logger.Info("migrating config", "from", version, "to", l.def.LatestVersion())
		migrated, err := migrate(ctx, cfg, version, l.def.Migrations)
		if err != nil {
			return nil, errors.NewUserError(
				errors.Wrapf(err, "migrating %s", configPath), "Fix the config file by hand, then run: cairn config validate")
		}

		merged, err := Merge(text, migrated)
		if err != nil {
			return nil, errors.Wrapf(err, "rewriting %s", configPath)
		}
		text = SetSchemaComment(Format(merged), ref)
		stage = StageMigration

		if raw, err = parseYAML(text); err != nil {
			return nil, l.fatal(configPath, stage, issueResult("/", err.Error()), text, nil)
		}
	}

	if res := l.validators.checkLatest(raw); res.HasErrors() {
		if stage == StageSemantic {
			stage = StageStructure
		}
		return nil, l.fatal(configPath, stage, res, text, nil)
	}

	var value T
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return nil, l.fatal(configPath, StageStructure, issueResult("/", err.Error()), text, nil)
	}

	if l.def.Validate != nil {
		if err := l.def.Validate(&value, configPath); err != nil {
			return nil, l.fatal(configPath, stage, nil, text, err)
		}
	}

	return &Document[T]{
		value:      value,
		path:       configPath,
		ref:        ref,
		text:       text,
		validators: l.validators,
	}, nil
}

func (l *Loader[T]) fatal(path string, stage SchemaStage, issues *validator.Result, text string, cause error) error {
	if stage != StageMigration {
		text = ""
	}
	return errors.NewConfigError(&SchemaError{
		Name:          l.def.Name,
		Path:          path,
		Stage:         stage,
		LatestVersion: l.def.LatestVersion(),
		Issues:        issues,
		Text:          text,
		Cause:         cause,
	})
}

// header returns the comment block that starts a newly created file.
func (l *Loader[T]) header(ref string) string {
	lines := []string{SchemaComment(ref), ""}
	for _, d := range strings.Split(strings.TrimSpace(l.def.Description), "\n") {
		if d != "" {
			lines = append(lines, "# "+d)
		}
	}
	if l.def.DocsURL != "" {
		lines = append(lines, "# Documentation: "+l.def.DocsURL)
	}
	if l.store.docsInConfigs() {
		if len(lines) > 2 {
			lines = append(lines, "#")
		}
		lines = append(lines, "# Properties:")
		lines = append(lines, propertyDocs(l.validators.LatestSchema(), 0)...)
	}
	return strings.Join(lines, "\n")
}

func issueResult(field, message string) *validator.Result {
	res := &validator.Result{}
	res.AddError(field, message, nil)
	return res
}

func parseYAML(text string) (any, error) {
	var raw any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.Wrap(err, "invalid YAML")
	}
	return plain(raw), nil
}
