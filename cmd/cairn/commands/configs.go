package commands

import (
	"context"
	"slices"

	"github.com/thoreinstein/cairn/internal/config"
	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/internal/project"
	"github.com/thoreinstein/cairn/internal/provider"
)

// configNames lists the logical configs the config subcommands accept, in
// the order they are reported.
var configNames = []string{project.Name, provider.Name, config.Name}

// document is the part of a loaded config the config subcommands print.
type document interface {
	Path() string
	String() string
}

// target binds one logical config to the directory it lives in.
type target struct {
	name    string
	dir     string
	resolve func(path string) (string, error)
	load    func(ctx context.Context, path string) (document, bool, error)
	latest  int
}

func newTarget[T any](dir string, l *configfile.Loader[T]) *target {
	def := l.Definition()
	return &target{
		name:    def.Name,
		dir:     dir,
		resolve: l.Resolve,
		load: func(ctx context.Context, path string) (document, bool, error) {
			doc, ok, err := l.Load(ctx, path)
			if err != nil || !ok {
				return nil, ok, err
			}
			return doc, true, nil
		},
		latest: def.LatestVersion(),
	}
}

// targetFor returns the config called name. Project and provider configs
// need a project around --dir.
func targetFor(a *app, name string) (*target, error) {
	if !slices.Contains(configNames, name) {
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrUnknownConfig, "%q", name),
			"Use one of: project, provider, user")
	}

	if name == config.Name {
		l, err := config.NewLoader(a.store)
		if err != nil {
			return nil, err
		}
		return newTarget(paths.UserConfigDir(), l), nil
	}

	root, err := projectRoot()
	if err != nil {
		return nil, err
	}
	switch name {
	case project.Name:
		l, err := project.NewLoader(a.store, project.NameFromDir(root))
		if err != nil {
			return nil, err
		}
		return newTarget(root, l), nil
	default:
		l, err := provider.NewLoader(a.store, nil)
		if err != nil {
			return nil, err
		}
		return newTarget(root, l), nil
	}
}

// targets returns the configs named in args, or all of them that can be
// located when args is empty.
func targets(a *app, args []string) ([]*target, error) {
	if len(args) > 0 {
		t, err := targetFor(a, args[0])
		if err != nil {
			return nil, err
		}
		return []*target{t}, nil
	}

	var out []*target
	for _, name := range configNames {
		t, err := targetFor(a, name)
		if errors.Is(err, errors.ErrNoProject) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// mustLoad loads t and turns a missing file into a user error.
func (t *target) mustLoad(ctx context.Context) (document, error) {
	doc, ok, err := t.load(ctx, t.dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		path, _ := t.resolve(t.dir)
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "%s config %s", t.name, path),
			createHint(t.name))
	}
	return doc, nil
}

func createHint(name string) string {
	switch name {
	case provider.Name:
		return "Run: cairn provider init"
	default:
		return "Run: cairn init"
	}
}
