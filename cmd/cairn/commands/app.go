package commands

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cairn/internal/cli/prompt"
	"github.com/thoreinstein/cairn/internal/config"
	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/internal/project"
)

// app holds what one command invocation shares: the config store with its
// handle cache, the prompter and the loaded user preferences.
type app struct {
	store    *configfile.Store
	prompter *prompt.Prompter
	prefs    *config.Config
}

type appKey struct{}

// newPrompter returns the prompter commands ask with. Tests replace it.
var newPrompter = prompt.New

func setupApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	config.Init()
	store := configfile.NewStore(
		configfile.WithFs(afero.NewOsFs()),
		configfile.WithDocsInConfigs(config.DocsInConfigs),
	)

	prefs, err := config.Load(ctx, store, paths.UserConfigDir())
	if err != nil {
		return err
	}

	p := newPrompter()
	p.SetNoInput(noInput)

	cmd.SetContext(context.WithValue(ctx, appKey{}, &app{
		store:    store,
		prompter: p,
		prefs:    prefs,
	}))
	return nil
}

func appFrom(ctx context.Context) *app {
	a, ok := ctx.Value(appKey{}).(*app)
	if !ok {
		panic("commands: app not initialized")
	}
	return a
}

// projectRoot returns the project directory containing --dir.
func projectRoot() (string, error) {
	return project.Root(projectDirFlag)
}

// loadProject loads the project config of the current project.
func loadProject(ctx context.Context, a *app) (string, *configfile.Handle[project.Config], error) {
	root, err := projectRoot()
	if err != nil {
		return "", nil, err
	}
	l, err := project.NewLoader(a.store, project.NameFromDir(root))
	if err != nil {
		return "", nil, err
	}
	h, ok, err := l.Find(ctx, root)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, errors.NewUserError(errors.ErrNoProject, "Run: cairn init")
	}
	return root, h, nil
}
