package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/cairn/internal/config"
	"github.com/thoreinstein/cairn/internal/deps"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
	"github.com/thoreinstein/cairn/internal/project"
)

var initName string

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "project name (default: the directory name)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a cairn project",
	Long: `Create cairn.yaml and rust-toolchain.toml in the project directory.

An existing cairn.yaml is loaded instead, which migrates it to the latest
version. rust-toolchain.toml is only written when it does not exist.`,
	Example: `  # Create a project in the current directory
  cairn init

  # Create a project in another directory with an explicit name
  cairn init --dir ./relay --name relay

  See Also: cairn config show project, cairn dep install`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a := appFrom(ctx)
	out := cmd.OutOrStdout()

	dir, err := filepath.Abs(projectDirFlag)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", projectDirFlag)
	}

	name := initName
	if name == "" {
		name = project.NameFromDir(dir)
	}

	l, err := project.NewLoader(a.store, name)
	if err != nil {
		return err
	}
	_, existed, err := l.Find(ctx, dir)
	if err != nil {
		return err
	}
	h, err := l.Ensure(ctx, dir)
	if err != nil {
		return err
	}

	wrote, err := deps.WriteToolchain(a.store.Fs(), dir, h.Config.RustToolchain())
	if err != nil {
		return errors.NewSystemError(err, "Check that the project directory is writable")
	}
	logging.FromContext(ctx).Debug("rust toolchain file", "written", wrote)

	if existed {
		fmt.Fprintf(out, "Project %s already exists at %s\n", h.Config.Name, h.Path())
		return nil
	}
	fmt.Fprintf(out, "Created project %s at %s\n", h.Config.Name, h.Path())
	if config.AutoInstall() {
		fmt.Fprintln(out, "Run 'cairn dep install' to install the project tools")
	}
	return nil
}
