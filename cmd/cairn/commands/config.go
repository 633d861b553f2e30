package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/cairn/internal/config"
	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/editor"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/internal/validator"
	"github.com/thoreinstein/cairn/pkg/fileutil"
)

var validateJSON bool

func init() {
	configValidateCmd.Flags().BoolVar(&validateJSON, "json", false, "report issues as JSON")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configMigrateCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and maintain cairn config files",
	Long: `Inspect and maintain the cairn config files: project (cairn.yaml),
provider (provider.yaml) and user (config.yaml in the cairn config dir).

Without a subcommand, lists your preferences.`,
	Example: `  # Show the project config after migration
  cairn config show project

  # Validate every config file
  cairn config validate

  # Change a preference
  cairn config set docs_in_configs true

See Also: cairn init, cairn provider init`,
	RunE: runConfigList,
}

var configShowCmd = &cobra.Command{
	Use:       "show <project|provider|user>",
	Short:     "Print a config file",
	Long:      `Load a config file, migrating it when it is behind, and print it.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: configNames,
	RunE:      runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:       "path <project|provider|user>",
	Short:     "Print the path of a config file",
	Args:      cobra.ExactArgs(1),
	ValidArgs: configNames,
	RunE:      runConfigPath,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [project|provider|user]",
	Short: "Validate config files",
	Long: `Validate config files against their JSON Schemas and semantic rules.

Without an argument, validates every config file that exists.`,
	Example: `  # Validate everything
  cairn config validate

  # Validate the provider config and report as JSON
  cairn config validate provider --json

See Also: cairn config migrate`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: configNames,
	RunE:      runConfigValidate,
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate [project|provider|user]",
	Short: "Migrate config files to their latest version",
	Long: `Migrate config files to their latest version, keeping comments and key
order. A file that fails validation after migration is left unchanged.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: configNames,
	RunE:      runConfigMigrate,
}

var configEditCmd = &cobra.Command{
	Use:   "edit <project|provider|user>",
	Short: "Open a config file in $EDITOR",
	Long: `Open a config file in your editor and validate it when the editor exits.

Uses $EDITOR, then $VISUAL, then nano or vi.`,
	Example: `  # Edit the provider config
  cairn config edit provider

  # Edit with a specific editor
  EDITOR="code --wait" cairn config edit project

See Also: cairn config validate`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: configNames,
	RunE:      runConfigEdit,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a preference",
	Long: `Get a preference as cairn sees it: CAIRN_* environment variables first,
then the user config, then defaults.`,
	Example: `  cairn config get default_env

See Also: cairn config set`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a preference in the user config",
	Example: `  cairn config set default_env testnet
  cairn config set auto_install false

See Also: cairn config get`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd.Context())
	for _, key := range config.Keys() {
		value, err := config.Get(a.prefs, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, value)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, err := targetFor(appFrom(ctx), args[0])
	if err != nil {
		return err
	}
	doc, err := t.mustLoad(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), doc.String())
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	t, err := targetFor(appFrom(cmd.Context()), args[0])
	if err != nil {
		return err
	}
	path, err := t.resolve(t.dir)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	ts, err := targets(appFrom(ctx), args)
	if err != nil {
		return err
	}

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}
	reporter := validator.NewReporter(out, format)

	failed := 0
	for _, t := range ts {
		doc, ok, err := t.load(ctx, t.dir)
		if err == nil && !ok {
			if len(args) > 0 {
				_, err = t.mustLoad(ctx)
				return err
			}
			continue
		}

		var schemaErr *configfile.SchemaError
		switch {
		case err == nil:
			if !validateJSON {
				fmt.Fprintf(out, "%s: valid\n", doc.Path())
			}
		case errors.As(err, &schemaErr) && schemaErr.Issues.HasErrors():
			failed++
			if err := reporter.ReportFile(schemaErr.Path, schemaErr.Issues); err != nil {
				return err
			}
		default:
			failed++
			fmt.Fprintf(out, "%v\n", err)
		}
	}

	if failed > 0 {
		return errors.NewConfigError(errors.Wrapf(errors.ErrInvalidConfig, "%d config file(s) failed validation", failed))
	}
	return nil
}

func runConfigMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := appFrom(ctx)
	out := cmd.OutOrStdout()

	ts, err := targets(a, args)
	if err != nil {
		return err
	}

	for _, t := range ts {
		path, err := t.resolve(t.dir)
		if err != nil {
			return err
		}
		before, ok := fileVersion(a, path)
		if !ok {
			if len(args) > 0 {
				_, err := t.mustLoad(ctx)
				return err
			}
			continue
		}

		if _, err := t.mustLoad(ctx); err != nil {
			return err
		}
		if before < t.latest {
			fmt.Fprintf(out, "Migrated %s from version %d to %d\n", path, before, t.latest)
		} else {
			fmt.Fprintf(out, "%s is at version %d\n", path, t.latest)
		}
	}
	return nil
}

// fileVersion reads the version a config file declares before it is
// loaded. ok is false when the file cannot be read.
func fileVersion(a *app, path string) (int, bool) {
	data, err := fileutil.ReadFileWithLimit(a.store.Fs(), path)
	if err != nil {
		return 0, false
	}
	var head struct {
		Version configfile.Version `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return 0, true
	}
	return int(head.Version), true
}

// openEditor edits path interactively. Tests replace it.
var openEditor = func(ctx context.Context, path string) error {
	return editor.New().Open(ctx, path)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, err := targetFor(appFrom(ctx), args[0])
	if err != nil {
		return err
	}
	doc, err := t.mustLoad(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", doc.Path())
	if err := openEditor(ctx, doc.Path()); err != nil {
		return err
	}

	if _, err := t.mustLoad(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", doc.Path())
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := config.Get(config.Effective(), args[0])
	if err != nil {
		return errors.NewUserError(err, "Run 'cairn config' to list preferences")
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := appFrom(ctx)

	l, err := config.NewLoader(a.store)
	if err != nil {
		return err
	}
	h, err := l.Ensure(ctx, paths.UserConfigDir())
	if err != nil {
		return err
	}

	if err := config.Set(h.Config, args[0], args[1]); err != nil {
		return errors.NewUserError(err, "Run 'cairn config' to list preferences")
	}
	if err := h.Commit(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s in %s\n", args[0], args[1], h.Path())
	return nil
}
