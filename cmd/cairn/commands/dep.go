package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cairn/internal/deps"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/project"
)

var (
	depVersionsJSON bool
	depInstallDry   bool
)

// newInstaller returns the installer used by dep install. Tests replace it.
var newInstaller = deps.NewInstaller

func init() {
	depVersionsCmd.Flags().BoolVar(&depVersionsJSON, "json", false, "output as JSON")
	depInstallCmd.Flags().BoolVar(&depInstallDry, "dry-run", false, "print what would be installed")

	depCmd.AddCommand(depVersionsCmd)
	depCmd.AddCommand(depPinCmd)
	depCmd.AddCommand(depInstallCmd)
	rootCmd.AddCommand(depCmd)
}

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage project tool versions",
	Long: `Manage the npm and cargo tools a cairn project builds with.

cairn ships a default version of every tool. Pins in cairn.yaml override
the defaults.`,
}

var depVersionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List tool versions",
	Long: `List the version of every tool the project uses, whether it is pinned,
and whether a pin is inside the range cairn supports.

Outside a project, lists cairn's defaults.`,
	Example: `  cairn dep versions
  cairn dep versions --json`,
	Args: cobra.NoArgs,
	RunE: runDepVersions,
}

var depPinCmd = &cobra.Command{
	Use:   "pin <npm|cargo> <name[@version]>",
	Short: "Pin a tool version in cairn.yaml",
	Long: `Pin a tool version in cairn.yaml. Without a version, the default version
of the tool is pinned.`,
	Example: `  cairn dep pin cargo marine@0.20.1
  cairn dep pin npm @fluencelabs/aqua`,
	Args: cobra.ExactArgs(2),
	RunE: runDepPin,
}

var depInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the Rust toolchain and project tools",
	Long: `Install the Rust toolchain named in rust-toolchain.toml, then every cargo
and npm tool into the cairn cache. Installed versions are skipped.`,
	Example: `  cairn dep install
  cairn dep install --dry-run`,
	Args: cobra.NoArgs,
	RunE: runDepInstall,
}

func runDepVersions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var cfg *project.Config
	_, h, err := loadProject(ctx, appFrom(ctx))
	switch {
	case err == nil:
		cfg = h.Config
	case errors.Is(err, errors.ErrNoProject):
	default:
		return err
	}

	resolved, err := deps.Resolve(cfg)
	if err != nil {
		return err
	}

	if depVersionsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resolved)
	}
	return writeVersions(cmd.OutOrStdout(), resolved)
}

func writeVersions(w io.Writer, resolved []deps.Resolved) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MANAGER\tNAME\tVERSION\tSOURCE")
	for _, r := range resolved {
		source := "default"
		if r.Pinned {
			source = "pinned"
			if !r.Compatible {
				source += " (unsupported)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Manager, r.Name, r.Version, source)
	}
	return tw.Flush()
}

func runDepPin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := deps.ParseManager(args[0])
	if err != nil {
		return errors.NewUserError(err, "Use npm or cargo")
	}
	spec, err := deps.ParseSpec(args[1])
	if err != nil {
		return errors.NewUserError(err, "Write the dependency as name@1.2.3")
	}

	_, h, err := loadProject(ctx, appFrom(ctx))
	if err != nil {
		return err
	}
	pinned, err := deps.Pin(ctx, h, m, spec)
	if err != nil {
		if errors.Is(err, deps.ErrInvalidSpec) {
			return errors.NewUserError(err, "Write the dependency as name@1.2.3")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s %s in %s\n", m, pinned, h.Path())
	return nil
}

func runDepInstall(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	root, h, err := loadProject(ctx, appFrom(ctx))
	if err != nil {
		return err
	}

	installer := newInstaller(out)
	installer.DryRun = depInstallDry
	report, err := installer.Install(ctx, root, h.Config)
	if err != nil {
		return errors.NewSystemError(err, "Check the output above, then run: cairn dep install")
	}

	verb := "Installed"
	if depInstallDry {
		verb = "Would install"
	}
	fmt.Fprintf(out, "%s %d tool(s), %d already installed\n", verb, report.Installed(), len(report.Steps)-report.Installed())
	return nil
}
