package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cairn/internal/doctor"
	"github.com/thoreinstein/cairn/internal/errors"
)

var (
	doctorJSON bool
	doctorAll  bool
)

// doctorTools lists the programs dep install runs.
var doctorTools = []struct {
	program string
	hint    string
}{
	{"rustup", "Install rustup from https://rustup.rs"},
	{"cargo", "Install rustup from https://rustup.rs"},
	{"npm", "Install Node.js from https://nodejs.org"},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show passed checks too")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "all")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the project and its tools",
	Long: `Run diagnostic checks: the programs dep install needs, every config file
cairn can find, and the Rust toolchain file of the project.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a := appFrom(ctx)

	runner := doctor.NewRunner()
	for _, tool := range doctorTools {
		runner.AddCheck(doctor.NewToolCheck(tool.program, true, tool.hint))
	}

	ts, err := targets(a, nil)
	if err != nil {
		return err
	}
	for _, t := range ts {
		runner.AddCheck(doctor.NewConfigCheck(t.name, func(ctx context.Context) (string, bool, error) {
			doc, ok, err := t.load(ctx, t.dir)
			if err != nil || !ok {
				return "", ok, err
			}
			return doc.Path(), true, nil
		}))
	}

	// a missing or broken cairn.yaml is reported by its config check
	if root, h, err := loadProject(ctx, a); err == nil {
		runner.AddCheck(doctor.NewToolchainCheck(a.store.Fs(), root, h.Config.RustToolchain()))
	}

	report := runner.Run(ctx)

	out := cmd.OutOrStdout()
	if doctorJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
	} else {
		writeDoctorText(out, report, doctorAll)
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func writeDoctorText(w io.Writer, report *doctor.Report, showAll bool) {
	shown := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		shown = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if issues, ok := result.Details["issues"].(string); ok && issues != "" {
			fmt.Fprintln(w, issues)
		}
		if result.FixHint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if shown {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// errDoctorWarnings is reported with exit code 1.
var errDoctorWarnings = errors.New("doctor found warnings")

// errDoctorErrors is reported with exit code 2.
var errDoctorErrors = errors.New("doctor found errors")
