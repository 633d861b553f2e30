package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/thoreinstein/cairn/internal/cli/prompt"
)

// testEnv isolates one test from the user's config dir and from flag and
// viper state left behind by earlier command runs.
type testEnv struct {
	t         *testing.T
	configDir string
	dir       string
	input     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	configDir := t.TempDir()
	t.Setenv("CAIRN_CONFIG_DIR", configDir)
	t.Setenv("CAIRN_DOCS_IN_CONFIGS", "")
	t.Setenv("CAIRN_DEFAULT_ENV", "")
	t.Setenv("CAIRN_AUTO_INSTALL", "")

	savedPrompter := newPrompter
	t.Cleanup(func() { newPrompter = savedPrompter })

	return &testEnv{t: t, configDir: configDir, dir: t.TempDir()}
}

// run executes the root command with args inside the test project dir and
// returns what it printed.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()

	viper.Reset()
	resetFlags(rootCmd)
	input := e.input
	newPrompter = func() *prompt.Prompter {
		return prompt.NewWithIO(strings.NewReader(input), io.Discard)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--dir", e.dir}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) write(name, content string) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.dir, name), []byte(content), 0o644); err != nil {
		e.t.Fatal(err)
	}
}

func (e *testEnv) read(path string) string {
	e.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		e.t.Fatal(err)
	}
	return string(data)
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
