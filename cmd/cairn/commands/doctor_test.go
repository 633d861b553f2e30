package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thoreinstein/cairn/internal/doctor"
)

func TestDoctor_ReportsInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	env.write("cairn.yaml", "version: 2\nname: demo\n")
	env.write("provider.yaml", "version: 1\n")
	t.Setenv("PATH", t.TempDir())

	output, err := env.run("doctor", "--all")
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	for _, want := range []string{"config-provider", "tool-cargo", "not found on PATH", "rust-toolchain.toml not found", "Summary:"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestWriteDoctorText(t *testing.T) {
	report := &doctor.Report{
		Results: []*doctor.CheckResult{
			{Name: "tool-npm", Category: "tools", Status: doctor.SeverityPass, Message: "npm found"},
			{Name: "rust-toolchain", Category: "project", Status: doctor.SeverityWarning, Message: "mismatch", FixHint: "fix it"},
		},
		Summary: doctor.Summary{Passed: 1, Warnings: 1},
	}

	var buf bytes.Buffer
	writeDoctorText(&buf, report, false)
	got := buf.String()

	if strings.Contains(got, "npm found") {
		t.Errorf("passed check shown without --all:\n%s", got)
	}
	if !strings.Contains(got, "⚠ [project] rust-toolchain: mismatch") || !strings.Contains(got, "hint: fix it") {
		t.Errorf("warning not shown:\n%s", got)
	}
	if !strings.Contains(got, "Summary: 1 passed, 0 info, 1 warnings, 0 errors") {
		t.Errorf("summary missing:\n%s", got)
	}
}
