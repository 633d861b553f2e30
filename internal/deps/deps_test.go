package deps

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/project"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    Spec
		wantErr bool
	}{
		{"marine@0.19.0", Spec{"marine", "0.19.0"}, false},
		{"marine", Spec{"marine", ""}, false},
		{"@fluencelabs/aqua@0.14.2", Spec{"@fluencelabs/aqua", "0.14.2"}, false},
		{"@fluencelabs/aqua", Spec{"@fluencelabs/aqua", ""}, false},
		{"  mrepl@1.0.0-rc.1 ", Spec{"mrepl", "1.0.0-rc.1"}, false},
		{"marine@", Spec{}, true},
		{"marine@latest", Spec{}, true},
		{"marine@^1.0.0", Spec{}, true},
		{"@", Spec{}, true},
		{"", Spec{}, true},
	}

	for _, tt := range tests {
		got, err := ParseSpec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSpec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("ParseSpec(%q) error = %v, want ErrInvalidSpec", tt.in, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSpec(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseManager(t *testing.T) {
	for in, want := range map[string]Manager{"npm": Npm, " Cargo ": Cargo} {
		got, err := ParseManager(in)
		if err != nil || got != want {
			t.Errorf("ParseManager(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseManager("pip"); !errors.Is(err, ErrUnknownManager) {
		t.Errorf("ParseManager(pip) error = %v, want ErrUnknownManager", err)
	}
}

func TestResolve(t *testing.T) {
	cfg := &project.Config{
		Dependencies: project.Dependencies{
			Npm:   map[string]string{"left-pad": "1.3.0"},
			Cargo: map[string]string{"marine": "0.25.0", "mrepl": "0.27.3"},
		},
	}

	got, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	byName := map[string]Resolved{}
	var order []string
	for _, r := range got {
		byName[string(r.Manager)+"/"+r.Name] = r
		order = append(order, string(r.Manager)+"/"+r.Name)
	}

	wantOrder := "cargo/marine cargo/mrepl npm/@fluencelabs/aqua npm/@fluencelabs/aqua-lib npm/@fluencelabs/spell npm/left-pad"
	if strings.Join(order, " ") != wantOrder {
		t.Errorf("Resolve() order = %v", order)
	}

	marine := byName["cargo/marine"]
	if marine.Version != "0.25.0" || !marine.Pinned || marine.Compatible || marine.Default != "0.19.0" {
		t.Errorf("marine = %+v, want incompatible pin 0.25.0", marine)
	}
	mrepl := byName["cargo/mrepl"]
	if mrepl.Version != "0.27.3" || !mrepl.Compatible {
		t.Errorf("mrepl = %+v, want compatible pin", mrepl)
	}
	aqua := byName["npm/@fluencelabs/aqua"]
	if aqua.Version != "0.14.2" || aqua.Pinned {
		t.Errorf("aqua = %+v, want default", aqua)
	}
	pad := byName["npm/left-pad"]
	if pad.Version != "1.3.0" || !pad.Pinned || !pad.Compatible || pad.Default != "" {
		t.Errorf("left-pad = %+v, want unknown pinned tool", pad)
	}
}

func TestResolve_NilConfig(t *testing.T) {
	got, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(got) != len(Defaults(Npm))+len(Defaults(Cargo)) {
		t.Errorf("Resolve(nil) = %d tools, want every default", len(got))
	}
}

func TestPin(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/src/cairn.yaml", []byte("version: 2\n# my app\nname: app\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	l, err := project.NewLoader(configfile.NewStore(configfile.WithFs(fs)), "app")
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	h, _, err := l.Find(ctx, "/src")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	got, err := Pin(ctx, h, Cargo, Spec{Name: "marine", Version: "0.20.1"})
	if err != nil {
		t.Fatalf("Pin() error = %v", err)
	}
	if got.Version != "0.20.1" {
		t.Errorf("Pin() = %+v", got)
	}

	got, err = Pin(ctx, h, Npm, Spec{Name: "@fluencelabs/aqua"})
	if err != nil {
		t.Fatalf("Pin() error = %v", err)
	}
	if got.Version != "0.14.2" {
		t.Errorf("Pin() without version = %+v, want default version", got)
	}

	if _, err := Pin(ctx, h, Npm, Spec{Name: "left-pad"}); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Pin() unknown tool without version error = %v", err)
	}

	data, _ := afero.ReadFile(fs, "/src/cairn.yaml")
	text := string(data)
	for _, want := range []string{"# my app", "marine: 0.20.1", "@fluencelabs/aqua", "0.14.2"} {
		if !strings.Contains(text, want) {
			t.Errorf("cairn.yaml missing %q:\n%s", want, text)
		}
	}
}
