package provider

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/cairn/internal/cli/prompt"
	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
)

func defaultsPrompter() *prompt.Prompter {
	p := prompt.NewWithIO(strings.NewReader(""), &bytes.Buffer{})
	p.SetNoInput(true)
	return p
}

func newLoader(t *testing.T, fs afero.Fs, gen configfile.Generator) *configfile.Loader[Config] {
	t.Helper()
	l, err := NewLoader(configfile.NewStore(configfile.WithFs(fs)), gen)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	return l
}

const v0Config = `version: 0
# who we are
providerName: acme
computePeers:
  peer-a:
    computeUnits: 16
  peer-b:
    computeUnits: 8
offers:
  cheap:
    # price in tokens
    minPricePerWorkerEpoch: 0.1
    maxCollateralPerWorker: 2
    computePeers:
      - peer-a
      - peer-b
capacityCommitments:
  peer-a:
    duration: 30 days
    rewardDelegationRate: 25
`

func TestLoad_MigratesVersion0(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/p/provider.yaml", []byte(v0Config), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, ok, err := newLoader(t, fs, nil).Load(context.Background(), "/p")
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}

	cfg := doc.Value()
	if got := cfg.Offers["cheap"].MinPricePerCuPerEpoch; got != 0.1 {
		t.Errorf("MinPricePerCuPerEpoch = %v, want 0.1", got)
	}
	if got := cfg.CapacityCommitments["peer-a"].StakerReward; got != 75 {
		t.Errorf("StakerReward = %v, want 75", got)
	}
	if cfg.TotalComputeUnits() != 24 {
		t.Errorf("TotalComputeUnits() = %d, want 24", cfg.TotalComputeUnits())
	}

	text := doc.String()
	for _, want := range []string{"# who we are", "minPricePerCuPerEpoch: 0.1", "stakerReward: 75", "version: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("migrated file missing %q:\n%s", want, text)
		}
	}
	for _, unwanted := range []string{"minPricePerWorkerEpoch", "rewardDelegationRate"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("migrated file still has %s:\n%s", unwanted, text)
		}
	}
}

func TestLoadOrCreate_ScaffoldsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen := Generator(defaultsPrompter(), ScaffoldOptions{Peers: 2})

	doc, err := newLoader(t, fs, gen).LoadOrCreate(context.Background(), "/p")
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}

	cfg := doc.Value()
	if cfg.ProviderName != DefaultProviderName {
		t.Errorf("ProviderName = %q", cfg.ProviderName)
	}
	if got := cfg.PeerNames(); len(got) != 2 || got[0] != "peer-0" || got[1] != "peer-1" {
		t.Errorf("PeerNames() = %v", got)
	}
	offer, ok := cfg.Offers[DefaultOfferName]
	if !ok || len(offer.ComputePeers) != 2 {
		t.Errorf("offer = %+v, want both peers", offer)
	}
	if cfg.CapacityCommitments["peer-1"].Duration != DefaultDuration {
		t.Errorf("commitment = %+v", cfg.CapacityCommitments["peer-1"])
	}
}

func TestScaffold_Answers(t *testing.T) {
	answers := strings.Join([]string{
		"",        // provider name: default
		"3",       // peers
		"64",      // compute units
		"premium", // offer
		"0.5",     // price
		"",        // collateral: default
		"36h",     // duration
		"10",      // staker reward
	}, "\n") + "\n"
	p := prompt.NewWithIO(strings.NewReader(answers), &bytes.Buffer{})

	cfg, err := Scaffold(context.Background(), p, ScaffoldOptions{})
	if err != nil {
		t.Fatalf("Scaffold() error = %v", err)
	}

	if cfg.ProviderName != DefaultProviderName || len(cfg.ComputePeers) != 3 {
		t.Errorf("Scaffold() = %+v", cfg)
	}
	if cfg.ComputePeers["peer-2"].ComputeUnits != 64 {
		t.Errorf("compute units = %d, want 64", cfg.ComputePeers["peer-2"].ComputeUnits)
	}
	offer := cfg.Offers["premium"]
	if offer.MinPricePerCuPerEpoch != 0.5 || offer.MaxCollateralPerWorker != DefaultMaxCollateralPerWorker {
		t.Errorf("offer = %+v", offer)
	}
	if cc := cfg.CapacityCommitments["peer-0"]; cc.Duration != "36h" || cc.StakerReward != 10 {
		t.Errorf("commitment = %+v", cc)
	}
	if err := Validate(cfg, "provider.yaml"); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestScaffold_RejectsBadDuration(t *testing.T) {
	answers := "acme\n1\n\n\n\n\nforever\n"
	p := prompt.NewWithIO(strings.NewReader(answers), &bytes.Buffer{})

	if _, err := Scaffold(context.Background(), p, ScaffoldOptions{}); err == nil {
		t.Error("Scaffold() expected error for an unparsable duration")
	}
}

func validConfig() *Config {
	return &Config{
		Version:      1,
		ProviderName: "acme",
		ComputePeers: map[string]ComputePeer{"a": {ComputeUnits: 1}, "b": {ComputeUnits: 2}},
		Offers: map[string]Offer{
			"one": {MinPricePerCuPerEpoch: 1, MaxCollateralPerWorker: 1, ComputePeers: []string{"a"}},
		},
		CapacityCommitments: map[string]CapacityCommitment{"a": {Duration: "1 day", StakerReward: 5}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"undefined offer peer", func(c *Config) {
			c.Offers["one"] = Offer{MinPricePerCuPerEpoch: 1, MaxCollateralPerWorker: 1, ComputePeers: []string{"zz"}}
		}, `compute peer "zz" is not defined`},
		{"peer in two offers", func(c *Config) {
			c.Offers["two"] = Offer{MinPricePerCuPerEpoch: 1, MaxCollateralPerWorker: 1, ComputePeers: []string{"a"}}
		}, `already in offer "one"`},
		{"undefined commitment peer", func(c *Config) {
			c.CapacityCommitments["zz"] = CapacityCommitment{Duration: "1 day"}
		}, "capacityCommitments.zz"},
		{"bad duration", func(c *Config) {
			c.CapacityCommitments["a"] = CapacityCommitment{Duration: "soon"}
		}, "capacityCommitments.a.duration"},
		{"zero duration", func(c *Config) {
			c.CapacityCommitments["a"] = CapacityCommitment{Duration: "0 days"}
		}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg, "/p/provider.yaml")
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"100 days", 100 * 24 * time.Hour, false},
		{"1 day", 24 * time.Hour, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"36h", 36 * time.Hour, false},
		{" 90m ", 90 * time.Minute, false},
		{"a week", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCommit_WithoutCommitmentsUnchanged(t *testing.T) {
	const v1NoCommitments = `version: 1
providerName: acme
computePeers:
  peer-a:
    computeUnits: 16
offers:
  cheap:
    minPricePerCuPerEpoch: 0.1
    maxCollateralPerWorker: 2
    computePeers:
      - peer-a
`
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/p/provider.yaml", []byte(v1NoCommitments), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	h, ok, err := newLoader(t, fs, nil).Find(ctx, "/p")
	if err != nil || !ok {
		t.Fatalf("Find() = %v, %v", ok, err)
	}
	before, _ := afero.ReadFile(fs, "/p/provider.yaml")

	if err := h.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	after, _ := afero.ReadFile(fs, "/p/provider.yaml")
	if string(after) != string(before) {
		t.Errorf("Commit() without changes rewrote the file:\n%s", after)
	}
	if strings.Contains(string(after), "capacityCommitments") {
		t.Errorf("Commit() added capacityCommitments:\n%s", after)
	}
}

func TestAddPeer(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/p/provider.yaml", []byte(v0Config), 0o644); err != nil {
		t.Fatal(err)
	}
	l := newLoader(t, fs, nil)
	ctx := context.Background()

	h, ok, err := l.Find(ctx, "/p")
	if err != nil || !ok {
		t.Fatalf("Find() = %v, %v", ok, err)
	}

	if err := AddPeer(ctx, h, PeerSpec{Name: "peer-c", ComputeUnits: 4}); err != nil {
		t.Fatalf("AddPeer() error = %v", err)
	}

	again, _, err := l.Find(ctx, "/p")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if again.Config.ComputePeers["peer-c"].ComputeUnits != 4 {
		t.Errorf("cached handle missing new peer")
	}
	if cc := again.Config.CapacityCommitments["peer-c"]; cc.Duration != "30 days" {
		t.Errorf("commitment = %+v, want copy of peer-a's", cc)
	}

	data, _ := afero.ReadFile(fs, "/p/provider.yaml")
	if !strings.Contains(string(data), "peer-c:") || !strings.Contains(string(data), "# who we are") {
		t.Errorf("file after AddPeer:\n%s", data)
	}
}

func TestAddPeer_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/p/provider.yaml", []byte(v0Config), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	h, _, err := newLoader(t, fs, nil).Find(ctx, "/p")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	before, _ := afero.ReadFile(fs, "/p/provider.yaml")

	tests := []struct {
		name string
		spec PeerSpec
		want error
	}{
		{"existing peer", PeerSpec{Name: "peer-a", ComputeUnits: 1}, ErrPeerExists},
		{"unknown offer", PeerSpec{Name: "peer-z", ComputeUnits: 1, Offer: "nope"}, ErrOfferNotFound},
		{"missing name", PeerSpec{ComputeUnits: 1}, errors.ErrMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AddPeer(ctx, h, tt.spec); !errors.Is(err, tt.want) {
				t.Errorf("AddPeer() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, ok := h.Config.ComputePeers["peer-z"]; ok {
		t.Error("failed AddPeer() changed the handle")
	}
	after, _ := afero.ReadFile(fs, "/p/provider.yaml")
	if !bytes.Equal(before, after) {
		t.Error("failed AddPeer() changed the file")
	}
}

func TestChooseOffer(t *testing.T) {
	cfg := validConfig()
	cfg.Offers["two"] = Offer{}

	p := prompt.NewWithIO(strings.NewReader("2\n"), &bytes.Buffer{})
	got, err := ChooseOffer(p, cfg)
	if err != nil || got != "two" {
		t.Errorf("ChooseOffer() = %q, %v; want two", got, err)
	}

	p = prompt.NewWithIO(strings.NewReader("3\n"), &bytes.Buffer{})
	got, err = ChooseOffer(p, cfg)
	if err != nil || got != "" {
		t.Errorf("ChooseOffer() = %q, %v; want no offer", got, err)
	}
}
