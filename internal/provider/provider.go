package provider

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
)

// Name is the logical config name of the provider config.
const Name = "provider"

// DocsURL documents the provider config file.
const DocsURL = "https://github.com/thoreinstein/cairn/blob/main/docs/configs/provider.md"

// Defaults used when scaffolding and adding peers.
const (
	DefaultProviderName           = "defaultProvider"
	DefaultOfferName              = "defaultOffer"
	DefaultComputeUnits           = 32
	DefaultMinPricePerCuPerEpoch  = 0.33
	DefaultMaxCollateralPerWorker = 1.0
	DefaultDuration               = "100 days"
	DefaultStakerReward           = 20.0
)

// Config is the latest shape of provider.yaml.
type Config struct {
	Version             configfile.Version            `yaml:"version"`
	ProviderName        string                        `yaml:"providerName"`
	ComputePeers        map[string]ComputePeer        `yaml:"computePeers"`
	Offers              map[string]Offer              `yaml:"offers"`
	CapacityCommitments map[string]CapacityCommitment `yaml:"capacityCommitments,omitempty"`
}

// ComputePeer is one machine of the provider.
type ComputePeer struct {
	ComputeUnits int `yaml:"computeUnits"`
}

// Offer is a market offer served by a set of compute peers.
type Offer struct {
	MinPricePerCuPerEpoch  float64  `yaml:"minPricePerCuPerEpoch"`
	MaxCollateralPerWorker float64  `yaml:"maxCollateralPerWorker"`
	ComputePeers           []string `yaml:"computePeers"`
}

// CapacityCommitment commits a peer's capacity for a duration.
type CapacityCommitment struct {
	Duration     string  `yaml:"duration"`
	StakerReward float64 `yaml:"stakerReward"`
}

// Definition describes provider.yaml. gen creates a missing file; it may be
// nil for read-only access.
func Definition(gen configfile.Generator) configfile.Definition[Config] {
	return configfile.Definition[Config]{
		Name:        Name,
		FileName:    paths.ProviderConfigName,
		Description: "Defines the compute peers, offers and capacity commitments of a provider",
		DocsURL:     DocsURL,
		Schemas:     []configfile.Schema{schemaV0(), schemaV1()},
		Migrations:  []configfile.Migration{migrateV0},
		Default:     gen,
		Validate:    Validate,
	}
}

// NewLoader returns a loader for provider.yaml.
func NewLoader(store *configfile.Store, gen configfile.Generator) (*configfile.Loader[Config], error) {
	return configfile.NewLoader(store, Definition(gen))
}

// PeerNames returns the compute peer names in sorted order.
func (c *Config) PeerNames() []string {
	names := make([]string, 0, len(c.ComputePeers))
	for name := range c.ComputePeers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OfferNames returns the offer names in sorted order.
func (c *Config) OfferNames() []string {
	names := make([]string, 0, len(c.Offers))
	for name := range c.Offers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TotalComputeUnits sums the compute units of every peer.
func (c *Config) TotalComputeUnits() int {
	total := 0
	for _, p := range c.ComputePeers {
		total += p.ComputeUnits
	}
	return total
}

// Validate checks the rules provider.yaml's schema cannot express: offers
// and commitments only reference defined peers, no peer serves two offers
// and every commitment duration parses.
func Validate(cfg *Config, path string) error {
	var problems []string

	owner := map[string]string{}
	for _, offer := range cfg.OfferNames() {
		for _, peer := range cfg.Offers[offer].ComputePeers {
			if _, ok := cfg.ComputePeers[peer]; !ok {
				problems = append(problems, fmt.Sprintf("offers.%s: compute peer %q is not defined in computePeers", offer, peer))
				continue
			}
			if other, ok := owner[peer]; ok && other != offer {
				problems = append(problems, fmt.Sprintf("offers.%s: compute peer %q is already in offer %q", offer, peer, other))
				continue
			}
			owner[peer] = offer
		}
	}

	names := make([]string, 0, len(cfg.CapacityCommitments))
	for name := range cfg.CapacityCommitments {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, peer := range names {
		cc := cfg.CapacityCommitments[peer]
		if _, ok := cfg.ComputePeers[peer]; !ok {
			problems = append(problems, fmt.Sprintf("capacityCommitments.%s: compute peer is not defined in computePeers", peer))
		}
		if d, err := ParseDuration(cc.Duration); err != nil {
			problems = append(problems, fmt.Sprintf("capacityCommitments.%s.duration: %v", peer, err))
		} else if d <= 0 {
			problems = append(problems, fmt.Sprintf("capacityCommitments.%s.duration: must be positive", peer))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.WithDetailf(errors.Newf("%s", strings.Join(problems, "\n")), "config: %s", path)
}

var dayDuration = regexp.MustCompile(`^(\d+)\s*(d|day|days)$`)

// ParseDuration parses a commitment duration: either a day count such as
// "100 days" or a Go duration such as "36h".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if m := dayDuration.FindStringSubmatch(s); m != nil {
		days, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, errors.Wrapf(err, "invalid duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Newf("invalid duration %q, use a day count like %q or a duration like %q", s, "30 days", "36h")
	}
	return d, nil
}
