package provider

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/cairn/internal/configfile"
	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/logging"
)

// Errors returned when changing compute peers.
var (
	ErrPeerExists    = errors.New("compute peer already exists")
	ErrOfferNotFound = errors.New("offer not found")
)

// noOffer is the selection that keeps a new peer out of every offer.
const noOffer = "(no offer)"

// Prompter asks the questions used to scaffold a provider config.
type Prompter interface {
	Input(label, def string) (string, error)
	Number(label string, def, minimum int) (int, error)
	Float(label string, def float64) (float64, error)
	Select(label string, options []string, def int) (int, error)
}

// ScaffoldOptions preset answers. Zero values are asked for.
type ScaffoldOptions struct {
	ProviderName string
	Peers        int
}

// Generator returns a default generator that scaffolds provider.yaml from
// the answers to p.
func Generator(p Prompter, opts ScaffoldOptions) configfile.Generator {
	return func(ctx context.Context) (string, error) {
		cfg, err := Scaffold(ctx, p, opts)
		if err != nil {
			return "", err
		}
		return Render(cfg)
	}
}

// Scaffold builds a provider config from the answers to p: every peer gets
// the same compute units, joins a single offer and commits its capacity.
func Scaffold(ctx context.Context, p Prompter, opts ScaffoldOptions) (*Config, error) {
	logger := logging.FromContext(ctx)

	name := opts.ProviderName
	if name == "" {
		var err error
		if name, err = p.Input("Provider name", DefaultProviderName); err != nil {
			return nil, err
		}
	}

	peers := opts.Peers
	if peers <= 0 {
		var err error
		if peers, err = p.Number("Number of compute peers", 1, 1); err != nil {
			return nil, err
		}
	}

	units, err := p.Number("Compute units per peer", DefaultComputeUnits, 1)
	if err != nil {
		return nil, err
	}
	offerName, err := p.Input("Offer name", DefaultOfferName)
	if err != nil {
		return nil, err
	}
	price, err := p.Float("Minimum price per compute unit per epoch", DefaultMinPricePerCuPerEpoch)
	if err != nil {
		return nil, err
	}
	collateral, err := p.Float("Maximum collateral per worker", DefaultMaxCollateralPerWorker)
	if err != nil {
		return nil, err
	}
	duration, err := p.Input("Capacity commitment duration", DefaultDuration)
	if err != nil {
		return nil, err
	}
	if _, err := ParseDuration(duration); err != nil {
		return nil, err
	}
	reward, err := p.Float("Staker reward in percent", DefaultStakerReward)
	if err != nil {
		return nil, err
	}
	if reward > 100 {
		return nil, errors.Newf("staker reward %v is above 100 percent", reward)
	}

	cfg := &Config{
		Version:             configfile.Version(1),
		ProviderName:        name,
		ComputePeers:        make(map[string]ComputePeer, peers),
		Offers:              map[string]Offer{},
		CapacityCommitments: make(map[string]CapacityCommitment, peers),
	}

	offer := Offer{MinPricePerCuPerEpoch: price, MaxCollateralPerWorker: collateral}
	for i := range peers {
		peer := fmt.Sprintf("peer-%d", i)
		cfg.ComputePeers[peer] = ComputePeer{ComputeUnits: units}
		cfg.CapacityCommitments[peer] = CapacityCommitment{Duration: duration, StakerReward: reward}
		offer.ComputePeers = append(offer.ComputePeers, peer)
	}
	cfg.Offers[offerName] = offer

	logger.Debug("scaffolded provider config", "peers", peers, "offer", offerName)
	return cfg, nil
}

// Render encodes cfg as the body of a provider config file.
func Render(cfg *Config) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return "", errors.Wrap(err, "encoding provider config")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "encoding provider config")
	}
	return buf.String(), nil
}

// PeerSpec describes a compute peer to add.
type PeerSpec struct {
	Name         string
	ComputeUnits int
	// Offer the peer joins. Empty keeps it out of every offer.
	Offer string
}

// ChooseOffer asks which offer a new peer should join.
func ChooseOffer(p Prompter, cfg *Config) (string, error) {
	options := append(cfg.OfferNames(), noOffer)
	idx, err := p.Select("Offer for the new peer", options, 0)
	if err != nil {
		return "", err
	}
	if options[idx] == noOffer {
		return "", nil
	}
	return options[idx], nil
}

// AddPeer adds a compute peer to the config behind h and commits it. The
// new peer's capacity commitment copies the first existing one.
func AddPeer(ctx context.Context, h *configfile.Handle[Config], spec PeerSpec) error {
	if spec.Name == "" {
		return errors.Wrap(errors.ErrMissingName, "compute peer")
	}
	if spec.ComputeUnits < 1 {
		return errors.Newf("compute peer %s needs at least 1 compute unit", spec.Name)
	}

	next := clone(h.Config)
	if _, ok := next.ComputePeers[spec.Name]; ok {
		return errors.Wrapf(ErrPeerExists, "%s", spec.Name)
	}
	next.ComputePeers[spec.Name] = ComputePeer{ComputeUnits: spec.ComputeUnits}

	if spec.Offer != "" {
		offer, ok := next.Offers[spec.Offer]
		if !ok {
			return errors.Wrapf(ErrOfferNotFound, "%s", spec.Offer)
		}
		offer.ComputePeers = append(offer.ComputePeers, spec.Name)
		next.Offers[spec.Offer] = offer
	}

	commitment := CapacityCommitment{Duration: DefaultDuration, StakerReward: DefaultStakerReward}
	if existing := slices.Sorted(maps.Keys(next.CapacityCommitments)); len(existing) > 0 {
		commitment = next.CapacityCommitments[existing[0]]
	}
	next.CapacityCommitments[spec.Name] = commitment

	if err := Validate(next, h.Path()); err != nil {
		return err
	}

	*h.Config = *next
	if err := h.Commit(ctx); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("added compute peer", "peer", spec.Name, "offer", spec.Offer)
	return nil
}

func clone(cfg *Config) *Config {
	out := *cfg
	out.ComputePeers = maps.Clone(cfg.ComputePeers)
	if out.ComputePeers == nil {
		out.ComputePeers = map[string]ComputePeer{}
	}
	out.Offers = make(map[string]Offer, len(cfg.Offers))
	for name, o := range cfg.Offers {
		o.ComputePeers = slices.Clone(o.ComputePeers)
		out.Offers[name] = o
	}
	out.CapacityCommitments = maps.Clone(cfg.CapacityCommitments)
	if out.CapacityCommitments == nil {
		out.CapacityCommitments = map[string]CapacityCommitment{}
	}
	return &out
}
