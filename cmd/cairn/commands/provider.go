package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/provider"
)

var (
	providerInitName  string
	providerInitPeers int

	addPeerUnits int
	addPeerOffer string
)

func init() {
	providerInitCmd.Flags().StringVar(&providerInitName, "name", "", "provider name")
	providerInitCmd.Flags().IntVar(&providerInitPeers, "peers", 0, "number of compute peers")

	providerAddPeerCmd.Flags().IntVar(&addPeerUnits, "compute-units", provider.DefaultComputeUnits, "compute units of the new peer")
	providerAddPeerCmd.Flags().StringVar(&addPeerOffer, "offer", "", "offer the new peer joins (default: ask)")

	providerCmd.AddCommand(providerInitCmd)
	providerCmd.AddCommand(providerAddPeerCmd)
	rootCmd.AddCommand(providerCmd)
}

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage the provider config",
	Long:  `Manage provider.yaml: compute peers, offers and capacity commitments.`,
}

var providerInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create provider.yaml",
	Long: `Create provider.yaml at the project root from a few questions: provider
name, number of peers, compute units, offer prices and commitment terms.

With --no-input every question takes its default.`,
	Example: `  # Answer the questions
  cairn provider init

  # Two peers, defaults for everything else
  cairn provider init --peers 2 --no-input

See Also: cairn provider add-peer`,
	Args: cobra.NoArgs,
	RunE: runProviderInit,
}

var providerAddPeerCmd = &cobra.Command{
	Use:   "add-peer <name>",
	Short: "Add a compute peer",
	Long: `Add a compute peer to provider.yaml. The peer joins the chosen offer and
gets a capacity commitment with the same terms as the existing ones.`,
	Example: `  cairn provider add-peer peer-3 --compute-units 16 --offer defaultOffer

See Also: cairn provider init`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderAddPeer,
}

func runProviderInit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a := appFrom(ctx)
	out := cmd.OutOrStdout()

	root, err := projectRoot()
	if err != nil {
		return err
	}

	gen := provider.Generator(a.prompter, provider.ScaffoldOptions{
		ProviderName: providerInitName,
		Peers:        providerInitPeers,
	})
	l, err := provider.NewLoader(a.store, gen)
	if err != nil {
		return err
	}

	if h, ok, err := l.Find(ctx, root); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "Provider config already exists at %s\n", h.Path())
		return nil
	}

	h, err := l.Ensure(ctx, root)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created %s with %d compute peer(s) and %d compute units\n",
		h.Path(), len(h.Config.ComputePeers), h.Config.TotalComputeUnits())
	return nil
}

func runProviderAddPeer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := appFrom(ctx)

	root, err := projectRoot()
	if err != nil {
		return err
	}
	l, err := provider.NewLoader(a.store, nil)
	if err != nil {
		return err
	}
	h, ok, err := l.Find(ctx, root)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewUserError(errors.Wrap(errors.ErrNotFound, "provider config"), "Run: cairn provider init")
	}

	offer := addPeerOffer
	if !cmd.Flags().Changed("offer") && len(h.Config.Offers) > 0 {
		if offer, err = provider.ChooseOffer(a.prompter, h.Config); err != nil {
			return err
		}
	}

	spec := provider.PeerSpec{Name: args[0], ComputeUnits: addPeerUnits, Offer: offer}
	if err := provider.AddPeer(ctx, h, spec); err != nil {
		if errors.Is(err, provider.ErrPeerExists) || errors.Is(err, provider.ErrOfferNotFound) {
			return errors.NewUserError(err, "Run: cairn config show provider")
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added compute peer %s to %s\n", spec.Name, h.Path())
	return nil
}
