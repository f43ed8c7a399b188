package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lucab3/ml-tn-sync/internal/cmd/output"
	"github.com/lucab3/ml-tn-sync/pkg/catalog"
	"github.com/lucab3/ml-tn-sync/pkg/reconcile"
)

// NewSyncCommand creates the sync command, which runs a full
// reconciliation: fetch both catalogs, plan, and apply updates.
func (a *App) NewSyncCommand() *cobra.Command {
	var dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile Tienda Nube prices against Mercado Libre",
		Long: `Fetch both catalogs, match products by SKU, and update every
Tienda Nube price that has drifted from its commission-adjusted
Mercado Libre counterpart beyond the configured tolerance.

With --dry-run the full plan and report are produced but no update
calls are made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workers > 0 {
				a.config.Workers = workers
			}
			if err := a.config.Validate(); err != nil {
				return err
			}

			runner, err := a.Runner(dryRun)
			if err != nil {
				return err
			}

			report, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			format := output.DetectFormat(a.config.Format)
			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), *report); err != nil {
				return err
			}

			if !report.Success() {
				return fmt.Errorf("%d of %d updates failed", report.Failed, report.Updated+report.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan and report without issuing update calls")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent update calls (default from config)")

	return cmd
}

// NewPlanCommand creates the plan command, which prints the decisions a
// sync would make without applying anything.
func (a *App) NewPlanCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the updates a sync would apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner, err := a.Runner(true)
			if err != nil {
				return err
			}

			decisions, _, _, err := runner.Plan(cmd.Context())
			if err != nil {
				return err
			}

			if !all {
				updates := decisions[:0]
				for _, d := range decisions {
					if d.Kind == reconcile.MatchedUpdate {
						updates = append(updates, d)
					}
				}
				decisions = updates
			}

			return a.print(cmd.OutOrStdout(), decisionTable(decisions), decisions)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include in-tolerance and unmatched products")

	return cmd
}

// NewFetchCommand creates the fetch command, which dumps one platform's
// catalog as the reconciler sees it.
func (a *App) NewFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "fetch <platform>",
		Short:     "Fetch and print one platform's catalog",
		Long:      `Fetch the complete catalog from one platform (mercadolibre or tiendanube) and print the normalized records.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"mercadolibre", "tiendanube"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, err := a.fetcherFor(args[0])
			if err != nil {
				return err
			}

			products, err := fetcher.FetchCatalog(cmd.Context())
			if err != nil {
				return err
			}

			return a.print(cmd.OutOrStdout(), productTable(products), products)
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "mltnsync %s (commit %s, built %s)\n", a.version, a.commit, a.date)
			return nil
		},
	}
}

// fetcherFor resolves a platform argument to its client.
func (a *App) fetcherFor(platform string) (reconcile.Fetcher, error) {
	switch catalog.Platform(platform) {
	case catalog.PlatformMercadoLibre:
		return a.SourceClient()
	case catalog.PlatformTiendaNube:
		return a.TargetClient()
	default:
		return nil, fmt.Errorf("unknown platform %q: must be mercadolibre or tiendanube", platform)
	}
}

// print writes the table rendering for table output and the raw value for
// structured formats, auto-detecting the format from the terminal when
// unset.
func (a *App) print(w io.Writer, table output.Data, raw any) error {
	format := output.DetectFormat(a.config.Format)
	if format == output.FormatTable {
		return output.NewFormatter(format).Format(w, table)
	}
	return output.NewFormatter(format).Format(w, raw)
}

// decisionTable renders decisions as rows for table output.
func decisionTable(decisions []reconcile.Decision) output.Data {
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, []string{
			d.SKU,
			string(d.Kind),
			formatPrice(d.Target.Price),
			formatPrice(d.NewPrice),
			strconv.FormatFloat(d.Delta, 'f', 4, 64),
		})
	}
	return output.Data{
		Headers: []string{"SKU", "Decision", "Current", "New", "Delta"},
		Rows:    rows,
	}
}

// productTable renders catalog records as rows for table output.
func productTable(products []catalog.Product) output.Data {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.SKU,
			p.NativeID,
			p.VariantID,
			p.Name,
			formatPrice(p.Price),
			p.Currency,
		})
	}
	return output.Data{
		Headers: []string{"SKU", "ID", "Variant", "Name", "Price", "Currency"},
		Rows:    rows,
	}
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
