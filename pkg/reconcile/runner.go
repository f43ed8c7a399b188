package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lucab3/ml-tn-sync/pkg/catalog"
	"github.com/lucab3/ml-tn-sync/pkg/logging"
)

// Fetcher retrieves a complete catalog from one platform, walking
// pagination to exhaustion. Implementations must never return a partial
// catalog: any page failure aborts the fetch.
type Fetcher interface {
	Platform() catalog.Platform
	FetchCatalog(ctx context.Context) ([]catalog.Product, error)
}

// Client is a platform client that can both fetch its catalog and apply
// price updates.
type Client interface {
	Fetcher
	PriceUpdater
}

// Runner sequences one reconciliation run: fetch both catalogs, index,
// plan, execute. It holds no state across runs.
type Runner struct {
	// Source is the authoritative platform; its prices win.
	Source Fetcher

	// Target receives price updates.
	Target Client

	// Options configures the planner.
	Options Options

	// DryRun computes the full report without issuing update calls.
	DryRun bool

	// Workers bounds concurrent update calls during execution.
	Workers int

	// Logger defaults to the package logger when nil.
	Logger *zerolog.Logger
}

func (r *Runner) logger() *zerolog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logging.Default()
}

// Plan fetches and indexes both catalogs and returns the planned decisions
// together with the two indices. A fetch failure on either platform aborts
// with that error before anything else happens; no partial catalog is ever
// reconciled.
func (r *Runner) Plan(ctx context.Context) ([]Decision, *catalog.Index, *catalog.Index, error) {
	log := r.logger()

	source, err := r.fetchIndex(ctx, r.Source)
	if err != nil {
		return nil, nil, nil, err
	}
	target, err := r.fetchIndex(ctx, r.Target)
	if err != nil {
		return nil, nil, nil, err
	}

	decisions := Plan(source, target, r.Options)
	log.Info().
		Int("source_products", source.Len()).
		Int("target_products", target.Len()).
		Int("decisions", len(decisions)).
		Msg("Reconciliation planned")

	return decisions, source, target, nil
}

// Run performs the full run and emits the final report. The returned error
// is non-nil only for fatal conditions (fetch abort); per-item update
// failures are reported through Report.Failed and Report.Failures.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	decisions, source, target, err := r.Plan(ctx)
	if err != nil {
		return nil, err
	}

	executor := &Executor{
		Updater: r.Target,
		Workers: r.Workers,
		DryRun:  r.DryRun,
		Logger:  r.Logger,
	}

	report := executor.Execute(ctx, decisions)
	report.SourceDuplicates = len(source.Duplicates())
	report.TargetDuplicates = len(target.Duplicates())

	log := r.logger()
	log.Info().
		Str("run_id", report.RunID).
		Bool("dry_run", report.DryRun).
		Int("matched", report.Matched).
		Int("updated", report.Updated).
		Int("skipped", report.Skipped).
		Int("source_only", report.SourceOnly).
		Int("target_only", report.TargetOnly).
		Int("failed", report.Failed).
		Dur("duration", report.Duration()).
		Msg("Reconciliation finished")

	return report, nil
}

// fetchIndex retrieves one platform's catalog and builds its SKU index,
// logging duplicate-SKU diagnostics as warnings.
func (r *Runner) fetchIndex(ctx context.Context, f Fetcher) (*catalog.Index, error) {
	log := r.logger()
	platform := f.Platform()

	log.Info().Str("platform", string(platform)).Msg("Fetching catalog")
	records, err := f.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	idx := catalog.BuildIndex(platform, records)
	for _, dup := range idx.Duplicates() {
		log.Warn().
			Str("platform", string(platform)).
			Str("sku", dup.SKU).
			Str("kept_id", dup.Kept.NativeID).
			Str("discarded_id", dup.Discarded.NativeID).
			Msg("Duplicate SKU, first occurrence kept")
	}
	if n := len(idx.MissingSKU()); n > 0 {
		log.Warn().
			Str("platform", string(platform)).
			Int("count", n).
			Msg("Records without SKU cannot be matched")
	}

	log.Info().
		Str("platform", string(platform)).
		Int("records", len(records)).
		Int("indexed", idx.Len()).
		Msg("Catalog indexed")

	return idx, nil
}
