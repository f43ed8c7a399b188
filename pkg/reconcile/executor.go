package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucab3/ml-tn-sync/pkg/catalog"
	"github.com/lucab3/ml-tn-sync/pkg/errors"
	"github.com/lucab3/ml-tn-sync/pkg/logging"
)

// PriceUpdater applies one price change on the target platform. The target
// platform client implements it; tests use mocks with call counting.
type PriceUpdater interface {
	UpdatePrice(ctx context.Context, product catalog.Product, price float64) error
}

// Executor applies planned price changes. Each update call is isolated: a
// failure is recorded into the report and processing continues with the
// next decision. A converged pair of catalogs therefore executes to zero
// updates on the next run.
type Executor struct {
	// Updater issues the actual price-update calls.
	Updater PriceUpdater

	// Workers bounds concurrent update calls. Values below 2 mean
	// sequential execution. Decisions are deduplicated by SKU during
	// planning, so concurrent calls never target the same SKU.
	Workers int

	// DryRun counts would-be updates without issuing any mutating call.
	DryRun bool

	// Logger defaults to the package logger when nil.
	Logger *zerolog.Logger
}

// Execute consumes the planner's decisions and produces the run report.
// Cancellation stops dispatching new update calls; in-flight calls complete
// and are recorded, undispatched updates are recorded as failed.
func (e *Executor) Execute(ctx context.Context, decisions []Decision) *Report {
	log := e.Logger
	if log == nil {
		log = logging.Default()
	}

	report := NewReport(e.DryRun)
	defer func() {
		report.FinishedAt = time.Now().UTC()
	}()

	var updates []Decision
	for _, d := range decisions {
		switch d.Kind {
		case MatchedUpdate:
			report.Matched++
			updates = append(updates, d)
		case MatchedNoop:
			report.Matched++
			report.Skipped++
		case SourceOnly:
			report.SourceOnly++
			log.Warn().Str("sku", d.SKU).Msg("No match in target catalog")
		case TargetOnly:
			report.TargetOnly++
			log.Debug().Str("sku", d.SKU).Msg("No match in source catalog")
		}
	}

	if len(updates) == 0 {
		return report
	}

	if e.DryRun {
		for _, d := range updates {
			log.Info().
				Str("sku", d.SKU).
				Float64("from", d.Target.Price).
				Float64("to", d.NewPrice).
				Msg("Would update price (dry run)")
			report.Updated++
		}
		return report
	}

	results := e.apply(ctx, log, updates)
	for i, d := range updates {
		err := results[i]
		if err == nil {
			report.Updated++
			continue
		}
		report.Failed++
		report.Failures = append(report.Failures, Failure{
			SKU:      d.SKU,
			NativeID: d.Target.NativeID,
			Price:    d.NewPrice,
			Error:    err.Error(),
		})
	}

	return report
}

// apply issues the update calls, sequentially or through a bounded worker
// pool, and returns one result per update in input order.
func (e *Executor) apply(ctx context.Context, log *zerolog.Logger, updates []Decision) []error {
	results := make([]error, len(updates))

	if e.Workers < 2 {
		for i, d := range updates {
			if err := ctx.Err(); err != nil {
				results[i] = errors.NewUpdateError(d.SKU, d.Target.NativeID, d.NewPrice, err)
				continue
			}
			results[i] = e.updateOne(ctx, log, d)
		}
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.updateOne(ctx, log, updates[i])
			}
		}()
	}

	dispatched := make([]bool, len(updates))
dispatch:
	for i := range updates {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	for i, d := range updates {
		if !dispatched[i] {
			results[i] = errors.NewUpdateError(d.SKU, d.Target.NativeID, d.NewPrice, ctx.Err())
		}
	}

	return results
}

// updateOne performs a single isolated update call.
func (e *Executor) updateOne(ctx context.Context, log *zerolog.Logger, d Decision) error {
	if err := e.Updater.UpdatePrice(ctx, d.Target, d.NewPrice); err != nil {
		uerr := errors.NewUpdateError(d.SKU, d.Target.NativeID, d.NewPrice, err)
		log.Error().Err(uerr).Str("sku", d.SKU).Msg("Price update failed")
		return uerr
	}
	log.Info().
		Str("sku", d.SKU).
		Float64("from", d.Target.Price).
		Float64("to", d.NewPrice).
		Msg("Price updated")
	return nil
}
