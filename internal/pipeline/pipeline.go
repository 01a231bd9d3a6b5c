// Package pipeline orchestrates a maintenance run: reconcile the symbol
// roster, scrape and rebuild profiles for the symbols that need work,
// enrich them from Yahoo Finance, and persist the results with CSV
// snapshots and a failure report for later re-drive.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/sahamkita/idxref/internal/batch"
	"github.com/sahamkita/idxref/internal/config"
	"github.com/sahamkita/idxref/internal/idx"
	"github.com/sahamkita/idxref/internal/infra"
	"github.com/sahamkita/idxref/internal/reconcile"
	"github.com/sahamkita/idxref/internal/report"
	"github.com/sahamkita/idxref/internal/store"
	"github.com/sahamkita/idxref/internal/yahoo"
	"github.com/sahamkita/idxref/pkg/models"
	"github.com/sahamkita/idxref/pkg/utils"
)

// ExchangeClient is the slice of the exchange client the pipeline uses.
type ExchangeClient interface {
	ActiveSymbols(ctx context.Context) (map[string]string, error)
	ProfileDetail(ctx context.Context, symbol string) (*idx.Profile, error)
	DelistingHistory(ctx context.Context) (map[string]string, error)
}

// Enricher is the slice of the Yahoo client the pipeline uses.
type Enricher interface {
	QuoteSummary(ctx context.Context, symbol string) (*yahoo.Enrichment, error)
}

// Pipeline wires the clients, the store, and the run policy together.
type Pipeline struct {
	cfg      *config.Config
	store    *store.Store
	exchange ExchangeClient
	enricher Enricher
	bypass   map[string]struct{}
	now      func() time.Time
}

// New assembles a pipeline from configuration, building the HTTP client,
// rate limiter, exchange client, Yahoo client, and store.
func New(cfg *config.Config) (*Pipeline, error) {
	httpc, err := infra.NewHTTPClient(time.Duration(cfg.Scrape.TimeoutSec)*time.Second, cfg.Scrape.Proxy)
	if err != nil {
		return nil, err
	}
	limiter := infra.NewRateLimiter(cfg.Scrape.RateLimit, time.Duration(cfg.Scrape.RateWindowSec)*time.Second)

	st, err := store.Open(cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	bypass, err := cfg.BypassSymbols()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		store:    st,
		exchange: idx.NewClient(httpc, limiter),
		enricher: yahoo.NewClient(httpc),
		bypass:   bypass,
		now:      time.Now,
	}, nil
}

// NewWithDeps assembles a pipeline from explicit dependencies.
func NewWithDeps(cfg *config.Config, st *store.Store, exchange ExchangeClient, enricher Enricher, bypass map[string]struct{}) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		exchange: exchange,
		enricher: enricher,
		bypass:   bypass,
		now:      time.Now,
	}
}

// Options selects what a run covers.
type Options struct {
	// AllSymbols rebuilds every active symbol instead of just the newly
	// active and name-drifted ones.
	AllSymbols bool
	// Targets restricts the run to these symbols, skipping reconciliation
	// of the work list. Used by the retry-failed mode.
	Targets []string
	// ShareholdersOnly refreshes only the ownership columns, leaving the
	// rest of each stored profile untouched.
	ShareholdersOnly bool
}

// Run executes one maintenance run and returns its summary. Failures of
// individual symbols are recorded in the summary and the failure report;
// only infrastructure errors (roster fetch, store) abort the run.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*report.RunSummary, error) {
	retrieved, err := p.exchange.ActiveSymbols(ctx)
	if err != nil {
		return nil, err
	}
	storedActive, err := p.store.LoadActiveSymbols(ctx)
	if err != nil {
		return nil, err
	}

	diff := reconcile.Reconcile(storedActive, retrieved, p.bypass, p.cfg.Reconcile.DriftThreshold)
	summary := &report.RunSummary{
		NewlyActive:   len(diff.NewlyActive),
		NewlyInactive: len(diff.NewlyInactive),
		StillActive:   len(diff.StillActive),
		NameDrifted:   diff.NameDrifted,
	}
	log.Info().
		Int("retrieved", len(retrieved)).
		Int("newly_active", len(diff.NewlyActive)).
		Int("newly_inactive", len(diff.NewlyInactive)).
		Int("name_drifted", len(diff.NameDrifted)).
		Msg("symbol roster reconciled")

	// Symbols that dropped out of the active roster are delisted as of
	// today. MarkDelisted keeps any date already recorded.
	today := utils.DateStamp(p.now())
	for _, symbol := range diff.NewlyInactive {
		if _, err := p.store.MarkDelisted(ctx, symbol, today); err != nil {
			return summary, err
		}
	}

	worklist := p.worklist(diff, opts)
	if len(worklist) == 0 {
		log.Info().Msg("nothing to update")
		return summary, p.finishRun(ctx, summary, nil, nil)
	}
	log.Info().Int("symbols", len(worklist)).Msg("work list built")

	var updated []models.CompanyProfile
	controller := batch.Controller{
		MaxAttempts: p.cfg.Scrape.MaxAttempts,
		ItemDelay:   time.Duration(p.cfg.Scrape.ItemDelayMillis) * time.Millisecond,
	}
	failed, err := batch.Drain(ctx, controller, worklist, func(s string) string { return s },
		func(ctx context.Context, symbol string) error {
			row, conflicts, err := p.rebuild(ctx, symbol, opts.ShareholdersOnly)
			if err != nil {
				return err
			}
			updated = append(updated, *row)
			summary.Conflicts = append(summary.Conflicts, conflicts...)
			return nil
		})
	if err != nil {
		return summary, err
	}
	summary.Failed = failed
	summary.Updated = len(updated)

	if p.cfg.Yahoo.Enabled && !opts.ShareholdersOnly {
		summary.Enriched = p.enrich(ctx, updated)
	}

	if err := p.store.UpsertCompanies(ctx, updated); err != nil {
		return summary, err
	}
	return summary, p.finishRun(ctx, summary, updated, failed)
}

// RetryFailed re-drives the symbols recorded by the previous run's
// failure report.
func (p *Pipeline) RetryFailed(ctx context.Context, shareholdersOnly bool) (*report.RunSummary, error) {
	items, err := report.ReadFailed(p.cfg.Store.SnapshotDir)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		log.Info().Msg("no failed items to retry")
		return &report.RunSummary{}, nil
	}

	targets := make([]string, 0, len(items))
	for _, item := range items {
		targets = append(targets, item.Ticker)
	}
	log.Info().Int("symbols", len(targets)).Msg("retrying failed items")
	return p.Run(ctx, Options{Targets: targets, ShareholdersOnly: shareholdersOnly})
}

// SyncDelisting pulls the exchange's delisting history and records dates
// for stored symbols that have none yet. Recorded dates are never moved.
func (p *Pipeline) SyncDelisting(ctx context.Context) (int, error) {
	dates, err := p.exchange.DelistingHistory(ctx)
	if err != nil {
		return 0, err
	}

	marked := 0
	for symbol, date := range dates {
		updated, err := p.store.MarkDelisted(ctx, symbol, date)
		if err != nil {
			return marked, err
		}
		if updated {
			log.Info().Str("symbol", symbol).Str("date", date).Msg("delisting date recorded")
			marked++
		}
	}
	log.Info().Int("events", len(dates)).Int("marked", marked).Msg("delisting history synced")
	return marked, nil
}

// worklist decides which symbols this run rebuilds.
func (p *Pipeline) worklist(diff models.SymbolDiff, opts Options) []string {
	if len(opts.Targets) > 0 {
		targets := make([]string, 0, len(opts.Targets))
		for _, t := range opts.Targets {
			targets = append(targets, utils.ToSymbol(t))
		}
		return targets
	}
	if opts.AllSymbols || opts.ShareholdersOnly {
		all := make([]string, 0, len(diff.StillActive)+len(diff.NewlyActive))
		all = append(all, diff.NewlyActive...)
		all = append(all, diff.StillActive...)
		return all
	}

	// Default: newly active symbols plus the ones whose name drifted.
	seen := make(map[string]struct{}, len(diff.NewlyActive)+len(diff.NameDrifted))
	var work []string
	for _, s := range diff.NewlyActive {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			work = append(work, s)
		}
	}
	for _, s := range diff.NameDrifted {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			work = append(work, s)
		}
	}
	return work
}

// rebuild scrapes one symbol and assembles its new stored row.
func (p *Pipeline) rebuild(ctx context.Context, symbol string, shareholdersOnly bool) (*models.CompanyProfile, []models.TypeConflict, error) {
	profile, err := p.exchange.ProfileDetail(ctx, symbol)
	if errors.Is(err, idx.ErrNoData) {
		return nil, nil, batch.Permanent(batch.ReasonNoneValue)
	}
	if err != nil {
		return nil, nil, err
	}

	prior, err := p.store.LoadCompany(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	if shareholdersOnly && prior == nil {
		// Nothing stored to patch; the full update path owns new symbols.
		return nil, nil, batch.Permanent(batch.ReasonNoneValue)
	}

	row, conflicts := buildRow(profile, prior, p.now())
	if shareholdersOnly {
		patched := *prior
		patched.Shareholders = row.Shareholders
		patched.UpdatedOn = row.UpdatedOn
		return &patched, conflicts, nil
	}
	return row, conflicts, nil
}

// enrich fills employee counts and holder breakdowns from Yahoo for the
// updated rows, a bounded number of symbols in flight. Enrichment is
// best-effort and never fails the run.
func (p *Pipeline) enrich(ctx context.Context, rows []models.CompanyProfile) int {
	concurrency := p.cfg.Yahoo.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	enriched := make([]bool, len(rows))
	for i := range rows {
		g.Go(func() error {
			e, err := p.enricher.QuoteSummary(ctx, rows[i].Symbol)
			if err != nil {
				log.Debug().Str("symbol", rows[i].Symbol).Err(err).Msg("enrichment skipped")
				return nil
			}
			if e.EmployeeNum != nil {
				rows[i].EmployeeNum = e.EmployeeNum
				enriched[i] = true
			}
			if e.HoldersBreakdown != nil {
				rows[i].HoldersBreakdown = datatypes.NewJSONType(e.HoldersBreakdown)
				enriched[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, ok := range enriched {
		if ok {
			count++
		}
	}
	return count
}

// finishRun writes snapshots and the failure report.
func (p *Pipeline) finishRun(ctx context.Context, summary *report.RunSummary, updated []models.CompanyProfile, failed []models.FailedItem) error {
	dir := p.cfg.Store.SnapshotDir

	if len(updated) > 0 {
		path, err := store.WriteSnapshot(dir, store.SnapshotUpdatedRows, updated)
		if err != nil {
			return err
		}
		summary.SnapshotPaths = append(summary.SnapshotPaths, path)
	}

	all, err := p.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	path, err := store.WriteSnapshot(dir, store.SnapshotAllRows, all)
	if err != nil {
		return err
	}
	summary.SnapshotPaths = append(summary.SnapshotPaths, path)

	if _, err := report.WriteFailed(dir, failed); err != nil {
		return err
	}
	return nil
}
