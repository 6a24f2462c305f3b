// Package dump drives the report scripts: it walks the catalog, joins each
// document with its data and writes one row per result to a sink.
package dump

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/fabiobatalha/processing/internal/access"
	"github.com/fabiobatalha/processing/internal/accessstats"
	"github.com/fabiobatalha/processing/internal/analytics"
	"github.com/fabiobatalha/processing/internal/articlemeta"
	"github.com/fabiobatalha/processing/internal/metrics"
	"github.com/fabiobatalha/processing/internal/report"
)

// Catalog lists documents and journals.
type Catalog interface {
	Documents(ctx context.Context, collection, issn string) iter.Seq2[*articlemeta.Document, error]
	Journals(ctx context.Context, collection, issn string) iter.Seq2[*articlemeta.Journal, error]
}

// LifetimeSource computes a journal's access lifetime.
type LifetimeSource interface {
	Lifetime(ctx context.Context, issn, collection string) ([]accessstats.Lifetime, error)
}

// ImpactFactorSource computes a journal's impact factor series.
type ImpactFactorSource interface {
	ImpactFactor(ctx context.Context, issn, collection string) ([]analytics.ImpactFactor, error)
}

// Options select what a Runner reads.
type Options struct {
	// Collection is the collection acronym.
	Collection string
	// ISSNs restricts the run to these journals; empty means all.
	ISSNs []string
	// SkipFailed logs and skips documents whose upstream lookups fail
	// instead of aborting the run.
	SkipFailed bool
}

// Runner writes reports to a sink.
type Runner struct {
	catalog Catalog
	sink    report.Sink
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithMetrics sets the counters the runner updates.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a runner reading catalog and writing to sink.
func NewRunner(catalog Catalog, sink report.Sink, opts Options, options ...Option) *Runner {
	r := &Runner{
		catalog: catalog,
		sink:    sink,
		opts:    opts,
		logger:  zap.NewNop(),
	}
	for _, o := range options {
		o(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	return r
}

// Accesses writes one row per document and period with accesses inside
// window.
func (r *Runner) Accesses(ctx context.Context, lookup access.Lookup, window access.Window) error {
	lookup = &countingLookup{next: lookup, metrics: r.metrics}

	return r.eachDocument(ctx, func(doc *articlemeta.Document) error {
		keys, err := access.DeriveKeys(doc)
		if err != nil {
			return err
		}
		records, err := access.Reconcile(ctx, lookup, keys)
		if err != nil {
			return err
		}

		periods := access.Aggregate(records, window)
		for _, period := range periods.Keys() {
			if err := r.write(report.BuildAccessRow(doc, period, periods[period])); err != nil {
				return err
			}
		}
		return nil
	})
}

// Affiliations writes one row per document classifying its affiliation
// countries against home.
func (r *Runner) Affiliations(ctx context.Context, home string) error {
	return r.eachDocument(ctx, func(doc *articlemeta.Document) error {
		return r.write(report.BuildAffiliationRow(doc, home))
	})
}

// Languages writes one row per document classifying its languages.
func (r *Runner) Languages(ctx context.Context) error {
	return r.eachDocument(ctx, func(doc *articlemeta.Document) error {
		return r.write(report.BuildLanguageRow(doc))
	})
}

// Lifetime writes the access lifetime of every selected journal.
func (r *Runner) Lifetime(ctx context.Context, src LifetimeSource) error {
	return r.eachJournal(ctx, func(j *articlemeta.Journal) error {
		cells, err := src.Lifetime(ctx, j.ISSN, r.opts.Collection)
		if err != nil {
			return &upstreamError{fmt.Errorf("lifetime of %s: %w", j.ISSN, err)}
		}
		for _, cell := range cells {
			if err := r.write(report.BuildLifetimeRow(j, cell)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ImpactFactor writes one row per base year of every selected journal's
// impact factor series.
func (r *Runner) ImpactFactor(ctx context.Context, src ImpactFactorSource) error {
	return r.eachJournal(ctx, func(j *articlemeta.Journal) error {
		series, err := src.ImpactFactor(ctx, j.ISSN, r.opts.Collection)
		if err != nil {
			return &upstreamError{fmt.Errorf("impact factor of %s: %w", j.ISSN, err)}
		}
		for _, f := range series {
			if err := r.write(report.BuildImpactFactorRow(j, f)); err != nil {
				return err
			}
		}
		return nil
	})
}

// eachJournal calls fn for every selected journal.
func (r *Runner) eachJournal(ctx context.Context, fn func(*articlemeta.Journal) error) error {
	for _, issn := range r.issns() {
		for j, err := range r.catalog.Journals(ctx, r.opts.Collection, issn) {
			if err != nil {
				if err := r.failed(ctx, err); err != nil {
					return err
				}
				continue
			}
			r.logger.Debug("Reading journal", zap.String("issn", j.ISSN))

			if err := fn(j); err != nil {
				if err := r.failed(ctx, err); err != nil {
					return err
				}
			}
		}
	}
	r.logger.Info("Export finished")
	return nil
}

// eachDocument calls fn for every document of the selected journals.
func (r *Runner) eachDocument(ctx context.Context, fn func(*articlemeta.Document) error) error {
	for _, issn := range r.issns() {
		for doc, err := range r.catalog.Documents(ctx, r.opts.Collection, issn) {
			if err != nil {
				if err := r.failed(ctx, err); err != nil {
					return err
				}
				continue
			}
			r.metrics.Documents.Inc()
			r.logger.Debug("Reading document", zap.String("pid", doc.PID))

			if err := fn(doc); err != nil {
				if err := r.failed(ctx, err); err != nil {
					return err
				}
			}
		}
	}
	r.logger.Info("Export finished")
	return nil
}

// failed decides whether err ends the run. Document-level failures are
// skipped when SkipFailed is set; everything else is returned.
func (r *Runner) failed(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !Skippable(err) {
		return err
	}
	r.metrics.UpstreamFailures.Inc()
	if !r.opts.SkipFailed {
		return err
	}
	r.logger.Error("Skipping after failure", zap.Error(err))
	return nil
}

func (r *Runner) write(row report.Row) error {
	if err := r.sink.Write(row); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	r.metrics.Rows.Inc()
	return nil
}

func (r *Runner) issns() []string {
	if len(r.opts.ISSNs) == 0 {
		return []string{""}
	}
	return r.opts.ISSNs
}

// upstreamError marks a failure of one journal's lookup.
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

// Skippable reports whether err concerns a single document or journal, so
// that the run may go on without it.
func Skippable(err error) bool {
	var ue *upstreamError
	return access.IsLookupError(err) ||
		articlemeta.IsServerError(err) ||
		errors.Is(err, access.ErrMalformedPID) ||
		errors.As(err, &ue)
}

// countingLookup records hits and misses of the wrapped lookup.
type countingLookup struct {
	next    access.Lookup
	metrics *metrics.Metrics
}

func (c *countingLookup) Lookup(ctx context.Context, key string) (access.Record, error) {
	rec, err := c.next.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	c.metrics.KeyLookup(len(rec) > 0)
	return rec, nil
}
