package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
	"github.com/LiaBanuta/capstone-software-dev/internal/gateway"
)

// Selection pairs a metric with the sample bounds to run it under.
type Selection struct {
	Metric Metric
	Sample domain.SampleConfig
}

// ReporterOptions tunes a Reporter.
type ReporterOptions struct {
	// Concurrency is how many metrics run at once. Values below 1 mean 1.
	Concurrency int
	// SkipEmpty turns an empty sample into an empty report instead of an error.
	SkipEmpty bool
}

// Reporter is the use case for sampling a set of metrics.
// It orchestrates one Collector run per selected metric.
type Reporter struct {
	fetcher gateway.Fetcher
	logger  logrus.FieldLogger
	opts    ReporterOptions
}

// NewReporter creates a new Reporter instance.
func NewReporter(fetcher gateway.Fetcher, logger logrus.FieldLogger, opts ReporterOptions) *Reporter {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Reporter{
		fetcher: fetcher,
		logger:  logger,
		opts:    opts,
	}
}

// Run samples every selection over [since, until) and returns the reports in
// selection order. The first failure cancels the remaining metrics.
func (r *Reporter) Run(ctx context.Context, repo domain.Repository, since, until time.Time, selections []Selection) ([]*domain.MetricReport, error) {
	r.logger.WithField("repository", repo.String()).Info("Usecase: Starting metric sampling...")
	start := time.Now()

	reports := make([]*domain.MetricReport, len(selections))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Concurrency)

	for i, sel := range selections {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			report, err := r.runOne(egCtx, i+1, repo, since, until, sel)
			if err != nil {
				return fmt.Errorf("%s: %w", sel.Metric.Name, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	r.logger.WithField("elapsed", time.Since(start).Round(time.Second)).Info("Usecase: Sampling complete.")
	return reports, nil
}

func (r *Reporter) runOne(ctx context.Context, position int, repo domain.Repository, since, until time.Time, sel Selection) (*domain.MetricReport, error) {
	logger := r.logger.WithField("metric", sel.Metric.Name)
	subject := "PRs"
	if sel.Metric.State == domain.StateMerged {
		subject = "merged PRs"
	}
	logger.Infof("%d. %s (sampling %d %s)...", position, sel.Metric.Title, sel.Sample.MaxSample, subject)

	report := &domain.MetricReport{
		Metric:    sel.Metric.Name,
		Title:     sel.Metric.Title,
		State:     sel.Metric.State,
		Policy:    sel.Sample.Policy,
		MaxSample: sel.Sample.MaxSample,
	}

	collector := NewCollector(r.fetcher, logger)
	query := sel.Metric.Query(repo, since, until)
	result, err := collector.Collect(ctx, query, sel.Sample, sel.Metric.Extract(r.fetcher, repo))
	if err != nil {
		var empty *domain.EmptySampleError
		if r.opts.SkipEmpty && errors.As(err, &empty) {
			logger.WithError(err).Warn("No observations collected, skipping summary")
			report.Empty = true
			report.Processed = empty.Processed
			return report, nil
		}
		return nil, err
	}

	report.Result = result
	report.Processed = result.Processed
	return report, nil
}
