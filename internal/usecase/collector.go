// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

// Searcher yields search hits lazily. gateway.Fetcher satisfies it.
type Searcher interface {
	SearchItems(ctx context.Context, q domain.Query, pageSize int) iter.Seq2[domain.Item, error]
}

// Extractor maps one search hit to at most one observation. It may perform
// further remote fetches. A false second result means the item yielded nothing.
type Extractor func(ctx context.Context, item domain.Item) (domain.Observation, bool, error)

// Collector draws a bounded sample of observations from a search.
type Collector struct {
	searcher Searcher
	logger   logrus.FieldLogger
}

// NewCollector creates a new Collector instance.
func NewCollector(searcher Searcher, logger logrus.FieldLogger) *Collector {
	return &Collector{
		searcher: searcher,
		logger:   logger,
	}
}

// Collect runs the search, feeds each hit to extract and summarizes what comes
// back. Items are consumed one at a time in the order the API returns them and
// the search is abandoned as soon as cfg.MaxSample items have been counted.
// Which items count is decided by cfg.Policy.
//
// Any fetch or extraction failure aborts the run; there is no partial result.
// A run that produces no observations fails with *domain.EmptySampleError.
func (c *Collector) Collect(ctx context.Context, q domain.Query, cfg domain.SampleConfig, extract Extractor) (*domain.SampleResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sample config: %w", err)
	}

	result := &domain.SampleResult{}
	for item, err := range c.searcher.SearchItems(ctx, q, cfg.PageSize) {
		if err != nil {
			return nil, err
		}
		obs, ok, err := extract(ctx, item)
		if err != nil {
			return nil, &domain.ExtractionError{Number: item.Number, Err: err}
		}
		if ok {
			result.Observations = append(result.Observations, obs)
		} else if cfg.Policy == domain.CountOnlySuccessful {
			continue
		}

		result.Processed++
		if result.Processed%cfg.ProgressInterval == 0 {
			c.logger.WithField("processed", result.Processed).Infof("Processed %d PRs...", result.Processed)
		}
		if result.Processed >= cfg.MaxSample {
			break
		}
	}
	result.CollectedCount = len(result.Observations)

	summary, err := Summarize(result.Observations)
	if err != nil {
		var empty *domain.EmptySampleError
		if errors.As(err, &empty) {
			empty.Processed = result.Processed
		}
		return nil, err
	}
	result.Summary = summary
	return result, nil
}
