package usecase

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

// Summarize reduces observations of a single unit into summary statistics.
// Boolean observations yield a percentage of true values, everything else a
// mean and a median.
func Summarize(observations []domain.Observation) (domain.Summary, error) {
	if len(observations) == 0 {
		return nil, &domain.EmptySampleError{}
	}

	unit := observations[0].Unit
	data := make(stats.Float64Data, 0, len(observations))
	for _, o := range observations {
		if o.Unit != unit {
			return nil, fmt.Errorf("mixed observation units %q and %q", unit, o.Unit)
		}
		data = append(data, o.Value)
	}

	total := float64(len(data))
	summary := domain.Summary{domain.StatCount: total}

	if unit == domain.UnitBool {
		trueCount, err := data.Sum()
		if err != nil {
			return nil, fmt.Errorf("failed to count true observations: %w", err)
		}
		summary[domain.StatTrueCount] = trueCount
		summary[domain.StatPercentage] = 100 * trueCount / total
		return summary, nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compute mean: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compute median: %w", err)
	}
	summary[domain.StatMean] = mean
	summary[domain.StatMedian] = median
	return summary, nil
}
