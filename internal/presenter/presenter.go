// Package presenter renders sampled metric reports for the console.
package presenter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

const ruleWidth = 50

var rule = strings.Repeat("=", ruleWidth)

// WriteHeader prints the banner that precedes a text report.
func WriteHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Fast Metrics Collection\n%s\n", rule)
	return err
}

// WriteText prints one block per report followed by the closing line.
func WriteText(w io.Writer, reports []*domain.MetricReport, elapsed time.Duration) error {
	p := &printer{w: w}
	for i, r := range reports {
		p.printf("\n%d. %s\n", i+1, r.Title)
		if r.Empty || r.Result == nil {
			p.printf("   ✗ No observations collected (%d PRs processed)\n", r.Processed)
			continue
		}
		render, ok := renderers[r.Metric]
		if !ok {
			render = renderGeneric
		}
		render(p, r.Result)
	}
	p.printf("\n%s\nCollection complete! (Took %s)\n", rule, elapsed.Round(time.Second))
	return p.err
}

// WriteJSON prints the reports as indented JSON.
func WriteJSON(w io.Writer, reports []*domain.MetricReport) error {
	jsonData, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// printer remembers the first write error so renderers can ignore it.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

var renderers = map[string]func(p *printer, r *domain.SampleResult){
	"cycle-time": func(p *printer, r *domain.SampleResult) {
		p.printf("   ✓ Median PR Cycle Time: %.1f days\n", r.Summary[domain.StatMedian])
		p.printf("   ✓ Mean PR Cycle Time: %.1f days\n", r.Summary[domain.StatMean])
		p.printf("   ✓ Sample size: %d PRs\n", r.CollectedCount)
	},
	"response-time": func(p *printer, r *domain.SampleResult) {
		p.printf("   ✓ Median PR Response Time: %.1f days\n", r.Summary.Days(domain.StatMedian))
		p.printf("   ✓ Mean PR Response Time: %.1f days\n", r.Summary.Days(domain.StatMean))
		p.printf("   ✓ Sample size: %d of %d PRs responded to\n", r.CollectedCount, r.Processed)
	},
	"iteration-count": func(p *printer, r *domain.SampleResult) {
		p.printf("   ✓ Average PR Iteration Count: %.1f commits\n", r.Summary[domain.StatMean])
		p.printf("   ✓ Median PR Iteration Count: %.0f commits\n", r.Summary[domain.StatMedian])
	},
	"review-coverage": func(p *printer, r *domain.SampleResult) {
		p.printf("   ✓ Review Coverage: %.1f%%\n", r.Summary[domain.StatPercentage])
		p.printf("   ✓ PRs with 2+ reviewers: %.0f/%d\n", r.Summary[domain.StatTrueCount], r.CollectedCount)
	},
	"comment-depth": func(p *printer, r *domain.SampleResult) {
		p.printf("   ✓ Average Review Comments per PR: %.1f\n", r.Summary[domain.StatMean])
		p.printf("   ✓ Sample size: %d PRs\n", r.CollectedCount)
	},
}

func renderGeneric(p *printer, r *domain.SampleResult) {
	if pct, ok := r.Summary[domain.StatPercentage]; ok {
		p.printf("   ✓ Percentage: %.1f%%\n", pct)
	} else {
		p.printf("   ✓ Median: %.2f\n", r.Summary[domain.StatMedian])
		p.printf("   ✓ Mean: %.2f\n", r.Summary[domain.StatMean])
	}
	p.printf("   ✓ Sample size: %d\n", r.CollectedCount)
}
