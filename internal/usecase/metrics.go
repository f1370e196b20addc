package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

// DetailFetcher fetches per-item records. gateway.Fetcher satisfies it.
type DetailFetcher interface {
	FetchPullRequest(ctx context.Context, repo domain.Repository, number int) (domain.PullRequestDetail, error)
	FetchIssueComments(ctx context.Context, repo domain.Repository, number int) ([]domain.Comment, error)
	FetchReviews(ctx context.Context, repo domain.Repository, number int) ([]domain.Review, error)
}

// Metric is one sampled pull request measurement.
type Metric struct {
	Name  string
	Title string
	// State picks merged or created pull requests for the date window.
	State         domain.StateFilter
	Policy        domain.CountingPolicy
	DefaultSample int
	// Extract builds the per-item extractor for a repository.
	Extract func(f DetailFetcher, repo domain.Repository) Extractor
}

// Query builds the metric's search for a repository and window. Results are
// always newest first.
func (m Metric) Query(repo domain.Repository, since, until time.Time) domain.Query {
	return domain.Query{
		Repository: repo,
		Kind:       domain.KindPullRequest,
		State:      m.State,
		Since:      since,
		Until:      until,
		Sort:       "created",
		Order:      "desc",
	}
}

var (
	CycleTime = Metric{
		Name:          "cycle-time",
		Title:         "PR Cycle Time",
		State:         domain.StateMerged,
		Policy:        domain.CountOnlySuccessful,
		DefaultSample: 500,
		Extract:       cycleTimeExtractor,
	}
	ResponseTime = Metric{
		Name:          "response-time",
		Title:         "PR Response Time",
		State:         domain.StateCreated,
		Policy:        domain.CountAllAttempted,
		DefaultSample: 300,
		Extract:       responseTimeExtractor,
	}
	IterationCount = Metric{
		Name:          "iteration-count",
		Title:         "PR Iteration Count",
		State:         domain.StateMerged,
		Policy:        domain.CountAllAttempted,
		DefaultSample: 300,
		Extract:       iterationCountExtractor,
	}
	ReviewCoverage = Metric{
		Name:          "review-coverage",
		Title:         "Review Coverage",
		State:         domain.StateMerged,
		Policy:        domain.CountAllAttempted,
		DefaultSample: 300,
		Extract:       reviewCoverageExtractor,
	}
	CommentDepth = Metric{
		Name:          "comment-depth",
		Title:         "Review Comment Depth",
		State:         domain.StateCreated,
		Policy:        domain.CountAllAttempted,
		DefaultSample: 200,
		Extract:       commentDepthExtractor,
	}
)

// Catalogue lists every metric in report order.
func Catalogue() []Metric {
	return []Metric{CycleTime, ResponseTime, IterationCount, ReviewCoverage, CommentDepth}
}

// LookupMetric finds a metric by name.
func LookupMetric(name string) (Metric, error) {
	for _, m := range Catalogue() {
		if m.Name == name {
			return m, nil
		}
	}
	return Metric{}, fmt.Errorf("unknown metric %q", name)
}

// cycleTimeExtractor yields whole days from creation to merge. Unmerged pull
// requests yield nothing.
func cycleTimeExtractor(f DetailFetcher, repo domain.Repository) Extractor {
	return func(ctx context.Context, item domain.Item) (domain.Observation, bool, error) {
		pr, err := f.FetchPullRequest(ctx, repo, item.Number)
		if err != nil {
			return domain.Observation{}, false, err
		}
		if pr.MergedAt.IsZero() {
			return domain.Observation{}, false, nil
		}
		days := math.Floor(pr.MergedAt.Sub(pr.CreatedAt).Hours() / 24)
		return domain.Days(days), true, nil
	}
}

// responseTimeExtractor yields hours from creation to the first comment or
// submitted review, whichever came first. Pull requests nobody responded to
// after opening yield nothing.
func responseTimeExtractor(f DetailFetcher, repo domain.Repository) Extractor {
	return func(ctx context.Context, item domain.Item) (domain.Observation, bool, error) {
		pr, err := f.FetchPullRequest(ctx, repo, item.Number)
		if err != nil {
			return domain.Observation{}, false, err
		}
		comments, err := f.FetchIssueComments(ctx, repo, item.Number)
		if err != nil {
			return domain.Observation{}, false, err
		}
		reviews, err := f.FetchReviews(ctx, repo, item.Number)
		if err != nil {
			return domain.Observation{}, false, err
		}

		var first time.Time
		earliest := func(t time.Time) {
			if !t.IsZero() && (first.IsZero() || t.Before(first)) {
				first = t
			}
		}
		for _, c := range comments {
			earliest(c.CreatedAt)
		}
		for _, r := range reviews {
			earliest(r.SubmittedAt)
		}

		if first.IsZero() || !first.After(pr.CreatedAt) {
			return domain.Observation{}, false, nil
		}
		return domain.Hours(first.Sub(pr.CreatedAt).Hours()), true, nil
	}
}

func iterationCountExtractor(f DetailFetcher, repo domain.Repository) Extractor {
	return func(ctx context.Context, item domain.Item) (domain.Observation, bool, error) {
		pr, err := f.FetchPullRequest(ctx, repo, item.Number)
		if err != nil {
			return domain.Observation{}, false, err
		}
		return domain.Count(pr.Commits), true, nil
	}
}

// reviewCoverageExtractor yields whether at least two distinct users reviewed
// the pull request. Reviews from deleted accounts carry no login and are ignored.
func reviewCoverageExtractor(f DetailFetcher, repo domain.Repository) Extractor {
	return func(ctx context.Context, item domain.Item) (domain.Observation, bool, error) {
		reviews, err := f.FetchReviews(ctx, repo, item.Number)
		if err != nil {
			return domain.Observation{}, false, err
		}
		reviewers := make(map[string]struct{})
		for _, r := range reviews {
			if r.Reviewer != "" {
				reviewers[r.Reviewer] = struct{}{}
			}
		}
		return domain.Bool(len(reviewers) >= 2), true, nil
	}
}

// commentDepthExtractor yields conversation plus inline review comments.
func commentDepthExtractor(f DetailFetcher, repo domain.Repository) Extractor {
	return func(ctx context.Context, item domain.Item) (domain.Observation, bool, error) {
		pr, err := f.FetchPullRequest(ctx, repo, item.Number)
		if err != nil {
			return domain.Observation{}, false, err
		}
		return domain.Count(pr.Comments + pr.ReviewComments), true, nil
	}
}
