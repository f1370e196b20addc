package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

var opened = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func TestResponseTime_EarlierOfCommentAndReview(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	fetcher := new(mockFetcher)

	// #1 got a comment before any review.
	fetcher.On("FetchPullRequest", mock.Anything, testRepo, 1).Return(domain.PullRequestDetail{Number: 1, CreatedAt: opened}, nil)
	fetcher.On("FetchIssueComments", mock.Anything, testRepo, 1).Return([]domain.Comment{{Author: "a", CreatedAt: opened.Add(2 * time.Hour)}}, nil)
	fetcher.On("FetchReviews", mock.Anything, testRepo, 1).Return([]domain.Review{{Reviewer: "b", SubmittedAt: opened.Add(5 * time.Hour)}}, nil)
	// #2 got a review before any comment.
	fetcher.On("FetchPullRequest", mock.Anything, testRepo, 2).Return(domain.PullRequestDetail{Number: 2, CreatedAt: opened}, nil)
	fetcher.On("FetchIssueComments", mock.Anything, testRepo, 2).Return([]domain.Comment{{Author: "a", CreatedAt: opened.Add(6 * time.Hour)}}, nil)
	fetcher.On("FetchReviews", mock.Anything, testRepo, 2).Return([]domain.Review{{Reviewer: "b", SubmittedAt: opened.Add(3 * time.Hour)}}, nil)

	searcher := &fakeSearcher{items: itemsNumbered(1, 2)}
	result, err := NewCollector(searcher, logger).Collect(ctx, ResponseTime.Query(testRepo, testSince, testUntil),
		sampleConfig(ResponseTime.DefaultSample, ResponseTime.Policy), ResponseTime.Extract(fetcher, testRepo))

	require.NoError(t, err)
	assert.Equal(t, 2, result.CollectedCount)
	assert.Equal(t, []domain.Observation{domain.Hours(2), domain.Hours(3)}, result.Observations)
	assert.Equal(t, 2.5/24, result.Summary.Days(domain.StatMean))
	fetcher.AssertExpectations(t)
}

func TestResponseTime_NoResponse(t *testing.T) {
	testCases := []struct {
		name     string
		comments []domain.Comment
		reviews  []domain.Review
	}{
		{name: "nobody responded"},
		{
			name:    "pending review only",
			reviews: []domain.Review{{Reviewer: "b"}},
		},
		{
			name:     "response not after creation",
			comments: []domain.Comment{{Author: "a", CreatedAt: opened}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchPullRequest", mock.Anything, testRepo, 9).Return(domain.PullRequestDetail{Number: 9, CreatedAt: opened}, nil)
			fetcher.On("FetchIssueComments", mock.Anything, testRepo, 9).Return(tc.comments, nil)
			fetcher.On("FetchReviews", mock.Anything, testRepo, 9).Return(tc.reviews, nil)

			_, ok, err := ResponseTime.Extract(fetcher, testRepo)(context.Background(), domain.Item{Number: 9})

			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCycleTime_UnmergedYieldsNothing(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchPullRequest", mock.Anything, testRepo, 4).Return(domain.PullRequestDetail{Number: 4, CreatedAt: opened}, nil)

	_, ok, err := CycleTime.Extract(fetcher, testRepo)(context.Background(), domain.Item{Number: 4})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCycleTime_FloorsToWholeDays(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchPullRequest", mock.Anything, testRepo, 4).Return(mergedPR(4, opened, 47*time.Hour), nil)

	obs, ok, err := CycleTime.Extract(fetcher, testRepo)(context.Background(), domain.Item{Number: 4})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Days(1), obs)
}

func TestCountExtractors(t *testing.T) {
	detail := domain.PullRequestDetail{Number: 5, CreatedAt: opened, Commits: 2, Comments: 3, ReviewComments: 4}
	testCases := []struct {
		name     string
		metric   Metric
		expected domain.Observation
	}{
		{name: "iteration count is the commit count", metric: IterationCount, expected: domain.Count(2)},
		{name: "comment depth adds review comments", metric: CommentDepth, expected: domain.Count(7)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchPullRequest", mock.Anything, testRepo, 5).Return(detail, nil)

			obs, ok, err := tc.metric.Extract(fetcher, testRepo)(context.Background(), domain.Item{Number: 5})

			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tc.expected, obs)
		})
	}
}

func TestReviewCoverage_DistinctReviewers(t *testing.T) {
	testCases := []struct {
		name     string
		reviews  []domain.Review
		expected bool
	}{
		{name: "no reviews", expected: false},
		{
			name:     "one reviewer twice",
			reviews:  []domain.Review{{Reviewer: "a"}, {Reviewer: "a"}},
			expected: false,
		},
		{
			name:     "ghost reviewer does not count",
			reviews:  []domain.Review{{Reviewer: "a"}, {Reviewer: ""}},
			expected: false,
		},
		{
			name:     "two reviewers",
			reviews:  []domain.Review{{Reviewer: "a"}, {Reviewer: "b"}, {Reviewer: "a"}},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("FetchReviews", mock.Anything, testRepo, 6).Return(tc.reviews, nil)

			obs, ok, err := ReviewCoverage.Extract(fetcher, testRepo)(context.Background(), domain.Item{Number: 6})

			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, domain.Bool(tc.expected), obs)
		})
	}
}

func TestExtractors_PropagateFetchErrors(t *testing.T) {
	boom := &domain.RemoteFetchError{Op: "get pull request #1", Err: errors.New("boom")}
	fetcher := new(mockFetcher)
	fetcher.On("FetchPullRequest", mock.Anything, testRepo, 1).Return(domain.PullRequestDetail{}, boom)
	fetcher.On("FetchReviews", mock.Anything, testRepo, 1).Return(nil, boom)

	for _, m := range Catalogue() {
		t.Run(m.Name, func(t *testing.T) {
			_, _, err := m.Extract(fetcher, testRepo)(context.Background(), domain.Item{Number: 1})
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestLookupMetric(t *testing.T) {
	m, err := LookupMetric("review-coverage")
	require.NoError(t, err)
	assert.Equal(t, "Review Coverage", m.Title)

	_, err = LookupMetric("velocity")
	assert.ErrorContains(t, err, "unknown metric")
}

func TestMetric_Query(t *testing.T) {
	q := CycleTime.Query(testRepo, testSince, testUntil)
	assert.Equal(t, "repo:microsoft/vscode is:pr is:merged merged:2024-10-25..2025-10-24", q.SearchString())
	assert.Equal(t, "created", q.Sort)
	assert.Equal(t, "desc", q.Order)

	q = ResponseTime.Query(testRepo, testSince, testUntil)
	assert.Equal(t, "repo:microsoft/vscode is:pr created:2024-10-25..2025-10-24", q.SearchString())
}
