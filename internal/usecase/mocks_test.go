package usecase

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) SearchItems(ctx context.Context, q domain.Query, pageSize int) iter.Seq2[domain.Item, error] {
	args := m.Called(ctx, q, pageSize)
	var items []domain.Item
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.Item)
	}
	return seqOf(items, args.Error(1), nil)
}

func (m *mockFetcher) FetchPullRequest(ctx context.Context, repo domain.Repository, number int) (domain.PullRequestDetail, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(domain.PullRequestDetail), args.Error(1)
}

func (m *mockFetcher) FetchIssueComments(ctx context.Context, repo domain.Repository, number int) ([]domain.Comment, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *mockFetcher) FetchReviews(ctx context.Context, repo domain.Repository, number int) ([]domain.Review, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

// fakeSearcher serves a fixed list of items and records how many were pulled.
type fakeSearcher struct {
	items  []domain.Item
	err    error
	pulled int
	calls  int
}

func (f *fakeSearcher) SearchItems(ctx context.Context, q domain.Query, pageSize int) iter.Seq2[domain.Item, error] {
	f.calls++
	return seqOf(f.items, f.err, &f.pulled)
}

// seqOf yields items and then err, if any. pulled, when set, counts yielded items.
func seqOf(items []domain.Item, err error, pulled *int) iter.Seq2[domain.Item, error] {
	return func(yield func(domain.Item, error) bool) {
		for _, item := range items {
			if pulled != nil {
				*pulled++
			}
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			yield(domain.Item{}, err)
		}
	}
}

func itemsNumbered(numbers ...int) []domain.Item {
	items := make([]domain.Item, len(numbers))
	for i, n := range numbers {
		items[i] = domain.Item{Number: n}
	}
	return items
}
