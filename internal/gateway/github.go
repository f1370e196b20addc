// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
)

// Backend selects which API serves search requests. Detail records always
// come from the REST API.
type Backend string

const (
	BackendREST    Backend = "rest"
	BackendGraphQL Backend = "graphql"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendREST, BackendGraphQL:
		return b, nil
	}
	return "", fmt.Errorf("unknown search backend %q (want rest or graphql)", s)
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	// SearchItems lazily walks the search results. Pages are requested only
	// as the caller iterates; stopping the iteration stops paging.
	SearchItems(ctx context.Context, q domain.Query, pageSize int) iter.Seq2[domain.Item, error]
	FetchPullRequest(ctx context.Context, repo domain.Repository, number int) (domain.PullRequestDetail, error)
	FetchIssueComments(ctx context.Context, repo domain.Repository, number int) ([]domain.Comment, error)
	FetchReviews(ctx context.Context, repo domain.Repository, number int) ([]domain.Review, error)
}

// Options configures NewGitHubGateway.
type Options struct {
	Token   string
	Backend Backend
	// CacheDir enables the on-disk HTTP cache when non-empty.
	CacheDir string
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	backend       Backend
	logger        logrus.FieldLogger
}

// subCollectionPageSize is used for comments and reviews, which are always read in full.
const subCollectionPageSize = 100

// searchItemsQuery walks issue search results over GraphQL.
type searchItemsQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename    string `graphql:"__typename"`
				PullRequest struct {
					Number    int
					Title     string
					CreatedAt githubv4.DateTime
				} `graphql:"... on PullRequest"`
				Issue struct {
					Number    int
					Title     string
					CreatedAt githubv4.DateTime
				} `graphql:"... on Issue"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger logrus.FieldLogger) (Fetcher, error) {
	if opts.Backend == "" {
		opts.Backend = BackendREST
	}
	var base http.RoundTripper
	if opts.CacheDir != "" {
		cached, err := newCacheTransport(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		logger.WithField("dir", opts.CacheDir).Debug("HTTP response cache enabled")
		base = cached
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(base, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		backend:       opts.Backend,
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) SearchItems(ctx context.Context, q domain.Query, pageSize int) iter.Seq2[domain.Item, error] {
	if g.backend == BackendGraphQL {
		return g.searchGraphQL(ctx, q, pageSize)
	}
	return g.searchREST(ctx, q, pageSize)
}

func (g *GitHubGateway) searchREST(ctx context.Context, q domain.Query, pageSize int) iter.Seq2[domain.Item, error] {
	return func(yield func(domain.Item, error) bool) {
		query := q.SearchString()
		opts := &github.SearchOptions{
			Sort:        q.Sort,
			Order:       q.Order,
			ListOptions: github.ListOptions{PerPage: pageSize},
		}
		g.logger.WithField("query", query).Debug("Searching issues using REST API...")
		for {
			result, resp, err := g.restClient.Search.Issues(ctx, query, opts)
			if err != nil {
				yield(domain.Item{}, &domain.RemoteFetchError{Op: "search issues", Err: err})
				return
			}
			g.logRate(resp)
			for _, issue := range result.Issues {
				item := domain.Item{
					Number:    issue.GetNumber(),
					Title:     issue.GetTitle(),
					CreatedAt: issue.GetCreatedAt().Time,
				}
				if !yield(item, nil) {
					return
				}
			}
			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
			g.logger.Debug("Fetching next page of search results...")
		}
	}
}

func (g *GitHubGateway) searchGraphQL(ctx context.Context, q domain.Query, pageSize int) iter.Seq2[domain.Item, error] {
	return func(yield func(domain.Item, error) bool) {
		// GraphQL search has no sort arguments; ordering goes into the query string.
		query := q.SearchString()
		if q.Sort != "" {
			order := q.Order
			if order == "" {
				order = "desc"
			}
			query = fmt.Sprintf("%s sort:%s-%s", query, q.Sort, order)
		}
		variables := map[string]interface{}{
			"query":  githubv4.String(query),
			"first":  githubv4.Int(pageSize),
			"cursor": (*githubv4.String)(nil),
		}
		g.logger.WithField("query", query).Debug("Searching issues using GraphQL API...")
		for {
			var sq searchItemsQuery
			if err := g.graphqlClient.Query(ctx, &sq, variables); err != nil {
				yield(domain.Item{}, &domain.RemoteFetchError{Op: "graphql search", Err: err})
				return
			}
			for _, edge := range sq.Search.Edges {
				var item domain.Item
				switch edge.Node.Typename {
				case "PullRequest":
					pr := edge.Node.PullRequest
					item = domain.Item{Number: pr.Number, Title: pr.Title, CreatedAt: pr.CreatedAt.Time}
				case "Issue":
					issue := edge.Node.Issue
					item = domain.Item{Number: issue.Number, Title: issue.Title, CreatedAt: issue.CreatedAt.Time}
				default:
					continue
				}
				if !yield(item, nil) {
					return
				}
			}
			if !sq.Search.PageInfo.HasNextPage {
				return
			}
			variables["cursor"] = githubv4.NewString(sq.Search.PageInfo.EndCursor)
			g.logger.Debug("Fetching next page of search results...")
		}
	}
}

// FetchPullRequest fetches the full record of one pull request.
func (g *GitHubGateway) FetchPullRequest(ctx context.Context, repo domain.Repository, number int) (domain.PullRequestDetail, error) {
	pr, resp, err := g.restClient.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return domain.PullRequestDetail{}, &domain.RemoteFetchError{Op: fmt.Sprintf("get pull request #%d", number), Err: err}
	}
	g.logRate(resp)
	return domain.PullRequestDetail{
		Number:         pr.GetNumber(),
		CreatedAt:      pr.GetCreatedAt().Time,
		MergedAt:       pr.GetMergedAt().Time,
		Commits:        pr.GetCommits(),
		Comments:       pr.GetComments(),
		ReviewComments: pr.GetReviewComments(),
	}, nil
}

// FetchIssueComments returns every conversation comment on the item, oldest first.
func (g *GitHubGateway) FetchIssueComments(ctx context.Context, repo domain.Repository, number int) ([]domain.Comment, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: subCollectionPageSize}}
	var comments []domain.Comment
	for {
		page, resp, err := g.restClient.Issues.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, &domain.RemoteFetchError{Op: fmt.Sprintf("list comments of #%d", number), Err: err}
		}
		g.logRate(resp)
		for _, c := range page {
			comments = append(comments, domain.Comment{
				Author:    c.GetUser().GetLogin(),
				CreatedAt: c.GetCreatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// FetchReviews returns every review on the pull request in submission order.
func (g *GitHubGateway) FetchReviews(ctx context.Context, repo domain.Repository, number int) ([]domain.Review, error) {
	opts := &github.ListOptions{PerPage: subCollectionPageSize}
	var reviews []domain.Review
	for {
		page, resp, err := g.restClient.PullRequests.ListReviews(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, &domain.RemoteFetchError{Op: fmt.Sprintf("list reviews of #%d", number), Err: err}
		}
		g.logRate(resp)
		for _, r := range page {
			reviews = append(reviews, domain.Review{
				Reviewer:    r.GetUser().GetLogin(),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return reviews, nil
}

func (g *GitHubGateway) logRate(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	g.logger.WithFields(logrus.Fields{
		"remaining": resp.Rate.Remaining,
		"limit":     resp.Rate.Limit,
	}).Debug("API rate")
}
