package domain

import "time"

// Item is one lightweight search hit.
type Item struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// PullRequestDetail is the full record of one pull request.
// MergedAt is zero for unmerged pull requests.
type PullRequestDetail struct {
	Number         int
	CreatedAt      time.Time
	MergedAt       time.Time
	Commits        int
	Comments       int
	ReviewComments int
}

// Comment is a conversation comment on an issue or pull request.
type Comment struct {
	Author    string
	CreatedAt time.Time
}

// Review is a submitted pull request review. SubmittedAt is zero for pending reviews.
type Review struct {
	Reviewer    string
	SubmittedAt time.Time
}
