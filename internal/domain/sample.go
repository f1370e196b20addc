package domain

import (
	"errors"
	"fmt"
)

// MaxPageSize is the largest page the GitHub search API serves.
const MaxPageSize = 100

// CountingPolicy decides which items count toward the sample cap.
type CountingPolicy int

const (
	// CountAllAttempted counts every item pulled from the search results,
	// whether or not it produced an observation.
	CountAllAttempted CountingPolicy = iota
	// CountOnlySuccessful counts only items that produced an observation.
	CountOnlySuccessful
)

func (p CountingPolicy) String() string {
	switch p {
	case CountAllAttempted:
		return "all-attempted"
	case CountOnlySuccessful:
		return "only-successful"
	default:
		return fmt.Sprintf("CountingPolicy(%d)", int(p))
	}
}

// ParseCountingPolicy is the inverse of CountingPolicy.String.
func ParseCountingPolicy(s string) (CountingPolicy, error) {
	switch s {
	case "all-attempted":
		return CountAllAttempted, nil
	case "only-successful":
		return CountOnlySuccessful, nil
	}
	return 0, fmt.Errorf("unknown counting policy %q (want all-attempted or only-successful)", s)
}

// MarshalText lets policies appear by name in JSON output.
func (p CountingPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SampleConfig bounds one collection run.
type SampleConfig struct {
	MaxSample        int
	PageSize         int
	ProgressInterval int
	Policy           CountingPolicy
}

func (c SampleConfig) Validate() error {
	if c.MaxSample <= 0 {
		return errors.New("max sample must be positive")
	}
	if c.PageSize <= 0 || c.PageSize > MaxPageSize {
		return fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, c.PageSize)
	}
	if c.ProgressInterval <= 0 {
		return errors.New("progress interval must be positive")
	}
	switch c.Policy {
	case CountAllAttempted, CountOnlySuccessful:
	default:
		return fmt.Errorf("unknown counting policy %d", int(c.Policy))
	}
	return nil
}

// SampleResult is built during one collection pass and only read afterwards.
type SampleResult struct {
	// Processed is the number of items counted toward the cap.
	Processed      int           `json:"processed"`
	CollectedCount int           `json:"collected_count"`
	Observations   []Observation `json:"observations,omitempty"`
	Summary        Summary       `json:"summary"`
}
