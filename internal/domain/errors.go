package domain

import "fmt"

// RemoteFetchError wraps any failure talking to the hosting API. Network,
// auth and rate-limit failures are not distinguished.
type RemoteFetchError struct {
	Op  string
	Err error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("remote fetch failed (%s): %v", e.Op, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// ExtractionError reports an extractor failure for one item.
type ExtractionError struct {
	Number int
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting observation from #%d: %v", e.Number, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmptySampleError is returned when statistics are requested over zero observations.
type EmptySampleError struct {
	Processed int
}

func (e *EmptySampleError) Error() string {
	return fmt.Sprintf("empty sample: no observations collected from %d processed items", e.Processed)
}
