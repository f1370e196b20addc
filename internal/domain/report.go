package domain

// MetricReport is the outcome of sampling one metric.
type MetricReport struct {
	Metric    string         `json:"metric"`
	Title     string         `json:"title"`
	State     StateFilter    `json:"state"`
	Policy    CountingPolicy `json:"policy"`
	MaxSample int            `json:"max_sample"`
	Result    *SampleResult  `json:"result,omitempty"`
	// Empty is set when the sample produced no observations and the run was
	// configured to carry on.
	Empty     bool `json:"empty,omitempty"`
	Processed int  `json:"processed,omitempty"`
}
