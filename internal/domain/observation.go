package domain

// Unit tags what an observation measures.
type Unit string

const (
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
	UnitCount Unit = "count"
	UnitBool  Unit = "bool"
)

// Observation is one value extracted from a detail record.
type Observation struct {
	Unit  Unit    `json:"unit"`
	Value float64 `json:"value"`
}

func Days(v float64) Observation {
	return Observation{Unit: UnitDays, Value: v}
}

func Hours(v float64) Observation {
	return Observation{Unit: UnitHours, Value: v}
}

func Count(n int) Observation {
	return Observation{Unit: UnitCount, Value: float64(n)}
}

// Bool stores true as 1 and false as 0.
func Bool(b bool) Observation {
	if b {
		return Observation{Unit: UnitBool, Value: 1}
	}
	return Observation{Unit: UnitBool, Value: 0}
}

// Statistic names a summary value.
type Statistic string

const (
	StatCount      Statistic = "count"
	StatTrueCount  Statistic = "true_count"
	StatMean       Statistic = "mean"
	StatMedian     Statistic = "median"
	StatPercentage Statistic = "percentage"
)

// Summary maps statistic names to values.
type Summary map[Statistic]float64

// Days converts an hours-based statistic to days for display.
func (s Summary) Days(stat Statistic) float64 {
	return s[stat] / 24
}
