package valueobject

// FeeStats holds per (processor, currency) fee-percentage statistics computed
// over historical settlement entries. StdDev is the sample standard deviation
// (n-1 denominator); it is zero when the group has a single member. All
// values are rounded to four decimal places.
type FeeStats struct {
	AvgFeePct   float64 `json:"avg_fee_pct"`
	StdDev      float64 `json:"std_dev"`
	SampleCount int     `json:"sample_count"`
}

// UnusualFee describes a settlement entry whose fee percentage deviates
// beyond the configured number of standard deviations from its group mean.
type UnusualFee struct {
	TransactionID  string  `json:"transaction_id"`
	Processor      string  `json:"processor"`
	Currency       string  `json:"currency"`
	ActualFeePct   float64 `json:"actual_fee_pct"`
	AvgFeePct      float64 `json:"avg_fee_pct"`
	StdDev         float64 `json:"std_dev"`
	DeviationScore float64 `json:"deviation_score"`
}
