package valueobject

// ReportSummary is the structured breakdown persisted on a completed report.
// The three sub-map shape is consumed by downstream dashboards and must stay
// stable.
type ReportSummary struct {
	ByType      map[string]int `json:"by_type"`
	BySeverity  map[string]int `json:"by_severity"`
	ByProcessor map[string]int `json:"by_processor"`
}

// NewReportSummary returns an empty summary with initialized maps.
func NewReportSummary() *ReportSummary {
	return &ReportSummary{
		ByType:      make(map[string]int),
		BySeverity:  make(map[string]int),
		ByProcessor: make(map[string]int),
	}
}
