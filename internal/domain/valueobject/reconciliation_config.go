package valueobject

// ReconciliationConfig carries every runtime-tunable business threshold used
// by the reconciliation engine and its rules. Nothing in the rule
// implementations is hardcoded; config.Load maps environment variables onto
// this struct.
type ReconciliationConfig struct {
	// Days a captured transaction may remain unsettled before it is flagged.
	SettlementDelayThresholdDays int

	// Percent tolerances for the pair rules.
	AmountTolerancePercent float64
	FeeTolerancePercent    float64
	FxRateTolerancePercent float64

	// Expected fee percentage per processor name.
	ProcessorFeePercent map[string]float64

	Severity SeverityThresholds
}

// DefaultReconciliationConfig returns the default reconciliation thresholds.
func DefaultReconciliationConfig() ReconciliationConfig {
	return ReconciliationConfig{
		SettlementDelayThresholdDays: 5,
		AmountTolerancePercent:       0.01,
		FeeTolerancePercent:          0.5,
		FxRateTolerancePercent:       2.0,
		ProcessorFeePercent: map[string]float64{
			"PayFlow":     2.5,
			"TransactMax": 3.2,
			"GlobalPay":   2.8,
		},
		Severity: DefaultSeverityThresholds(),
	}
}

// ExpectedFeeFor returns the configured expected fee percentage for a
// processor, or zero when the processor is unknown.
func (c ReconciliationConfig) ExpectedFeeFor(processor string) float64 {
	return c.ProcessorFeePercent[processor]
}
