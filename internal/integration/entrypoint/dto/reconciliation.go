package dto

import (
	"time"

	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/reconciliation"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/valueobject"
)

// RunReconciliationRequest represents the body of a run request. Dates are
// inclusive calendar days in YYYY-MM-DD format.
type RunReconciliationRequest struct {
	DateFrom   string   `json:"date_from" binding:"required"`
	DateTo     string   `json:"date_to" binding:"required"`
	Processors []string `json:"processors,omitempty"`
}

// ReportDTO represents a reconciliation report in API responses.
type ReportDTO struct {
	ID                        string                     `json:"id"`
	Status                    string                     `json:"status"`
	StartedAt                 string                     `json:"started_at"`
	CompletedAt               *string                    `json:"completed_at"`
	DateRangeStart            string                     `json:"date_range_start"`
	DateRangeEnd              string                     `json:"date_range_end"`
	TotalTransactions         int                        `json:"total_transactions"`
	MatchedCount              int                        `json:"matched_count"`
	DiscrepancyCount          int                        `json:"discrepancy_count"`
	MissingCount              int                        `json:"missing_count"`
	TotalExpectedAmountUSD    string                     `json:"total_expected_amount_usd"`
	TotalSettledAmountUSD     string                     `json:"total_settled_amount_usd"`
	TotalDiscrepancyAmountUSD string                     `json:"total_discrepancy_amount_usd"`
	Summary                   *valueobject.ReportSummary `json:"summary,omitempty"`
	CreatedAt                 string                     `json:"created_at"`
}

// ReportDetailResponse bundles a report with its discrepancies.
type ReportDetailResponse struct {
	Report        ReportDTO        `json:"report"`
	Discrepancies []DiscrepancyDTO `json:"discrepancies"`
}

// SubmitJobResponse is returned immediately after an async submission.
type SubmitJobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JobDTO represents an async reconciliation job in API responses.
type JobDTO struct {
	JobID       string   `json:"job_id"`
	Status      string   `json:"status"`
	DateFrom    string   `json:"date_from"`
	DateTo      string   `json:"date_to"`
	Processors  []string `json:"processors,omitempty"`
	ReportID    *string  `json:"report_id,omitempty"`
	Error       string   `json:"error,omitempty"`
	SubmittedAt string   `json:"submitted_at"`
}

// JobListResponse wraps the job listing.
type JobListResponse struct {
	Jobs []JobDTO `json:"jobs"`
}

// ToReportDTO converts a domain ReconciliationReport to its DTO.
func ToReportDTO(report *entity.ReconciliationReport) ReportDTO {
	var completedAt *string
	if report.CompletedAt != nil {
		s := report.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &s
	}

	return ReportDTO{
		ID:                        report.ID.String(),
		Status:                    string(report.Status),
		StartedAt:                 report.StartedAt.UTC().Format(time.RFC3339),
		CompletedAt:               completedAt,
		DateRangeStart:            report.DateRangeStart.UTC().Format("2006-01-02"),
		DateRangeEnd:              report.DateRangeEnd.UTC().Format("2006-01-02"),
		TotalTransactions:         report.TotalTransactions,
		MatchedCount:              report.MatchedCount,
		DiscrepancyCount:          report.DiscrepancyCount,
		MissingCount:              report.MissingCount,
		TotalExpectedAmountUSD:    report.TotalExpectedAmountUSD.String(),
		TotalSettledAmountUSD:     report.TotalSettledAmountUSD.String(),
		TotalDiscrepancyAmountUSD: report.TotalDiscrepancyAmountUSD.String(),
		Summary:                   report.Summary,
		CreatedAt:                 report.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToJobDTO converts a tracked job to its DTO.
func ToJobDTO(job *reconciliation.Job) JobDTO {
	var reportID *string
	if job.ReportID != nil {
		s := job.ReportID.String()
		reportID = &s
	}

	return JobDTO{
		JobID:       job.ID,
		Status:      string(job.Status),
		DateFrom:    job.DateFrom.UTC().Format("2006-01-02"),
		DateTo:      job.DateTo.UTC().Format("2006-01-02"),
		Processors:  job.Processors,
		ReportID:    reportID,
		Error:       job.Error,
		SubmittedAt: job.SubmittedAt.UTC().Format(time.RFC3339),
	}
}
