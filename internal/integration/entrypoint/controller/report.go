package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/report"
	"github.com/juandarn/fleximarket-reconciler/internal/domain/entity"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/dto"
)

// ReportController handles report and discrepancy query endpoints.
type ReportController struct {
	listReportsUseCase        *report.ListReportsUseCase
	getReportUseCase          *report.GetReportUseCase
	latestReportUseCase       *report.LatestReportUseCase
	listDiscrepanciesUseCase  *report.ListDiscrepanciesUseCase
	discrepancySummaryUseCase *report.DiscrepancySummaryUseCase
	transactionStatusUseCase  *report.TransactionStatusUseCase
	currencyReportUseCase     *report.CurrencyReportUseCase
}

// NewReportController creates a new report controller instance.
func NewReportController(
	listReportsUseCase *report.ListReportsUseCase,
	getReportUseCase *report.GetReportUseCase,
	latestReportUseCase *report.LatestReportUseCase,
	listDiscrepanciesUseCase *report.ListDiscrepanciesUseCase,
	discrepancySummaryUseCase *report.DiscrepancySummaryUseCase,
	transactionStatusUseCase *report.TransactionStatusUseCase,
	currencyReportUseCase *report.CurrencyReportUseCase,
) *ReportController {
	return &ReportController{
		listReportsUseCase:        listReportsUseCase,
		getReportUseCase:          getReportUseCase,
		latestReportUseCase:       latestReportUseCase,
		listDiscrepanciesUseCase:  listDiscrepanciesUseCase,
		discrepancySummaryUseCase: discrepancySummaryUseCase,
		transactionStatusUseCase:  transactionStatusUseCase,
		currencyReportUseCase:     currencyReportUseCase,
	}
}

// ListReports handles GET /reconciliation/reports requests.
func (c *ReportController) ListReports(ctx *gin.Context) {
	reports, err := c.listReportsUseCase.Execute(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	reportDTOs := make([]dto.ReportDTO, len(reports))
	for i, r := range reports {
		reportDTOs[i] = dto.ToReportDTO(r)
	}

	ctx.JSON(http.StatusOK, reportDTOs)
}

// GetReport handles GET /reconciliation/reports/:id requests.
func (c *ReportController) GetReport(ctx *gin.Context) {
	reportID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid report ID",
		})
		return
	}

	output, err := c.getReportUseCase.Execute(ctx.Request.Context(), reportID)
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ReportDetailResponse{
		Report:        dto.ToReportDTO(output.Report),
		Discrepancies: dto.ToDiscrepancyDTOs(output.Discrepancies),
	})
}

// LatestReport handles GET /reconciliation/report requests, returning the
// newest report matching the optional date range bounds.
func (c *ReportController) LatestReport(ctx *gin.Context) {
	dateFrom, ok := parseDateQuery(ctx, "date_from")
	if !ok {
		return
	}
	dateTo, ok := parseDateQuery(ctx, "date_to")
	if !ok {
		return
	}

	latest, err := c.latestReportUseCase.Execute(ctx.Request.Context(), dateFrom, dateTo)
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReportDTO(latest))
}

// ListDiscrepancies handles GET /discrepancies requests.
func (c *ReportController) ListDiscrepancies(ctx *gin.Context) {
	filter := adapter.DiscrepancyFilter{}
	if typeStr := ctx.Query("type"); typeStr != "" {
		discrepancyType := entity.DiscrepancyType(typeStr)
		filter.Type = &discrepancyType
	}
	if processor := ctx.Query("processor"); processor != "" {
		filter.Processor = &processor
	}
	if severityStr := ctx.Query("severity"); severityStr != "" {
		severity := entity.Severity(severityStr)
		filter.Severity = &severity
	}
	if dateFrom, ok := parseDateQuery(ctx, "date_from"); ok {
		filter.DateFrom = dateFrom
	} else {
		return
	}
	if dateTo, ok := parseDateQuery(ctx, "date_to"); ok {
		filter.DateTo = dateTo
	} else {
		return
	}

	pagination := parsePagination(ctx)

	result, err := c.listDiscrepanciesUseCase.Execute(ctx.Request.Context(), filter, adapter.DiscrepancyPagination{
		Page:  pagination.Page,
		Limit: pagination.Limit,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.DiscrepancyListResponse{
		Discrepancies: dto.ToDiscrepancyDTOs(result.Discrepancies),
		Total:         result.Total,
		Page:          result.Page,
		Limit:         result.Limit,
	})
}

// DiscrepancySummary handles GET /discrepancies/summary requests.
func (c *ReportController) DiscrepancySummary(ctx *gin.Context) {
	output, err := c.discrepancySummaryUseCase.Execute(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.DiscrepancySummaryResponse{
		TotalCount:     output.TotalCount,
		ByType:         output.ByType,
		ByProcessor:    output.ByProcessor,
		BySeverity:     output.BySeverity,
		TotalImpactUSD: output.TotalImpactUSD.String(),
	})
}

// TransactionStatus handles GET /transactions/:id/status requests.
func (c *ReportController) TransactionStatus(ctx *gin.Context) {
	transactionID := ctx.Param("id")

	output, err := c.transactionStatusUseCase.Execute(ctx.Request.Context(), transactionID)
	if err != nil {
		handleReportError(ctx, err)
		return
	}

	settlements := make([]dto.SettlementEntryDTO, len(output.Settlements))
	for i, entry := range output.Settlements {
		settlements[i] = dto.ToSettlementEntryDTO(entry)
	}

	ctx.JSON(http.StatusOK, dto.TransactionStatusResponse{
		TransactionID:    transactionID,
		Transaction:      dto.ToTransactionDTO(output.Transaction),
		Settlements:      settlements,
		Discrepancies:    dto.ToDiscrepancyDTOs(output.Discrepancies),
		SettlementCount:  len(output.Settlements),
		DiscrepancyCount: len(output.Discrepancies),
	})
}

// handleReportError maps report lookup errors to HTTP responses.
func handleReportError(ctx *gin.Context, err error) {
	var reconciliationErr *domainerror.ReconciliationError
	if errors.As(err, &reconciliationErr) {
		statusCode := http.StatusInternalServerError
		switch reconciliationErr.Code {
		case domainerror.ErrCodeReportNotFound,
			domainerror.ErrCodeJobNotFound,
			domainerror.ErrCodeTransactionNotFound:
			statusCode = http.StatusNotFound
		case domainerror.ErrCodeInvalidDateRange:
			statusCode = http.StatusBadRequest
		}
		ctx.JSON(statusCode, dto.ErrorResponse{
			Error: reconciliationErr.Message,
			Code:  string(reconciliationErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}

// CurrencyReport handles GET /reports/currency requests.
func (c *ReportController) CurrencyReport(ctx *gin.Context) {
	output, err := c.currencyReportUseCase.Execute(ctx.Request.Context(), ctx.Query("target_currency"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	ctx.JSON(http.StatusOK, output)
}
