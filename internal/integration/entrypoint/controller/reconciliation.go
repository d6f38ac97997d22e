package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/reconciliation"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/dto"
)

// ReconciliationController handles reconciliation run endpoints.
type ReconciliationController struct {
	runUseCase          *reconciliation.RunReconciliationUseCase
	submitJobUseCase    *reconciliation.SubmitJobUseCase
	getJobStatusUseCase *reconciliation.GetJobStatusUseCase
	listJobsUseCase     *reconciliation.ListJobsUseCase
}

// NewReconciliationController creates a new reconciliation controller instance.
func NewReconciliationController(
	runUseCase *reconciliation.RunReconciliationUseCase,
	submitJobUseCase *reconciliation.SubmitJobUseCase,
	getJobStatusUseCase *reconciliation.GetJobStatusUseCase,
	listJobsUseCase *reconciliation.ListJobsUseCase,
) *ReconciliationController {
	return &ReconciliationController{
		runUseCase:          runUseCase,
		submitJobUseCase:    submitJobUseCase,
		getJobStatusUseCase: getJobStatusUseCase,
		listJobsUseCase:     listJobsUseCase,
	}
}

// Run handles POST /reconciliation/run requests. The run executes
// synchronously and returns the completed report.
func (c *ReconciliationController) Run(ctx *gin.Context) {
	input, ok := c.parseRunRequest(ctx)
	if !ok {
		return
	}

	report, err := c.runUseCase.Execute(ctx.Request.Context(), *input)
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReportDTO(report))
}

// RunAsync handles POST /reconciliation/run-async requests. The run executes
// in the background; the response carries a job ID for polling.
func (c *ReconciliationController) RunAsync(ctx *gin.Context) {
	input, ok := c.parseRunRequest(ctx)
	if !ok {
		return
	}

	output, err := c.submitJobUseCase.Execute(ctx.Request.Context(), reconciliation.SubmitJobInput{
		DateFrom:   input.DateFrom,
		DateTo:     input.DateTo,
		Processors: input.Processors,
	})
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SubmitJobResponse{
		JobID:   output.JobID,
		Status:  output.Status,
		Message: output.Message,
	})
}

// ListJobs handles GET /reconciliation/jobs requests.
func (c *ReconciliationController) ListJobs(ctx *gin.Context) {
	jobs, err := c.listJobsUseCase.Execute(ctx.Request.Context())
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	jobDTOs := make([]dto.JobDTO, len(jobs))
	for i, job := range jobs {
		jobDTOs[i] = dto.ToJobDTO(job)
	}

	ctx.JSON(http.StatusOK, dto.JobListResponse{Jobs: jobDTOs})
}

// GetJob handles GET /reconciliation/jobs/:id requests.
func (c *ReconciliationController) GetJob(ctx *gin.Context) {
	job, err := c.getJobStatusUseCase.Execute(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.handleReconciliationError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToJobDTO(job))
}

// parseRunRequest validates the shared run request body. On failure it
// writes the error response and returns ok=false.
func (c *ReconciliationController) parseRunRequest(ctx *gin.Context) (*reconciliation.RunReconciliationInput, bool) {
	var request dto.RunReconciliationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return nil, false
	}

	dateFrom, err := time.Parse("2006-01-02", request.DateFrom)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid date_from format: " + request.DateFrom,
		})
		return nil, false
	}
	dateTo, err := time.Parse("2006-01-02", request.DateTo)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid date_to format: " + request.DateTo,
		})
		return nil, false
	}

	return &reconciliation.RunReconciliationInput{
		DateFrom:   dateFrom,
		DateTo:     dateTo,
		Processors: request.Processors,
	}, true
}

// handleReconciliationError maps reconciliation errors to HTTP responses.
func (c *ReconciliationController) handleReconciliationError(ctx *gin.Context, err error) {
	var reconciliationErr *domainerror.ReconciliationError
	if errors.As(err, &reconciliationErr) {
		statusCode := c.getStatusCodeForReconciliationError(reconciliationErr.Code)
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

// getStatusCodeForReconciliationError maps error codes to HTTP status codes.
func (c *ReconciliationController) getStatusCodeForReconciliationError(code domainerror.ReconciliationErrorCode) int {
	switch code {
	case domainerror.ErrCodeInvalidDateRange:
		return http.StatusBadRequest
	case domainerror.ErrCodeReportNotFound,
		domainerror.ErrCodeJobNotFound,
		domainerror.ErrCodeTransactionNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
