package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/juandarn/fleximarket-reconciler/internal/application/adapter"
	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/settlement"
	domainerror "github.com/juandarn/fleximarket-reconciler/internal/domain/error"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/dto"
)

// SettlementController handles settlement ingestion and query endpoints.
type SettlementController struct {
	uploadUseCase           *settlement.UploadSettlementFileUseCase
	loadTransactionsUseCase *settlement.LoadTransactionsUseCase
	listUseCase             *settlement.ListSettlementsUseCase
}

// NewSettlementController creates a new settlement controller instance.
func NewSettlementController(
	uploadUseCase *settlement.UploadSettlementFileUseCase,
	loadTransactionsUseCase *settlement.LoadTransactionsUseCase,
	listUseCase *settlement.ListSettlementsUseCase,
) *SettlementController {
	return &SettlementController{
		uploadUseCase:           uploadUseCase,
		loadTransactionsUseCase: loadTransactionsUseCase,
		listUseCase:             listUseCase,
	}
}

// Upload handles POST /settlement/upload requests.
// The processor is passed as a query parameter; the settlement file as
// multipart form data under "file".
func (c *SettlementController) Upload(ctx *gin.Context) {
	processor := ctx.Query("processor")
	if processor == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Missing required query parameter: processor",
		})
		return
	}

	filename, content, ok := c.readUploadedFile(ctx)
	if !ok {
		return
	}

	output, err := c.uploadUseCase.Execute(ctx.Request.Context(), settlement.UploadSettlementFileInput{
		Processor: processor,
		Filename:  filename,
		Content:   content,
	})
	if err != nil {
		c.handleSettlementError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UploadResponse{
		Status:           output.Status,
		Message:          output.Message,
		EntriesProcessed: output.EntriesProcessed,
		EntriesSaved:     output.EntriesSaved,
		EntriesSkipped:   output.EntriesSkipped,
		Errors:           output.Errors,
	})
}

// LoadTransactions handles POST /settlement/load-transactions requests.
// Expects a multipart file containing a JSON array of expected transactions.
func (c *SettlementController) LoadTransactions(ctx *gin.Context) {
	_, content, ok := c.readUploadedFile(ctx)
	if !ok {
		return
	}

	output, err := c.loadTransactionsUseCase.Execute(ctx.Request.Context(), content)
	if err != nil {
		c.handleSettlementError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.LoadTransactionsResponse{
		Status:  output.Status,
		Saved:   output.Saved,
		Skipped: output.Skipped,
		Errors:  output.Errors,
	})
}

// ListEntries handles GET /settlement/entries requests.
func (c *SettlementController) ListEntries(ctx *gin.Context) {
	filter := adapter.SettlementFilter{}
	if processor := ctx.Query("processor"); processor != "" {
		filter.Processor = &processor
	}
	if currency := ctx.Query("currency"); currency != "" {
		filter.Currency = &currency
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

	result, err := c.listUseCase.Execute(ctx.Request.Context(), filter, adapter.SettlementPagination{
		Page:  pagination.Page,
		Limit: pagination.Limit,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	entries := make([]dto.SettlementEntryDTO, len(result.Entries))
	for i, entry := range result.Entries {
		entries[i] = dto.ToSettlementEntryDTO(entry)
	}

	ctx.JSON(http.StatusOK, dto.SettlementListResponse{
		Entries: entries,
		Total:   result.Total,
		Page:    result.Page,
		Limit:   result.Limit,
	})
}

// readUploadedFile extracts the multipart "file" field. On failure it writes
// the error response and returns ok=false.
func (c *SettlementController) readUploadedFile(ctx *gin.Context) (string, []byte, bool) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Missing uploaded file",
		})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Failed to open uploaded file",
		})
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Failed to read uploaded file",
		})
		return "", nil, false
	}

	return fileHeader.Filename, content, true
}

// handleSettlementError maps ingestion errors to HTTP responses.
func (c *SettlementController) handleSettlementError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domainerror.ErrEmptyFile),
		errors.Is(err, domainerror.ErrUnknownProcessor):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Failed to process uploaded file",
			Details: err.Error(),
		})
	}
}

type paginationParams struct {
	Page  int
	Limit int
}

// parsePagination reads page/limit query parameters with the API defaults
// (page 1, limit 50, cap 500).
func parsePagination(ctx *gin.Context) paginationParams {
	page := 1
	limit := 50
	if pageStr := ctx.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}
	return paginationParams{Page: page, Limit: limit}
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. On a malformed
// value it writes a 400 response and returns ok=false.
func parseDateQuery(ctx *gin.Context, name string) (*time.Time, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid " + name + " format: " + raw,
		})
		return nil, false
	}
	return &parsed, true
}
