package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/juandarn/fleximarket-reconciler/internal/application/usecase/fees"
	"github.com/juandarn/fleximarket-reconciler/internal/integration/entrypoint/dto"
)

// FeeController handles fee analysis endpoints.
type FeeController struct {
	analyzeFeesUseCase *fees.AnalyzeFeesUseCase
	defaultThreshold   float64
}

// NewFeeController creates a new fee controller instance.
func NewFeeController(analyzeFeesUseCase *fees.AnalyzeFeesUseCase, defaultThreshold float64) *FeeController {
	return &FeeController{
		analyzeFeesUseCase: analyzeFeesUseCase,
		defaultThreshold:   defaultThreshold,
	}
}

// Patterns handles GET /fees/patterns requests. Returns per-processor,
// per-currency fee statistics over all eligible settlement entries.
func (c *FeeController) Patterns(ctx *gin.Context) {
	patterns, err := c.analyzeFeesUseCase.AnalyzeFeePatterns(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"fee_patterns": patterns})
}

// Unusual handles GET /fees/unusual requests. The threshold query parameter
// overrides the configured standard-deviation cutoff.
func (c *FeeController) Unusual(ctx *gin.Context) {
	threshold := c.defaultThreshold
	if thresholdStr := ctx.Query("threshold"); thresholdStr != "" {
		parsed, err := strconv.ParseFloat(thresholdStr, 64)
		if err != nil || parsed <= 0 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid threshold: " + thresholdStr,
			})
			return
		}
		threshold = parsed
	}

	unusual, err := c.analyzeFeesUseCase.DetectUnusualFees(ctx.Request.Context(), threshold)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"threshold_std_devs": threshold,
		"unusual_fees":       unusual,
	})
}

// Report handles GET /fees/report requests, combining patterns and
// anomalies in one payload.
func (c *FeeController) Report(ctx *gin.Context) {
	feeReport, err := c.analyzeFeesUseCase.GetFeeReport(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "An internal error occurred",
		})
		return
	}

	ctx.JSON(http.StatusOK, feeReport)
}
