package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
)

// RestReportHandler handles REST requests for financial stats and
// reporting.
type RestReportHandler struct {
	statsService  services.IStatsService
	reportService services.IReportService
}

// NewRestReportHandler creates a new RestReportHandler.
func NewRestReportHandler(statsService services.IStatsService, reportService services.IReportService) *RestReportHandler {
	return &RestReportHandler{statsService: statsService, reportService: reportService}
}

// GetStats handles GET /v1/mentorship/financial/stats
func (h *RestReportHandler) GetStats(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetFinancialStats(c.Request.Context(), mentorID)
	if err != nil {
		respondError(c, err, "Failed to compute financial stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetReport handles GET /v1/mentorship/financial/report
func (h *RestReportHandler) GetReport(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	var startDate, endDate *time.Time
	if start := c.Query("startDate"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}
		startDate = &t
	}
	if end := c.Query("endDate"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}
		endDate = &t
	}

	report, err := h.reportService.GetFinancialReport(c.Request.Context(), mentorID, startDate, endDate)
	if err != nil {
		respondError(c, err, "Failed to build financial report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// GetMonthlyRevenue handles GET /v1/mentorship/financial/report/monthly
func (h *RestReportHandler) GetMonthlyRevenue(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	months, err := h.reportService.GetMonthlyRevenue(c.Request.Context(), mentorID)
	if err != nil {
		respondError(c, err, "Failed to build monthly revenue")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": months})
}

// GetRevenueByPaymentType handles GET /v1/mentorship/financial/report/by-payment-type
func (h *RestReportHandler) GetRevenueByPaymentType(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	buckets, err := h.reportService.GetRevenueByPaymentType(c.Request.Context(), mentorID)
	if err != nil {
		respondError(c, err, "Failed to build revenue by payment type")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buckets})
}

// GetTopMentees handles GET /v1/mentorship/financial/report/top-mentees
func (h *RestReportHandler) GetTopMentees(c *gin.Context) {
	mentorID, ok := mentorFromContext(c)
	if !ok {
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	mentees, err := h.reportService.GetTopMenteesByRevenue(c.Request.Context(), mentorID, limit)
	if err != nil {
		respondError(c, err, "Failed to build top mentees")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": mentees})
}
