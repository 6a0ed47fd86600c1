package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskdesk/internal/errors"
	"github.com/yukikurage/taskdesk/internal/services"
)

// AnalyticsHandler serves dashboard and report statistics.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Dashboard returns status counts and the completion percentage
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.Dashboard()
	if err != nil {
		apierrors.InternalError(c, "Failed to compute dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// Performance returns the per-status breakdown
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	report, err := h.analyticsService.Performance()
	if err != nil {
		apierrors.InternalError(c, "Failed to compute performance report")
		return
	}

	c.JSON(http.StatusOK, report)
}
