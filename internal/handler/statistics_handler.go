package handler

import (
	"net/http"
	"time"

	"procurement-portal/internal/middleware"
	"procurement-portal/internal/service"
	"procurement-portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", middleware.RequirePermission("dashboard.read"), h.GetDashboard)

	// Status counts are public so the portal landing page can render them
	router.GET("/summary", h.GetPublicSummary)
}

// GetDashboard handles GET /dashboard bounded by an optional date range
// @Summary      Get dashboard statistics
// @Description  Status counts, spending per program, allocation utilization and monthly spending bounded by time
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        start_date query string false "Start Date (RFC3339)"
// @Param        end_date   query string false "End Date (RFC3339)"
// @Success      200 {object} response.Response{data=service.DashboardResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      500 {object} response.Response
// @Router       /dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	startDateStr := c.Query("start_date")
	endDateStr := c.Query("end_date")

	var startDate, endDate time.Time
	var err error

	// Default to current fiscal month if no dates are provided
	now := time.Now()
	if startDateStr == "" {
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		startDate, err = time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error("invalid start_date format, expected RFC3339"))
			return
		}
	}

	if endDateStr == "" {
		endDate = now
	} else {
		endDate, err = time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error("invalid end_date format, expected RFC3339"))
			return
		}
	}

	stats, err := h.statisticsService.GetDashboard(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(stats))
}

// GetPublicSummary handles GET /summary without authentication
// @Summary      Get public status summary
// @Description  Count of procurement requests per lifecycle status
// @Tags         statistics
// @Produce      json
// @Success      200 {object} response.Response{data=[]service.StatusCount}
// @Failure      500 {object} response.Response
// @Router       /summary [get]
func (h *StatisticsHandler) GetPublicSummary(c *gin.Context) {
	summary, err := h.statisticsService.GetPublicSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(summary))
}
