package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timekeep/internal/repository"
	"timekeep/internal/service"
)

type AnalyticsHandler struct {
	reports *service.ReportService
	logger  *zap.Logger
}

func NewAnalyticsHandler(reports *service.ReportService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{reports: reports, logger: logger}
}

// Report returns the workspace analytics report. Optional query parameters
// narrow it to one customer, project, assignment or deliverable.
func (h *AnalyticsHandler) Report(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	report, err := h.reports.Report(c.Request.Context(), currentUserID(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) parseFilter(c *gin.Context) (repository.FactFilter, bool) {
	var filter repository.FactFilter
	for name, target := range map[string]*int{
		"customer_id":    &filter.CustomerID,
		"project_id":     &filter.ProjectID,
		"assignment_id":  &filter.AssignmentID,
		"deliverable_id": &filter.DeliverableID,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
			return filter, false
		}
		*target = id
	}
	return filter, true
}
