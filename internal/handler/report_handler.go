package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// ReportHandler serves admin dashboard reports.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CatalogReport handles GET /v1/admin/reports/catalog
func (h *ReportHandler) CatalogReport(c *gin.Context) {
	report, err := h.reportService.CatalogReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Catalog report retrieved", report)
}
