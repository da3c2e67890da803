package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fiscos/internal/csvexport"
	"fiscos/internal/service"
)

// ReportHandler handles report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Summary handles GET /api/v1/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}

// Issuers handles GET /api/v1/reports/issuers
func (h *ReportHandler) Issuers(c *gin.Context) {
	limit := 0
	if topStr := c.Query("top"); topStr != "" {
		n, err := strconv.Atoi(topStr)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid 'top': must be a non-negative integer")
			return
		}
		limit = n
	}

	rows, err := h.reportService.TopIssuers(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rows)
}

// ExportCSV handles GET /api/v1/reports/export.csv
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reportService.ExportCSV(c.Request.Context(), &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("fiscal_records", "csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/reports/export.xlsx
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	data, err := h.reportService.ExportXLSX(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("fiscal_records", "xlsx")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Narrative handles GET /api/v1/reports/narrative
func (h *ReportHandler) Narrative(c *gin.Context) {
	text, err := h.reportService.Narrative(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"narrative": text})
}
