package handler

import (
	"github.com/gin-gonic/gin"

	"fiscos/internal/service"
)

// RecordHandler handles record history endpoints.
type RecordHandler struct {
	recordService service.RecordService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordService service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// List handles GET /api/v1/records
func (h *RecordHandler) List(c *gin.Context) {
	records, err := h.recordService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// Clear handles DELETE /api/v1/records. It destructively resets the store.
func (h *RecordHandler) Clear(c *gin.Context) {
	if err := h.recordService.Clear(c.Request.Context()); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"cleared": true})
}
