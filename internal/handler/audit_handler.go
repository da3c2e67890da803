package handler

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fiscos/internal/generator"
	"fiscos/internal/service"
)

// AuditHandler handles batch audit endpoints.
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ProcessBatch handles POST /api/v1/audit. It accepts a multipart form with
// one or more "files" parts and returns the batch outcome: records appended
// plus per-document failures.
func (h *AuditHandler) ProcessBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form required")
		return
	}

	headers := form.File["files"]
	files := make([]service.BatchFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readMultipartFile(fh)
		if err != nil {
			log.Printf("auditHandler.ProcessBatch: reading %s: %v", fh.Filename, err)
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read uploaded file "+fh.Filename)
			return
		}
		files = append(files, service.BatchFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	result, err := h.auditService.ProcessBatch(c.Request.Context(), files)
	if err != nil {
		var rlErr *generator.RateLimitError
		if errors.As(err, &rlErr) {
			c.Header("Retry-After", rlErr.RetryAfter.String())
			RespondError(c, http.StatusServiceUnavailable, "GENERATOR_RATE_LIMITED", "generation service rate limited")
			return
		}
		HandleError(c, err)
		return
	}

	RespondCreated(c, result)
}

// ArchivedDocument handles GET /api/v1/audit/:batchID/files/:name. It
// streams back the original document archived while processing the batch.
func (h *AuditHandler) ArchivedDocument(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid batch id")
		return
	}

	name := c.Param("name")
	data, err := h.auditService.ArchivedDocument(c.Request.Context(), batchID, name)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
