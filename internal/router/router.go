package router

import (
	"github.com/gin-gonic/gin"

	"fiscos/internal/handler"
	"fiscos/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	auditH *handler.AuditHandler,
	recordH *handler.RecordHandler,
	reportH *handler.ReportHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	v1.POST("/audit", auditH.ProcessBatch)
	v1.GET("/audit/:batchID/files/:name", auditH.ArchivedDocument)

	records := v1.Group("/records")
	records.GET("", recordH.List)
	records.DELETE("", recordH.Clear)

	reports := v1.Group("/reports")
	reports.GET("/summary", reportH.Summary)
	reports.GET("/issuers", reportH.Issuers)
	reports.GET("/export.csv", reportH.ExportCSV)
	reports.GET("/export.xlsx", reportH.ExportXLSX)
	reports.GET("/narrative", reportH.Narrative)

	return r
}
