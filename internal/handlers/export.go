package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export renders a submission to PDF and returns it as an attachment
// GET /api/v1/submissions/:id/export?lang=nl
func (h *ExportHandler) Export(c *gin.Context) {
	outcome, err := h.exportService.Export(c.Request.Context(), actor(c), c.Param("id"), c.Query("lang"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outcome.Record.Filename))
	c.Header("X-Page-Count", strconv.Itoa(outcome.Record.PageCount))
	if outcome.Record.ObjectName != "" {
		c.Header("X-Export-ID", outcome.Record.ID)
	}
	c.Data(http.StatusOK, "application/pdf", outcome.PDF)
}

// List returns the archived exports of a submission
// GET /api/v1/submissions/:id/exports
func (h *ExportHandler) List(c *gin.Context) {
	records, err := h.exportService.List(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, records)
}

// GET /api/v1/submissions/:id/exports/:exportId
func (h *ExportHandler) Download(c *gin.Context) {
	record, reader, err := h.exportService.Open(c.Request.Context(), actor(c), c.Param("id"), c.Param("exportId"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		fmt.Printf("Error streaming export %s: %v\n", record.ID, err)
	}
}
