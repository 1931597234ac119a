package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload attaches a supporting document to a submitted submission
// POST /api/v1/submissions/:id/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxUploadSize+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), actor(c), services.UploadRequest{
		SubmissionID: c.Param("id"),
		DocumentID:   c.PostForm("document_id"),
		Filename:     header.Filename,
		Reader:       file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, doc)
}

// GET /api/v1/submissions/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documentService.List(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, docs)
}

// Download streams an uploaded document
// GET /api/v1/submissions/:id/documents/:docId
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, reader, err := h.documentService.Open(c.Request.Context(), actor(c), c.Param("id"), c.Param("docId"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("Content-Type", doc.MimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		fmt.Printf("Error streaming document %s: %v\n", doc.ID, err)
	}
}

// SignedURL returns a short-lived direct download link
// GET /api/v1/submissions/:id/documents/:docId/url
func (h *DocumentHandler) SignedURL(c *gin.Context) {
	signed, err := h.documentService.SignedURL(c.Request.Context(), actor(c), c.Param("id"), c.Param("docId"), 15*time.Minute)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"url": signed, "expires_in": 900})
}

// DELETE /api/v1/submissions/:id/documents/:docId
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documentService.Delete(c.Request.Context(), actor(c), c.Param("id"), c.Param("docId")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Document deleted successfully")
}
