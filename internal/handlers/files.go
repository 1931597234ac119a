package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"FIN-COACH/internal/storage"

	"github.com/gin-gonic/gin"
)

// ServeSignedFiles serves objects of a local storage client behind signed
// URLs. Mount it on GET /files/*filepath.
func ServeSignedFiles(store *storage.LocalStorageClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		filePath := strings.TrimPrefix(c.Param("filepath"), "/")
		if filePath == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file path required"})
			return
		}
		cleanPath := filepath.ToSlash(filepath.Clean(filePath))
		if strings.Contains(cleanPath, "..") {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid file path"})
			return
		}

		expiresStr := c.Query("expires")
		signature := c.Query("signature")
		if signature == "" || expiresStr == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "signed URL required"})
			return
		}
		expiresAt, err := strconv.ParseInt(expiresStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expires parameter"})
			return
		}
		if !store.VerifySignedURL(cleanPath, expiresAt, signature) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired signature"})
			return
		}

		reader, err := store.ReadFile(c.Request.Context(), cleanPath)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		defer reader.Close()

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(cleanPath)))
		c.Header("Content-Type", "application/octet-stream")
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, reader); err != nil {
			fmt.Printf("Error streaming file %s: %v\n", cleanPath, err)
		}
	}
}
