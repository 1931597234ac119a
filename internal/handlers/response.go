package handlers

import (
	"errors"
	"log"
	"net/http"

	"FIN-COACH/internal/auth"
	"FIN-COACH/internal/export"
	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: status < 400, Message: message})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *forms.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, Response{Message: "invalid form data", Data: verr.Problems})
	case errors.Is(err, services.ErrConfigNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrExportNotFound),
		errors.Is(err, services.ErrUserNotFound):
		respondMessage(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSubmissionLocked), errors.Is(err, services.ErrEmailTaken):
		respondMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondMessage(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, export.ErrEngine):
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondMessage(c, http.StatusBadGateway, "PDF generation failed, please try again later")
	default:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondMessage(c, http.StatusInternalServerError, "internal server error")
	}
}

func actor(c *gin.Context) services.Actor {
	claims := auth.GetClaims(c)
	if claims == nil {
		return services.Actor{}
	}
	return services.Actor{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
}

// language picks the ?lang query parameter, then Accept-Language.
func language(c *gin.Context, bundle *i18n.Bundle) string {
	if lang := c.Query("lang"); lang != "" {
		return bundle.Resolve(lang)
	}
	return bundle.Resolve(c.GetHeader("Accept-Language"))
}
