package handlers

import (
	"net/http"

	"FIN-COACH/internal/i18n"

	"github.com/gin-gonic/gin"
)

type I18nHandler struct {
	bundle *i18n.Bundle
}

func NewI18nHandler(bundle *i18n.Bundle) *I18nHandler {
	return &I18nHandler{bundle: bundle}
}

// Languages lists the supported languages
// GET /api/v1/i18n
func (h *I18nHandler) Languages(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"languages": h.bundle.Languages(),
		"default":   h.bundle.DefaultLanguage(),
	})
}

// Table returns the translation table of a language
// GET /api/v1/i18n/:lang
func (h *I18nHandler) Table(c *gin.Context) {
	table, ok := h.bundle.Table(c.Param("lang"))
	if !ok {
		respondMessage(c, http.StatusNotFound, "unsupported language")
		return
	}
	respond(c, http.StatusOK, table)
}
