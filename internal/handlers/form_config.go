package handlers

import (
	"net/http"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type FormConfigHandler struct {
	configService *services.FormConfigService
}

func NewFormConfigHandler(configService *services.FormConfigService) *FormConfigHandler {
	return &FormConfigHandler{configService: configService}
}

// List returns active configurations; admins may pass all=true
// GET /api/v1/form-configs
func (h *FormConfigHandler) List(c *gin.Context) {
	activeOnly := !(actor(c).IsAdmin() && c.Query("all") == "true")
	configs, err := h.configService.List(activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, configs)
}

// GET /api/v1/form-configs/:id
func (h *FormConfigHandler) Get(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cfg)
}

// POST /api/v1/form-configs
func (h *FormConfigHandler) Create(c *gin.Context) {
	var cfg models.FormConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.configService.Create(c.Request.Context(), &cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, created)
}

// PUT /api/v1/form-configs/:id
func (h *FormConfigHandler) Update(c *gin.Context) {
	var cfg models.FormConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.configService.Update(c.Request.Context(), c.Param("id"), &cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

// DELETE /api/v1/form-configs/:id
func (h *FormConfigHandler) Delete(c *gin.Context) {
	if err := h.configService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Form configuration deleted successfully")
}
