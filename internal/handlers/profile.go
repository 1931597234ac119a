package handlers

import (
	"net/http"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetAll returns every stored profile resource of the caller
// GET /api/v1/profile
func (h *ProfileHandler) GetAll(c *gin.Context) {
	resources, err := h.profileService.GetAll(actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, resources)
}

func resourceParam(c *gin.Context) (models.ProfileResource, bool) {
	resource := models.ProfileResource(c.Param("resource"))
	if !resource.Valid() {
		respondMessage(c, http.StatusNotFound, "unknown profile resource")
		return "", false
	}
	return resource, true
}

// GET /api/v1/profile/:resource
func (h *ProfileHandler) Get(c *gin.Context) {
	resource, ok := resourceParam(c)
	if !ok {
		return
	}
	data, err := h.profileService.Get(actor(c).ID, resource)
	if err != nil {
		respondError(c, err)
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	respond(c, http.StatusOK, data)
}

// Put replaces a profile resource
// PUT /api/v1/profile/:resource
func (h *ProfileHandler) Put(c *gin.Context) {
	resource, ok := resourceParam(c)
	if !ok {
		return
	}
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	record, err := h.profileService.Put(actor(c).ID, resource, data)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, record)
}
