package handlers

import (
	"net/http"

	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type CoachHandler struct {
	submissionService *services.SubmissionService
}

func NewCoachHandler(submissionService *services.SubmissionService) *CoachHandler {
	return &CoachHandler{submissionService: submissionService}
}

// Clients lists the coach's clients with their progress
// GET /api/v1/coach/clients
func (h *CoachHandler) Clients(c *gin.Context) {
	clients, err := h.submissionService.Clients(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, clients)
}

// GET /api/v1/coach/clients/:userId/submissions
func (h *CoachHandler) ClientSubmissions(c *gin.Context) {
	subs, err := h.submissionService.ListForUser(c.Request.Context(), actor(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, subs)
}
