package handlers

import (
	"net/http"
	"strconv"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	authService     *services.AuthService
	activityService *services.ActivityLogService
}

func NewAdminHandler(authService *services.AuthService, activityService *services.ActivityLogService) *AdminHandler {
	return &AdminHandler{authService: authService, activityService: activityService}
}

type createUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Name     string      `json:"name" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
}

// ListUsers returns all users, optionally filtered by ?role=
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(models.Role(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.authService.CreateUser(req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// UpdateUser changes role, coach assignment, name or language
// PATCH /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var update services.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.authService.UpdateUser(c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if c.Param("id") == actor(c).ID {
		respondMessage(c, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := h.authService.DeleteUser(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "User deleted successfully")
}

// Logs returns the activity log, newest first
// GET /api/v1/admin/logs?action=submitted&limit=50&offset=0
func (h *AdminHandler) Logs(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	var (
		logs  []models.ActivityLog
		total int64
		err   error
	)
	if action := c.Query("action"); action != "" {
		logs, total, err = h.activityService.GetLogsByAction(action, limit, offset)
	} else {
		logs, total, err = h.activityService.GetAllLogs(limit, offset)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"logs": logs, "total": total, "limit": limit, "offset": offset})
}

// TargetLogs returns the history of one submission or user
// GET /api/v1/admin/logs/:targetId
func (h *AdminHandler) TargetLogs(c *gin.Context) {
	logs, err := h.activityService.GetLogsByTarget(c.Param("targetId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, logs)
}
