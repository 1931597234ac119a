package handlers

import (
	"bytes"
	"net/http"

	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/models"
	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	configService     *services.FormConfigService
	bundle            *i18n.Bundle
}

func NewSubmissionHandler(submissionService *services.SubmissionService, configService *services.FormConfigService, bundle *i18n.Bundle) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		configService:     configService,
		bundle:            bundle,
	}
}

// Load returns the current draft or a new prefilled submission
// GET /api/v1/form-configs/:id/submission
func (h *SubmissionHandler) Load(c *gin.Context) {
	sub, cfg, err := h.submissionService.Load(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"submission": sub, "form_config": cfg})
}

// List returns the caller's own submissions
// GET /api/v1/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	a := actor(c)
	subs, err := h.submissionService.ListForUser(c.Request.Context(), a, a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, subs)
}

// GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, err := h.submissionService.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, sub)
}

// SaveDraft creates or updates a draft
// POST /api/v1/submissions/draft
func (h *SubmissionHandler) SaveDraft(c *gin.Context) {
	var req services.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := h.submissionService.SaveDraft(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, sub)
}

// POST /api/v1/submissions/submit
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req services.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.submissionService.Submit(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// DELETE /api/v1/submissions/:id
func (h *SubmissionHandler) Delete(c *gin.Context) {
	if err := h.submissionService.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Draft deleted successfully")
}

// RenderSubmissionForm renders an existing submission as an HTML form,
// read-only once submitted
// GET /api/v1/submissions/:id/form
func (h *SubmissionHandler) RenderSubmissionForm(c *gin.Context) {
	ctx := c.Request.Context()
	sub, err := h.submissionService.Get(ctx, actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	cfg, err := h.configService.Get(ctx, sub.FormConfigID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderPage(c, http.StatusOK, cfg, sub, "/api/v1/submissions/"+sub.ID+"/form")
}

// RenderNewForm renders the form of a configuration with the caller's
// draft or prefilled data
// GET /api/v1/form-configs/:id/form
func (h *SubmissionHandler) RenderNewForm(c *gin.Context) {
	sub, cfg, err := h.submissionService.Load(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderPage(c, http.StatusOK, cfg, sub, "/api/v1/form-configs/"+cfg.ID+"/form")
}

func (h *SubmissionHandler) renderPage(c *gin.Context, status int, cfg *models.FormConfiguration, sub *models.FormSubmission, action string) {
	lang := language(c, h.bundle)
	var buf bytes.Buffer
	err := forms.RenderForm(&buf, cfg, map[string]interface{}(sub.FormData), forms.FormOptions{
		T:        h.bundle.For(lang),
		Language: lang,
		Action:   action,
		ReadOnly: sub.IsSubmitted(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// PostSubmissionForm merges posted form fields into a submission and saves
// or submits it depending on the "action" field
// POST /api/v1/submissions/:id/form
func (h *SubmissionHandler) PostSubmissionForm(c *gin.Context) {
	sub, err := h.submissionService.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.postForm(c, sub)
}

// POST /api/v1/form-configs/:id/form
func (h *SubmissionHandler) PostNewForm(c *gin.Context) {
	sub, _, err := h.submissionService.Load(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.postForm(c, sub)
}

func (h *SubmissionHandler) postForm(c *gin.Context, sub *models.FormSubmission) {
	ctx := c.Request.Context()
	if sub.IsSubmitted() {
		respondError(c, services.ErrSubmissionLocked)
		return
	}
	cfg, err := h.configService.Get(ctx, sub.FormConfigID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid form body")
		return
	}

	data, err := forms.ApplyEdits(cfg, map[string]interface{}(sub.FormData), c.Request.PostForm)
	if err != nil {
		respondError(c, err)
		return
	}

	req := services.SaveRequest{ID: sub.ID, FormConfigID: cfg.ID, FormData: data}
	a := actor(c)
	if c.PostForm("action") == "submit" {
		result, err := h.submissionService.Submit(ctx, a, req)
		if err != nil {
			respondError(c, err)
			return
		}
		sub = result.Submission
	} else {
		sub, err = h.submissionService.SaveDraft(ctx, a, req)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/api/v1/submissions/"+sub.ID+"/form")
}
