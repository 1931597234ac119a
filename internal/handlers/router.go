package handlers

import (
	"FIN-COACH/internal/auth"
	"FIN-COACH/internal/models"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every API handler mounted by RegisterRoutes.
type Handlers struct {
	Auth        *AuthHandler
	FormConfigs *FormConfigHandler
	Submissions *SubmissionHandler
	Documents   *DocumentHandler
	Exports     *ExportHandler
	Profile     *ProfileHandler
	Coach       *CoachHandler
	Admin       *AdminHandler
	Statistics  *StatisticsHandler
	I18n        *I18nHandler
}

// RegisterRoutes mounts the /api/v1 routes on r.
func RegisterRoutes(r gin.IRouter, h *Handlers, jwtSecret string) {
	v1 := r.Group("/api/v1")

	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.GET("/i18n", h.I18n.Languages)
	v1.GET("/i18n/:lang", h.I18n.Table)

	authed := v1.Group("", auth.Middleware(jwtSecret))
	{
		authed.GET("/auth/me", h.Auth.Me)

		// Form configurations
		authed.GET("/form-configs", h.FormConfigs.List)
		authed.GET("/form-configs/:id", h.FormConfigs.Get)
		authed.GET("/form-configs/:id/submission", h.Submissions.Load)
		authed.GET("/form-configs/:id/form", h.Submissions.RenderNewForm)
		authed.POST("/form-configs/:id/form", h.Submissions.PostNewForm)

		// Submissions
		authed.GET("/submissions", h.Submissions.List)
		authed.POST("/submissions/draft", h.Submissions.SaveDraft)
		authed.POST("/submissions/submit", h.Submissions.Submit)
		authed.GET("/submissions/:id", h.Submissions.Get)
		authed.DELETE("/submissions/:id", h.Submissions.Delete)
		authed.GET("/submissions/:id/form", h.Submissions.RenderSubmissionForm)
		authed.POST("/submissions/:id/form", h.Submissions.PostSubmissionForm)

		// Supporting documents
		authed.POST("/submissions/:id/documents", h.Documents.Upload)
		authed.GET("/submissions/:id/documents", h.Documents.List)
		authed.GET("/submissions/:id/documents/:docId", h.Documents.Download)
		authed.GET("/submissions/:id/documents/:docId/url", h.Documents.SignedURL)
		authed.DELETE("/submissions/:id/documents/:docId", h.Documents.Delete)

		// PDF export
		authed.GET("/submissions/:id/export", h.Exports.Export)
		authed.GET("/submissions/:id/exports", h.Exports.List)
		authed.GET("/submissions/:id/exports/:exportId", h.Exports.Download)

		// Financial profile
		authed.GET("/profile", h.Profile.GetAll)
		authed.GET("/profile/:resource", h.Profile.Get)
		authed.PUT("/profile/:resource", h.Profile.Put)
	}

	coach := authed.Group("/coach", auth.RequireRole(models.RoleCoach, models.RoleAdmin))
	{
		coach.GET("/clients", h.Coach.Clients)
		coach.GET("/clients/:userId/submissions", h.Coach.ClientSubmissions)
	}

	admin := authed.Group("", auth.RequireRole(models.RoleAdmin))
	{
		admin.POST("/form-configs", h.FormConfigs.Create)
		admin.PUT("/form-configs/:id", h.FormConfigs.Update)
		admin.DELETE("/form-configs/:id", h.FormConfigs.Delete)

		admin.GET("/admin/users", h.Admin.ListUsers)
		admin.POST("/admin/users", h.Admin.CreateUser)
		admin.PATCH("/admin/users/:id", h.Admin.UpdateUser)
		admin.DELETE("/admin/users/:id", h.Admin.DeleteUser)
		admin.GET("/admin/logs", h.Admin.Logs)
		admin.GET("/admin/logs/:targetId", h.Admin.TargetLogs)
		admin.GET("/admin/stats", h.Statistics.GetAll)
		admin.GET("/admin/stats/forms/:id", h.Statistics.GetStatsByForm)
		admin.GET("/admin/stats/trends", h.Statistics.GetTrends)
		admin.GET("/admin/stats/trends/:eventType", h.Statistics.GetTimeSeries)
	}
}
