package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FIN-COACH/internal"
	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Next steps returned after a successful submit.
const (
	NextStepDocuments = "documents"
	NextStepForms     = "forms"
)

type SubmissionService struct {
	configs  *FormConfigService
	profiles *ProfileService
	activity *ActivityLogService
}

func NewSubmissionService(configs *FormConfigService, profiles *ProfileService, activity *ActivityLogService) *SubmissionService {
	return &SubmissionService{
		configs:  configs,
		profiles: profiles,
		activity: activity,
	}
}

type SaveRequest struct {
	ID           string                 `json:"id"`
	FormConfigID string                 `json:"form_config_id"`
	FormData     map[string]interface{} `json:"form_data"`
}

type SubmitResult struct {
	Submission *models.FormSubmission `json:"submission"`
	NextStep   string                 `json:"next_step"`
}

// ClientProgress summarizes the submissions of one client for a coach.
type ClientProgress struct {
	User      models.User `json:"user"`
	Drafts    int64       `json:"drafts"`
	Submitted int64       `json:"submitted"`
}

// authorize allows admins everywhere, owners on their own data and coaches
// on the data of their assigned clients.
func authorize(actor Actor, ownerID string) error {
	if actor.IsAdmin() || actor.ID == ownerID {
		return nil
	}
	if actor.Role != models.RoleCoach {
		return ErrForbidden
	}
	owner, err := findUser(ownerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}
	if owner.CoachID != actor.ID {
		return ErrForbidden
	}
	return nil
}

func findSubmission(id string) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	if err := internal.DB.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	return &sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, actor Actor, id string) (*models.FormSubmission, error) {
	sub, err := findSubmission(id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, sub.UserID); err != nil {
		return nil, err
	}
	return sub, nil
}

// Load returns the user's latest draft of the configuration. Without one it
// returns an unsaved submission with an empty id; clients get it prefilled
// from their profile.
func (s *SubmissionService) Load(ctx context.Context, actor Actor, configID string) (*models.FormSubmission, *models.FormConfiguration, error) {
	cfg, err := s.configs.Get(ctx, configID)
	if err != nil {
		return nil, nil, err
	}

	draft, err := s.latestDraft(actor.ID, configID)
	if err != nil {
		return nil, nil, err
	}
	if draft != nil {
		return draft, cfg, nil
	}

	data := map[string]interface{}{}
	if actor.Role == models.RoleClient {
		data = s.profiles.Prefill(ctx, cfg, actor.ID)
	}
	return &models.FormSubmission{
		FormConfigID: cfg.ID,
		UserID:       actor.ID,
		FormData:     datatypes.JSONMap(data),
		Status:       models.StatusDraft,
	}, cfg, nil
}

func (s *SubmissionService) latestDraft(userID, configID string) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	err := internal.DB.
		Where("user_id = ? AND form_config_id = ? AND status = ?", userID, configID, models.StatusDraft).
		Order("updated_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return &sub, nil
}

// resolve finds the submission a save applies to: the one named by id, or
// the actor's open draft of the configuration, or nil for a new one.
func (s *SubmissionService) resolve(ctx context.Context, actor Actor, req SaveRequest) (*models.FormSubmission, *models.FormConfiguration, error) {
	var existing *models.FormSubmission
	if req.ID != "" {
		sub, err := s.Get(ctx, actor, req.ID)
		if err != nil {
			return nil, nil, err
		}
		if req.FormConfigID != "" && req.FormConfigID != sub.FormConfigID {
			return nil, nil, fmt.Errorf("%w: submission belongs to another form", ErrInvalidInput)
		}
		existing = sub
		req.FormConfigID = sub.FormConfigID
	}
	if req.FormConfigID == "" {
		return nil, nil, fmt.Errorf("%w: form_config_id is required", ErrInvalidInput)
	}

	cfg, err := s.configs.Get(ctx, req.FormConfigID)
	if err != nil {
		return nil, nil, err
	}

	if existing == nil {
		existing, err = s.latestDraft(actor.ID, cfg.ID)
		if err != nil {
			return nil, nil, err
		}
	}
	if existing != nil && existing.IsSubmitted() {
		return nil, nil, ErrSubmissionLocked
	}
	return existing, cfg, nil
}

// SaveDraft creates or updates a draft. Saving the same data twice updates
// the same record. Last writer wins.
func (s *SubmissionService) SaveDraft(ctx context.Context, actor Actor, req SaveRequest) (*models.FormSubmission, error) {
	existing, cfg, err := s.resolve(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	if err := forms.ValidatePayload(cfg, req.FormData); err != nil {
		return nil, err
	}

	sub, err := s.persist(actor, existing, cfg, req.FormData, models.StatusDraft)
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, ActionDraftSaved, sub.ID, cfg.ID)
	return sub, nil
}

// Submit validates the data completely and moves the submission to its
// terminal state. Nothing is saved when validation fails.
func (s *SubmissionService) Submit(ctx context.Context, actor Actor, req SaveRequest) (*SubmitResult, error) {
	existing, cfg, err := s.resolve(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	if err := forms.ValidatePayload(cfg, req.FormData); err != nil {
		return nil, err
	}
	if missing := forms.MissingRequired(cfg, req.FormData); len(missing) > 0 {
		verr := &forms.ValidationError{}
		for _, path := range missing {
			verr.Problems = append(verr.Problems, forms.FieldProblem{Path: path, Message: "is required"})
		}
		return nil, verr
	}

	sub, err := s.persist(actor, existing, cfg, req.FormData, models.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, ActionSubmitted, sub.ID, cfg.ID)

	next := NextStepForms
	if len(cfg.Documents) > 0 {
		next = NextStepDocuments
	}
	return &SubmitResult{Submission: sub, NextStep: next}, nil
}

func (s *SubmissionService) persist(actor Actor, existing *models.FormSubmission, cfg *models.FormConfiguration, data map[string]interface{}, status models.SubmissionStatus) (*models.FormSubmission, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	now := time.Now()

	sub := existing
	if sub == nil {
		sub = &models.FormSubmission{
			ID:           uuid.New().String(),
			FormConfigID: cfg.ID,
			UserID:       actor.ID,
			CreatedAt:    now,
		}
	}
	sub.FormData = datatypes.JSONMap(data)
	sub.Status = status
	sub.UpdatedAt = now
	if status == models.StatusSubmitted {
		sub.SubmittedAt = &now
	}

	err := internal.DB.Transaction(func(tx *gorm.DB) error {
		if existing == nil {
			return tx.Create(sub).Error
		}
		// Guard against a concurrent submit between resolve and save.
		result := tx.Model(&models.FormSubmission{}).
			Where("id = ? AND status = ?", sub.ID, models.StatusDraft).
			Updates(map[string]interface{}{
				"form_data":    sub.FormData,
				"status":       sub.Status,
				"updated_at":   sub.UpdatedAt,
				"submitted_at": sub.SubmittedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubmissionLocked
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSubmissionLocked) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}
	return sub, nil
}

// ListForUser lists the submissions of userID, newest first.
func (s *SubmissionService) ListForUser(ctx context.Context, actor Actor, userID string) ([]models.FormSubmission, error) {
	if err := authorize(actor, userID); err != nil {
		return nil, err
	}
	var subs []models.FormSubmission
	if err := internal.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// Delete discards a draft. Submitted data is kept.
func (s *SubmissionService) Delete(ctx context.Context, actor Actor, id string) error {
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if sub.IsSubmitted() {
		return ErrSubmissionLocked
	}
	if !actor.IsAdmin() && actor.ID != sub.UserID {
		return ErrForbidden
	}
	if err := internal.DB.Delete(&models.FormSubmission{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

// Clients lists the clients visible to a coach, or every client for admins,
// with their draft and submitted counts.
func (s *SubmissionService) Clients(ctx context.Context, actor Actor) ([]ClientProgress, error) {
	query := internal.DB.Where("role = ?", models.RoleClient).Order("name ASC")
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleCoach:
		query = query.Where("coach_id = ?", actor.ID)
	default:
		return nil, ErrForbidden
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	out := make([]ClientProgress, 0, len(users))
	for _, user := range users {
		progress := ClientProgress{User: user}
		if err := internal.DB.Model(&models.FormSubmission{}).
			Where("user_id = ? AND status = ?", user.ID, models.StatusDraft).
			Count(&progress.Drafts).Error; err != nil {
			return nil, fmt.Errorf("failed to count drafts: %w", err)
		}
		if err := internal.DB.Model(&models.FormSubmission{}).
			Where("user_id = ? AND status = ?", user.ID, models.StatusSubmitted).
			Count(&progress.Submitted).Error; err != nil {
			return nil, fmt.Errorf("failed to count submissions: %w", err)
		}
		out = append(out, progress)
	}
	return out, nil
}
