package services

import (
	"errors"

	"FIN-COACH/internal/models"
)

var (
	ErrConfigNotFound     = errors.New("form configuration not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionLocked   = errors.New("submission has already been submitted")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrExportNotFound     = errors.New("export not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
)

// Actor is the authenticated user a service call is made for.
type Actor struct {
	ID    string
	Email string
	Role  models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}
