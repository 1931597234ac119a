package apiclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"
)

// SessionState is the lifecycle position of a FormSession.
type SessionState string

const (
	StateNew       SessionState = "new"
	StateDraft     SessionState = "draft"
	StateSubmitted SessionState = "submitted"
)

// ErrSessionSubmitted is returned by edits and saves after a successful
// submit.
var ErrSessionSubmitted = errors.New("form session already submitted")

// FormSession fills in one form over the API. It tracks the submission id
// so that every save after the first updates the same draft.
type FormSession struct {
	client *Client

	mu           sync.Mutex
	config       *models.FormConfiguration
	submissionID string
	state        SessionState
	data         map[string]interface{}
	nextStep     string
}

// OpenSession loads the configuration and the caller's current draft, or
// the prefilled data of a new submission.
func (c *Client) OpenSession(ctx context.Context, configID string) (*FormSession, error) {
	cfg, err := c.FormConfig(ctx, configID)
	if err != nil {
		return nil, err
	}
	sub, err := c.LoadSubmission(ctx, configID)
	if err != nil {
		return nil, err
	}

	s := &FormSession{client: c, config: cfg, state: StateNew, data: map[string]interface{}{}}
	if sub != nil {
		if sub.FormData != nil {
			s.data = forms.CloneData(sub.FormData)
		}
		if sub.ID != "" {
			s.submissionID = sub.ID
			s.state = StateDraft
		}
	}
	return s, nil
}

func (s *FormSession) Config() *models.FormConfiguration {
	return s.config
}

func (s *FormSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *FormSession) SubmissionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissionID
}

// NextStep is the step the server suggested after submit.
func (s *FormSession) NextStep() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStep
}

// Data returns a copy of the current form data.
func (s *FormSession) Data() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return forms.CloneData(s.data)
}

// Set changes one field locally. applicant is forms.ApplicantNone for
// single-applicant forms.
func (s *FormSession) Set(applicant int, sectionID, fieldName string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitted {
		return ErrSessionSubmitted
	}
	forms.SetValue(s.data, applicant, sectionID, fieldName, value)
	return nil
}

// SetConsent records acceptance of the consent form at index in the
// configuration. Forms without an id are stored under their positional key.
func (s *FormSession) SetConsent(index int, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitted {
		return ErrSessionSubmitted
	}
	if index < 0 || index >= len(s.config.ConsentForms) {
		return fmt.Errorf("consent form %d out of range (form has %d)", index, len(s.config.ConsentForms))
	}
	s.data[s.config.ConsentForms[index].ConsentKey(index)] = accepted
	return nil
}

// SetSignature stores a base64 signature image.
func (s *FormSession) SetSignature(applicant int, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitted {
		return ErrSessionSubmitted
	}
	switch applicant {
	case forms.Applicant1:
		s.data[forms.KeySignatureApplicant1] = image
	case forms.Applicant2:
		s.data[forms.KeySignatureApplicant2] = image
	default:
		s.data[forms.KeySignature] = image
	}
	return nil
}

// Validate runs the local checks the server runs on submit.
func (s *FormSession) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := forms.ValidatePayload(s.config, s.data); err != nil {
		return err
	}
	if missing := forms.MissingRequired(s.config, s.data); len(missing) > 0 {
		verr := &forms.ValidationError{}
		for _, path := range missing {
			verr.Problems = append(verr.Problems, forms.FieldProblem{Path: path, Message: "is required"})
		}
		return verr
	}
	return nil
}

func (s *FormSession) request() SaveRequest {
	return SaveRequest{ID: s.submissionID, FormConfigID: s.config.ID, FormData: forms.CloneData(s.data)}
}

// SaveDraft stores the data as a draft. The first save moves the session
// from new to draft; later saves reuse the returned id.
func (s *FormSession) SaveDraft(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitted {
		return ErrSessionSubmitted
	}
	sub, err := s.client.SaveDraft(ctx, s.request())
	if err != nil {
		return err
	}
	s.submissionID = sub.ID
	s.state = StateDraft
	return nil
}

// Submit validates locally and submits. On failure the session keeps its
// state and data.
func (s *FormSession) Submit(ctx context.Context) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitted {
		return ErrSessionSubmitted
	}
	result, err := s.client.Submit(ctx, s.request())
	if err != nil {
		return err
	}
	s.submissionID = result.Submission.ID
	s.state = StateSubmitted
	s.nextStep = result.NextStep
	return nil
}
