package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"FIN-COACH/internal"
	"FIN-COACH/internal/auth"
	"FIN-COACH/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService struct {
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := internal.DB.First(&user, "email = ?", normalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func findUser(id string) (*models.User, error) {
	var user models.User
	if err := internal.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) createUser(email, password, name string, role models.Role) (*models.User, error) {
	existing, err := findUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(email),
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := internal.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Register creates a client account and signs it in.
func (s *AuthService) Register(email, password, name string) (*AuthResult, error) {
	user, err := s.createUser(email, password, name, models.RoleClient)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := findUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(s.jwtSecret, s.tokenTTL, user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Me(userID string) (*models.User, error) {
	return findUser(userID)
}

// SeedAdmin creates the initial admin account unless the email exists.
func (s *AuthService) SeedAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.createUser(email, password, "Admin", models.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

// CreateUser lets an admin add coaches or clients directly.
func (s *AuthService) CreateUser(email, password, name string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.createUser(email, password, name, role)
}

func (s *AuthService) ListUsers(role models.Role) ([]models.User, error) {
	var users []models.User
	query := internal.DB.Order("email ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UserUpdate holds the admin-editable attributes of a user. Nil fields are
// left unchanged; an empty CoachID unassigns the coach.
type UserUpdate struct {
	Role     *models.Role `json:"role"`
	CoachID  *string      `json:"coach_id"`
	Name     *string      `json:"name"`
	Language *string      `json:"language"`
}

func (s *AuthService) UpdateUser(id string, update UserUpdate) (*models.User, error) {
	user, err := findUser(id)
	if err != nil {
		return nil, err
	}

	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *update.Role)
		}
		user.Role = *update.Role
	}
	if update.CoachID != nil {
		if *update.CoachID != "" {
			coach, err := findUser(*update.CoachID)
			if err != nil {
				return nil, err
			}
			if coach.Role != models.RoleCoach {
				return nil, fmt.Errorf("%w: user %s is not a coach", ErrInvalidInput, coach.ID)
			}
		}
		user.CoachID = *update.CoachID
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Language != nil {
		user.Language = *update.Language
	}

	if err := internal.DB.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) DeleteUser(id string) error {
	result := internal.DB.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
