package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role determines what a user may see and do
type Role string

const (
	RoleClient Role = "client"
	RoleCoach  Role = "coach"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleCoach || r == RoleAdmin
}

type User struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"not null;uniqueIndex;size:191" json:"email"`
	Name         string         `json:"name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null" json:"role"`
	CoachID      string         `gorm:"index" json:"coach_id,omitempty"` // coach assigned to a client
	Language     string         `gorm:"type:varchar(8)" json:"language,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// ProfileResource names one of the financial-profile resources of a client
type ProfileResource string

const (
	ResourcePersonalDetails ProfileResource = "personal_details"
	ResourceEmployment      ProfileResource = "employment"
	ResourceIncome          ProfileResource = "income"
	ResourceExpenses        ProfileResource = "expenses"
	ResourceAssets          ProfileResource = "assets"
	ResourceLiabilities     ProfileResource = "liabilities"
	ResourceFamilyMembers   ProfileResource = "family_members"
)

// ProfileResources lists every resource in prefill order.
var ProfileResources = []ProfileResource{
	ResourcePersonalDetails,
	ResourceEmployment,
	ResourceIncome,
	ResourceExpenses,
	ResourceAssets,
	ResourceLiabilities,
	ResourceFamilyMembers,
}

func (r ProfileResource) Valid() bool {
	for _, known := range ProfileResources {
		if r == known {
			return true
		}
	}
	return false
}

// ProfileRecord stores one profile resource of one user as a JSON object.
type ProfileRecord struct {
	ID        string            `gorm:"primaryKey" json:"id"`
	UserID    string            `gorm:"not null;uniqueIndex:idx_profile_user_resource;size:191" json:"user_id"`
	Resource  ProfileResource   `gorm:"not null;uniqueIndex:idx_profile_user_resource;size:64" json:"resource"`
	Data      datatypes.JSONMap `json:"data"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (ProfileRecord) TableName() string {
	return "profile_records"
}

// ActivityLog records API requests and lifecycle events of submissions
// and exports. Request entries carry the HTTP fields, event entries the
// action and target.
type ActivityLog struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index" json:"user_id"`
	UserEmail    string    `json:"user_email,omitempty"`
	UserRole     Role      `gorm:"type:varchar(20)" json:"user_role"`
	Action       string    `gorm:"type:varchar(64);index" json:"action"`
	TargetID     string    `gorm:"index" json:"target_id,omitempty"`
	Details      string    `json:"details,omitempty"`
	Method       string    `gorm:"type:varchar(10)" json:"method,omitempty"`
	Path         string    `json:"path,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	StatusCode   int       `json:"status_code,omitempty"`
	ResponseTime int64     `json:"response_time,omitempty"` // milliseconds
	CreatedAt    time.Time `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
