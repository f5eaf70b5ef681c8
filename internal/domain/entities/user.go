package entities

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidRole  = errors.New("invalid role")
)

// User represents a user in the system
type User struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrgID uuid.UUID `json:"org_id" gorm:"type:uuid;not null;index"`
	Email string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name  string    `json:"name" gorm:"type:varchar(255);not null"`
	Role  UserRole  `json:"role" gorm:"type:varchar(50);default:'student';not null"`

	// OAuth fields
	OAuthProvider *string `json:"oauth_provider,omitempty" gorm:"column:oauth_provider;type:varchar(50);index:idx_oauth"`
	OAuthID       *string `json:"oauth_id,omitempty" gorm:"column:oauth_id;type:varchar(255);index:idx_oauth"`

	// Profile
	AvatarURL *string `json:"avatar_url,omitempty" gorm:"type:varchar(500)"`
	Timezone  string  `json:"timezone" gorm:"type:varchar(50);default:'UTC';not null"`
	Language  string  `json:"language" gorm:"type:varchar(10);default:'ar';not null"`

	// Per-user override of the org-level Tajweed analysis switch.
	// Nil means "inherit from organization settings".
	TajweedEnabled *bool `json:"tajweed_enabled,omitempty" gorm:"type:boolean"`

	// Status
	IsActive    bool       `json:"is_active" gorm:"default:true;not null"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" gorm:"type:timestamp"`

	// Preferences (stored as JSONB in PostgreSQL)
	NotificationPreferences datatypes.JSON `json:"notification_preferences" gorm:"type:jsonb;default:'{}'"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserRole defines user roles
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// IsValid checks if the user role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// NewUser creates a new user with default values
func NewUser(orgID uuid.UUID, email, name string) *User {
	now := time.Now()

	notifPrefs, _ := json.Marshal(map[string]interface{}{
		"email":              true,
		"in_app":             true,
		"analysis_completed": true,
		"review_due":         true,
	})

	return &User{
		ID:                      uuid.New(),
		OrgID:                   orgID,
		Email:                   email,
		Name:                    name,
		Role:                    RoleStudent,
		IsActive:                true,
		Timezone:                "UTC",
		Language:                "ar",
		NotificationPreferences: notifPrefs,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// NewOAuthUser creates a new user from OAuth provider
func NewOAuthUser(orgID uuid.UUID, email, name, provider, oauthID string) *User {
	user := NewUser(orgID, email, name)
	user.OAuthProvider = &provider
	user.OAuthID = &oauthID
	return user
}

// UpdateLastLogin updates the last login timestamp
func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// CanTeach checks if user can manage assignments and review students
func (u *User) CanTeach() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}

// IsAdmin checks if user is admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate validates user data
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrInvalidName
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// PublicUser returns a user with internal fields removed
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to PublicUser
func (u *User) ToPublic() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
