package models

import "time"

type User struct {
	UserID       string   `json:"userid" bson:"userid"`
	Email        string   `json:"email" bson:"email"`
	FullName     string   `json:"fullName,omitempty" bson:"full_name,omitempty"`
	PasswordHash string   `json:"-" bson:"password_hash"`
	Role         []string `json:"role" bson:"role"`
	// Permissions is the flat array-of-codes representation.
	Permissions []string `json:"permissions,omitempty" bson:"permissions,omitempty"`
	// PermissionFlags is the legacy map representation still present on
	// older records. rbac.NormalizePermissions folds both into one set.
	PermissionFlags map[string]bool `json:"permissionFlags,omitempty" bson:"permission_flags,omitempty"`
	PhoneNumber     string          `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Avatar          string          `json:"avatar,omitempty" bson:"avatar,omitempty"`
	IsActive        bool            `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
	LastLogin       time.Time       `json:"last_login" bson:"last_login"`
	RefreshToken    string          `json:"-" bson:"refreshtoken,omitempty"`
	RefreshExpiry   time.Time       `json:"-" bson:"refreshexp,omitempty"`
}

// UserProfileResponse is the shape returned by /api/auth/me and profile reads.
type UserProfileResponse struct {
	UserID      string   `json:"userid"`
	Email       string   `json:"email"`
	FullName    string   `json:"fullName,omitempty"`
	Role        []string `json:"role"`
	Permissions []string `json:"permissions"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
}
