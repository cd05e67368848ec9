package model

import "time"

// Role is the coarse permission level of an identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the logged-in user attached to a request.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity may use the review workflow.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// UserRole records the role last assigned to a username at login.
type UserRole struct {
	Username  string    `json:"username" gorm:"size:255;primaryKey"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
