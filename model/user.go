package model

import "time"

// RoleType is the access level of an account on the bell server.
type RoleType string

const (
	RoleAdmin RoleType = "admin"
	RoleUser  RoleType = "user"
)

// UserProfile is the signed-in account as returned by /auth/login and /auth/me.
// The server serializes the force flag without a json tag, hence the capitalised key.
type UserProfile struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email,omitempty"`
	Role                RoleType  `json:"role"`
	IsActive            bool      `json:"isActive"`
	ForcePasswordChange bool      `json:"ForcePasswordChange"`
	CreatedAt           time.Time `json:"createdAt,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// User is an account as managed through the admin /users endpoints.
type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	Role                RoleType  `json:"role"`
	IsActive            bool      `json:"isActive"`
	ForcePasswordChange bool      `json:"ForcePasswordChange"`
	CreatedAt           time.Time `json:"createdAt,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt,omitempty"`
}

// UserPage is one page of the server side users listing.
type UserPage struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     RoleType `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// UpdateUserRequest is the body of PUT /users/:id. An empty password keeps the current one.
type UpdateUserRequest struct {
	Username string   `json:"username" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     RoleType `json:"role" validate:"oneof=admin user"`
	IsActive bool     `json:"isActive"`
}
