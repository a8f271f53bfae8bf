package models

import (
	"time"
)

// Role is the closed set of role codes returned by the login endpoints and
// consumed by the client-side route guard.
type Role string

const (
	RoleAdmin    Role = "1"
	RoleOperator Role = "2"
	RoleViewer   Role = "3"
)

// Valid reports whether the role is one of the known codes.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// User represents an operator or administrator of the console.
type User struct {
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	RoleID              Role       `json:"role_id"`
	FirstName           string     `json:"first_name"`
	MiddleName          string     `json:"middle_name,omitempty"`
	LastName            string     `json:"last_name"`
	ContactNumber       string     `json:"contact_number,omitempty"`
	EmergencyContactNum string     `json:"emergency_contact_num,omitempty"`
	Birthdate           string     `json:"birthdate,omitempty"`
	AddressLine1        string     `json:"address_line1,omitempty"`
	AddressLine2        string     `json:"address_line2,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// CreateUserRequest is the payload for creating a console user.
type CreateUserRequest struct {
	Username            string `json:"username"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	RoleID              Role   `json:"role_id"`
	FirstName           string `json:"first_name"`
	MiddleName          string `json:"middle_name,omitempty"`
	LastName            string `json:"last_name"`
	ContactNumber       string `json:"contact_number,omitempty"`
	EmergencyContactNum string `json:"emergency_contact_num,omitempty"`
	Birthdate           string `json:"birthdate,omitempty"`
	AddressLine1        string `json:"address_line1,omitempty"`
	AddressLine2        string `json:"address_line2,omitempty"`
}

// UpdateUserRequest updates an existing user; nil fields are left unchanged.
type UpdateUserRequest struct {
	Username            string  `json:"username"`
	Email               *string `json:"email,omitempty"`
	Password            *string `json:"password,omitempty"`
	RoleID              *Role   `json:"role_id,omitempty"`
	FirstName           *string `json:"first_name,omitempty"`
	MiddleName          *string `json:"middle_name,omitempty"`
	LastName            *string `json:"last_name,omitempty"`
	ContactNumber       *string `json:"contact_number,omitempty"`
	EmergencyContactNum *string `json:"emergency_contact_num,omitempty"`
	Birthdate           *string `json:"birthdate,omitempty"`
	AddressLine1        *string `json:"address_line1,omitempty"`
	AddressLine2        *string `json:"address_line2,omitempty"`
}

// LoginRequest is the credential payload for /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Captcha  string `json:"captcha,omitempty"`
}

// SSOLoginRequest is the payload for the employee SSO hand-off. The identity
// provider has already verified the email; we only map it to a local user.
type SSOLoginRequest struct {
	Email string `json:"email"`
}

// LoginResponse carries the session token and the role code the client-side
// route guard keys on.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token,omitempty"`
	Role     Role   `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Message  string `json:"message,omitempty"`
}
