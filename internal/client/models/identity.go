// Package models holds the records exchanged with the Taiglo backend.
package models

import "strings"

// Identity is the authenticated user's profile as returned by the backend.
// Timestamps stay in the server's own string form. Nullable fields are
// pointers and nothing is omitted, so a decoded record encodes back to the
// same document.
type Identity struct {
	ID                string         `json:"id"`
	Email             string         `json:"email"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	Phone             *string        `json:"phone"`
	DateOfBirth       *string        `json:"date_of_birth"`
	ProfilePictureURL *string        `json:"profile_picture_url"`
	Bio               *string        `json:"bio"`
	IsVerified        bool           `json:"is_verified"`
	IsLocalGuide      bool           `json:"is_local_guide"`
	Preferences       map[string]any `json:"preferences"`
	CreatedAt         string         `json:"created_at"`
	UpdatedAt         string         `json:"updated_at"`
	Roles             []string       `json:"roles"`
	Permissions       []string       `json:"permissions"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Value returns *p, or "" when p is nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

const RoleAdmin = "admin"

func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i Identity) IsAdmin() bool { return i.HasRole(RoleAdmin) }

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// ProfileUpdate carries only the fields being changed; nil fields are
// left out of the request body.
type ProfileUpdate struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

func (p ProfileUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Bio == nil && p.DateOfBirth == nil
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	User        Identity `json:"user"`
	Message     string   `json:"message,omitempty"`
}

// UserEnvelope wraps the identity returned by /auth/me and /users/profile.
type UserEnvelope struct {
	User    Identity `json:"user"`
	Message string   `json:"message,omitempty"`
}
