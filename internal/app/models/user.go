package models

import "time"

// Role is the platform account role as reported by the API. Values outside
// the known set are carried verbatim; authorization code must treat them as
// unauthorized rather than guessing.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// Known reports whether the role is one the console understands.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}

// VerificationStatus is the review state of a seller account. It is only
// meaningful when the role is seller.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// User is the account record returned by the platform API.
type User struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	Name               string             `json:"name,omitempty"`
	Avatar             string             `json:"avatar,omitempty"`
	Role               Role               `json:"role"`
	VerificationStatus VerificationStatus `json:"verificationStatus,omitempty"`
	CreatedAt          time.Time          `json:"createdAt,omitzero"`
}

// Credentials is the payload issued by the platform on a successful sign-in.
type Credentials struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Preferences is the console display state: color theme and sidebar
// behavior. Stored alongside the credential, not on the platform.
type Preferences struct {
	Theme        string `json:"theme"`
	SidebarMini  bool   `json:"sidebarMini"`
	SidebarHover bool   `json:"sidebarHover"`
}

// DefaultPreferences is what a fresh console starts with.
func DefaultPreferences() *Preferences {
	return &Preferences{Theme: "light", SidebarMini: false, SidebarHover: true}
}
