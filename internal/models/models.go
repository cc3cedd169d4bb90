package models

import "github.com/shopspring/decimal"

func init() {
	// The remote API exchanges amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Role is the role a user holds on the platform
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether the role is one the platform knows about
func (r Role) IsValid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// HomePath returns the landing route for the role
func (r Role) HomePath() string {
	switch r {
	case RoleLandlord:
		return "/landlord/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/tenant/browse"
	}
}

// Payee is who a UPI payment is addressed to
type Payee struct {
	Name  string `json:"name,omitempty"`
	UPIID string `json:"upiId"`
}

// UploadedFile is the descriptor returned by the upload endpoints
type UploadedFile struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}
