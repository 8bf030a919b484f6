package models

import "time"

// User authentication types.
const (
	UserTypeLocal    = "local"
	UserTypeGoogle   = "google"
	UserTypeOneLogin = "onelogin"
	UserTypeOkta     = "okta"
	UserTypeAzure    = "azure"
	UserTypeAPI      = "api"
)

// User represents an administrator or API identity of the console.
type User struct {
	ID            string    `json:"id" yaml:"id"` // UUIDv7
	Organization  string    `json:"organization" yaml:"organization"`
	Type          string    `json:"type" yaml:"type"` // "local", "google", "okta", ...
	Username      string    `json:"username" yaml:"username"`
	Email         string    `json:"email" yaml:"email"`
	Roles         []string  `json:"roles" yaml:"roles"`
	Administrator bool      `json:"administrator" yaml:"administrator"`
	Disabled      bool      `json:"disabled" yaml:"disabled"`
	LastActive    time.Time `json:"last_active" yaml:"last_active"` // zero when never active
}

func (u User) EntityID() string { return u.ID }

// Clone returns a copy of the user safe for independent mutation.
func (u User) Clone() User {
	u.Roles = cloneStrings(u.Roles)
	return u
}

// IsActive returns true if the user has any recorded activity.
func (u *User) IsActive() bool {
	return !u.LastActive.IsZero()
}
