// Package model defines the data structures shared by the service and
// repository layers.
package model

import "time"

// User is an account that may run scripts when authentication is enabled.
//
// Accounts come from two places: GitHub OAuth (GitHubID set, no password) and
// local registration (PasswordHash set, GitHubID zero). Login is unique among
// local accounts only; a GitHub user may share a login with a local one.
type User struct {
	ID           string    `json:"id"`
	GitHubID     int64     `json:"githubId,omitempty"` // 0 for local accounts
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	AvatarURL    string    `json:"avatarUrl"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsLocal reports whether the account signs in with a password.
func (u *User) IsLocal() bool { return u.GitHubID == 0 }
