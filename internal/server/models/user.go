// Package models holds the persisted records of the doccoon server and the
// public projections built from them.
package models

import (
	"strings"
	"time"
)

type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// FullName joins the non-empty name parts.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
