package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole distinguishes parent accounts from kid accounts.
type UserRole string

const (
	RoleParent UserRole = "PARENT"
	RoleKid    UserRole = "KID"
)

// DefaultDailyQuota is the number of generation pipeline runs a user may
// start per calendar day unless a parent configured otherwise.
const DefaultDailyQuota = 10

// User represents a user in the system. Kid accounts carry a reference to
// the parent that created them.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"` // never serialized
	Role         UserRole   `db:"role" json:"role"`
	ParentID     *uuid.UUID `db:"parent_id" json:"parentId,omitempty"`
	DailyQuota   int        `db:"daily_quota" json:"dailyQuota"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}
