package model

import "time"

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

type Invitation struct {
	ID           int64     `json:"id"`
	HouseholdID  int64     `json:"household_id"`
	InvitedEmail string    `json:"invited_email"`
	Token        string    `json:"token"`
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the invitation is past its expiry at the given instant.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InvitationInbox is an invitation addressed to the current user, enriched
// with the household name and owner email for display.
type InvitationInbox struct {
	ID            int64     `json:"id"`
	HouseholdID   int64     `json:"household_id"`
	HouseholdName string    `json:"household_name"`
	OwnerEmail    string    `json:"owner_email"`
	InvitedEmail  string    `json:"invited_email"`
	Token         string    `json:"token"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}
