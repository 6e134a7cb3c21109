package service

import "github.com/dukerupert/larder/internal/model"

// UserDirectory is the narrow identity-lookup capability the services need.
// The user store satisfies it; tests can substitute a stub. Keeping it this
// small makes the privilege boundary around user data explicit.
type UserDirectory interface {
	// GetEmail resolves a user id to its email, "" when unknown.
	GetEmail(id int64) (string, error)
	// FindByEmail returns the user with the given email, or nil.
	FindByEmail(email string) (*model.User, error)
}
