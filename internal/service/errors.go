package service

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors. Handlers match these by identity and map them to the fixed
// status/code table; services never return sentinel values for business-rule
// violations.
var (
	// ErrNotFound covers both "does not exist" and "caller may not know it
	// exists", so unauthorized callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrItemNotFound      = errors.New("item not found")
	ErrNotOwner          = errors.New("not the household owner")
	ErrAlreadyOwner      = errors.New("user already owns a household")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrInvitationExists  = errors.New("a pending invitation already exists")
	ErrHasOtherMembers   = errors.New("household still has other members")
	ErrInvitationExpired = errors.New("invitation has expired")
	ErrInvitationUsed    = errors.New("invitation has already been used")
	ErrEmailMismatch     = errors.New("invitation was issued to a different email")
	ErrEmptyUpdate       = errors.New("no fields to update")
)

// DuplicateItemError reports every name in a batch that collides,
// case-insensitively, with an existing item or another batch entry.
type DuplicateItemError struct {
	Names []string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("duplicate item names: %s", strings.Join(e.Names, ", "))
}

// FieldError is a single invalid-input detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field input failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
