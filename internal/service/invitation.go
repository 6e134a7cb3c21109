package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

// InvitationSender delivers an invitation email. Delivery is best-effort;
// a nil sender disables it.
type InvitationSender interface {
	SendInvitation(toEmail, token, householdName string) error
}

// InvitationService owns the invitation state machine:
// pending → accepted (terminal), pending → deleted via cancel.
type InvitationService struct {
	invitations *store.InvitationStore
	households  *store.HouseholdStore
	users       UserDirectory
	sender      InvitationSender
	logger      *slog.Logger
	now         func() time.Time
}

func NewInvitationService(is *store.InvitationStore, hs *store.HouseholdStore, users UserDirectory, sender InvitationSender, logger *slog.Logger) *InvitationService {
	return &InvitationService{
		invitations: is,
		households:  hs,
		users:       users,
		sender:      sender,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *InvitationService) requireMember(householdID, userID int64) (*model.HouseholdMember, error) {
	member, err := s.households.GetMember(householdID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}
	return member, nil
}

func (s *InvitationService) requireOwner(householdID, userID int64) error {
	member, err := s.requireMember(householdID, userID)
	if err != nil {
		return err
	}
	if member.Role != model.RoleOwner {
		return ErrNotOwner
	}
	return nil
}

// List returns all pending invitations for a household, expired ones
// included. Expiry filtering is the caller's concern here.
func (s *InvitationService) List(householdID, userID int64) ([]model.Invitation, error) {
	if _, err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}
	return s.invitations.ListPendingByHousehold(householdID)
}

// Create issues a single-use token invitation expiring in 7 days. Owner-only.
func (s *InvitationService) Create(householdID, userID int64, email string) (*model.Invitation, error) {
	if err := s.requireOwner(householdID, userID); err != nil {
		return nil, err
	}

	email = store.NormalizeEmail(email)
	if email == "" {
		return nil, invalid("email", "is required")
	}

	// Reject if the email already resolves to a current member.
	if user, err := s.users.FindByEmail(email); err != nil {
		return nil, err
	} else if user != nil {
		member, err := s.households.GetMember(householdID, user.ID)
		if err != nil {
			return nil, err
		}
		if member != nil {
			return nil, ErrAlreadyMember
		}
	}

	pending, err := s.invitations.GetPending(householdID, email)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		if !pending.Expired(s.now()) {
			return nil, ErrInvitationExists
		}
		// An expired pending invitation is dead weight; replace it.
		if err := s.invitations.Delete(pending.ID); err != nil {
			return nil, err
		}
	}

	inv, err := s.invitations.Create(householdID, email)
	if err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	if s.sender != nil {
		household, err := s.households.GetByID(householdID)
		name := ""
		if err == nil && household != nil {
			name = household.Name
		}
		if err := s.sender.SendInvitation(email, inv.Token, name); err != nil {
			s.logger.Error("send invitation email", "invitation_id", inv.ID, "error", err)
		}
	}

	return inv, nil
}

// Accept redeems an invitation by token. The checks run in a fixed order,
// each with its own failure mode; on success the membership insert and
// status flip are atomic.
func (s *InvitationService) Accept(token string, userID int64, userEmail string) (*model.HouseholdMember, error) {
	inv, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	if inv.Status != model.InvitationPending {
		return nil, ErrInvitationUsed
	}
	if inv.Expired(s.now()) {
		return nil, ErrInvitationExpired
	}
	if store.NormalizeEmail(userEmail) != inv.InvitedEmail {
		return nil, ErrEmailMismatch
	}

	member, err := s.households.GetMember(inv.HouseholdID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, ErrAlreadyMember
	}

	// A member of another household moves over on accept, but an owner
	// would leave their household ownerless; they must delete it first.
	owned, err := s.households.GetByOwner(userID)
	if err != nil {
		return nil, err
	}
	if owned != nil {
		return nil, ErrAlreadyOwner
	}

	accepted, err := s.invitations.Accept(inv, userID)
	if err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	return accepted, nil
}

// Cancel hard-deletes a pending invitation. Owner-only; an invitation id
// from another household reads as not found.
func (s *InvitationService) Cancel(householdID, invitationID, userID int64) error {
	if err := s.requireOwner(householdID, userID); err != nil {
		return err
	}

	inv, err := s.invitations.GetByID(invitationID)
	if err != nil {
		return err
	}
	if inv == nil || inv.HouseholdID != householdID {
		return ErrNotFound
	}
	return s.invitations.Delete(inv.ID)
}

// Inbox returns pending, unexpired invitations addressed to the caller's
// email, enriched with household name and owner email.
func (s *InvitationService) Inbox(userEmail string) ([]model.InvitationInbox, error) {
	invs, err := s.invitations.ListPendingByEmail(userEmail)
	if err != nil {
		return nil, err
	}

	inbox := make([]model.InvitationInbox, 0, len(invs))
	for _, inv := range invs {
		household, err := s.households.GetByID(inv.HouseholdID)
		if err != nil {
			return nil, err
		}
		if household == nil {
			continue // household deleted after the invitation was issued
		}
		ownerEmail, err := s.users.GetEmail(household.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("resolve owner email: %w", err)
		}
		inbox = append(inbox, model.InvitationInbox{
			ID:            inv.ID,
			HouseholdID:   inv.HouseholdID,
			HouseholdName: household.Name,
			OwnerEmail:    ownerEmail,
			InvitedEmail:  inv.InvitedEmail,
			Token:         inv.Token,
			ExpiresAt:     inv.ExpiresAt,
			CreatedAt:     inv.CreatedAt,
		})
	}
	return inbox, nil
}
