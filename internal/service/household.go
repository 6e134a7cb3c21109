package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

const (
	minHouseholdName = 3
	maxHouseholdName = 50
)

// HouseholdService owns household lifecycle and membership rules.
type HouseholdService struct {
	households  *store.HouseholdStore
	invitations *InvitationService
	users       UserDirectory
	logger      *slog.Logger
}

func NewHouseholdService(hs *store.HouseholdStore, is *InvitationService, users UserDirectory, logger *slog.Logger) *HouseholdService {
	return &HouseholdService{
		households:  hs,
		invitations: is,
		users:       users,
		logger:      logger,
	}
}

func validateHouseholdName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < minHouseholdName || len(name) > maxHouseholdName {
		return "", invalid("name", fmt.Sprintf("must be between %d and %d characters", minHouseholdName, maxHouseholdName))
	}
	return name, nil
}

// GetUserHousehold returns the caller's current household with a live member
// count, or nil when the caller is unaffiliated.
func (s *HouseholdService) GetUserHousehold(userID int64) (*model.HouseholdSummary, error) {
	member, err := s.households.GetMembershipForUser(userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}

	household, err := s.households.GetByID(member.HouseholdID)
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, nil
	}

	count, err := s.households.CountMembers(household.ID)
	if err != nil {
		return nil, err
	}
	return &model.HouseholdSummary{Household: *household, MemberCount: count}, nil
}

// Create provisions a household (with its pantry and shopping list) owned by
// the caller. If the caller belonged to a different household, that old
// membership is removed after the new household exists; a failure there is
// logged, not rolled back.
func (s *HouseholdService) Create(userID int64, name string) (*model.Household, error) {
	name, err := validateHouseholdName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.households.GetByOwner(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyOwner
	}

	// Provision moves the caller out of any old household in the same
	// transaction.
	household, err := s.households.Provision(name, userID)
	if err != nil {
		return nil, fmt.Errorf("provision household: %w", err)
	}
	return household, nil
}

// requireMember returns the caller's membership in the household. It returns
// ErrNotFound whether the household is absent or the caller is simply not in
// it.
func (s *HouseholdService) requireMember(householdID, userID int64) (*model.HouseholdMember, error) {
	member, err := s.households.GetMember(householdID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}
	return member, nil
}

func (s *HouseholdService) requireOwner(householdID, userID int64) (*model.HouseholdMember, error) {
	member, err := s.requireMember(householdID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != model.RoleOwner {
		return nil, ErrNotOwner
	}
	return member, nil
}

// Get returns the household with its full member list, each membership
// resolved to an email through the user directory.
func (s *HouseholdService) Get(householdID, userID int64) (*model.Household, []model.MemberInfo, error) {
	if _, err := s.requireMember(householdID, userID); err != nil {
		return nil, nil, err
	}

	household, err := s.households.GetByID(householdID)
	if err != nil {
		return nil, nil, err
	}
	if household == nil {
		return nil, nil, ErrNotFound
	}

	members, err := s.ListMembers(householdID, userID)
	if err != nil {
		return nil, nil, err
	}
	return household, members, nil
}

func (s *HouseholdService) UpdateName(householdID, userID int64, name string) (*model.Household, error) {
	name, err := validateHouseholdName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOwner(householdID, userID); err != nil {
		return nil, err
	}
	return s.households.UpdateName(householdID, name)
}

// Delete removes the household and everything under it. Only the owner of a
// single-member household may delete it.
func (s *HouseholdService) Delete(householdID, userID int64) error {
	if _, err := s.requireOwner(householdID, userID); err != nil {
		return err
	}

	count, err := s.households.CountMembers(householdID)
	if err != nil {
		return err
	}
	if count > 1 {
		return ErrHasOtherMembers
	}
	return s.households.Delete(householdID)
}

func (s *HouseholdService) ListMembers(householdID, userID int64) ([]model.MemberInfo, error) {
	if _, err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}

	members, err := s.households.ListMembers(householdID)
	if err != nil {
		return nil, err
	}

	infos := make([]model.MemberInfo, 0, len(members))
	for _, m := range members {
		email, err := s.users.GetEmail(m.UserID)
		if err != nil {
			return nil, fmt.Errorf("resolve member email: %w", err)
		}
		infos = append(infos, model.MemberInfo{
			UserID:   m.UserID,
			Email:    email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return infos, nil
}

// InviteMember is the legacy invitation path on the household service; the
// rules are identical to InvitationService.Create.
func (s *HouseholdService) InviteMember(householdID, userID int64, email string) (*model.Invitation, error) {
	return s.invitations.Create(householdID, userID, email)
}
