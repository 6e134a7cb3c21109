package service

import (
	"errors"
	"testing"
)

func TestCreateHousehold(t *testing.T) {
	e := setup(t)
	userID := e.user(t, "owner@example.com")

	h, err := e.households.Create(userID, "Baggins")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.OwnerID != userID {
		t.Errorf("owner = %d, want %d", h.OwnerID, userID)
	}

	summary, err := e.households.GetUserHousehold(userID)
	if err != nil {
		t.Fatalf("get user household: %v", err)
	}
	if summary == nil || summary.ID != h.ID {
		t.Fatalf("got %+v, want household %d", summary, h.ID)
	}
	if summary.MemberCount != 1 {
		t.Errorf("member count = %d, want 1", summary.MemberCount)
	}
}

func TestCreateHouseholdAlreadyOwner(t *testing.T) {
	e := setup(t)
	userID, _ := e.ownerWithHousehold(t, "owner@example.com", "Baggins")

	if _, err := e.households.Create(userID, "Second"); !errors.Is(err, ErrAlreadyOwner) {
		t.Fatalf("err = %v, want ErrAlreadyOwner", err)
	}
}

func TestCreateHouseholdNameValidation(t *testing.T) {
	e := setup(t)
	userID := e.user(t, "owner@example.com")

	var val *ValidationError
	if _, err := e.households.Create(userID, "ab"); !errors.As(err, &val) {
		t.Fatalf("err = %v, want ValidationError for short name", err)
	}
	long := make([]byte, 51)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := e.households.Create(userID, string(long)); !errors.As(err, &val) {
		t.Fatalf("err = %v, want ValidationError for long name", err)
	}
}

func TestCreateHouseholdLeavesOldOne(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	memberID := e.addMember(t, hid, ownerID, "sam@example.com")

	// A member (not owner) starting their own household leaves the old one.
	h, err := e.households.Create(memberID, "Gamgee")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	summary, err := e.households.GetUserHousehold(memberID)
	if err != nil {
		t.Fatalf("get user household: %v", err)
	}
	if summary == nil || summary.ID != h.ID {
		t.Fatalf("current household = %+v, want new household %d", summary, h.ID)
	}

	// The old household is back to just its owner.
	if _, _, err := e.households.Get(hid, memberID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for old household access", err)
	}
	members, err := e.households.ListMembers(hid, ownerID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("old household members = %d, want 1", len(members))
	}
}

func TestGetHouseholdNotMember(t *testing.T) {
	e := setup(t)
	_, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	strangerID := e.user(t, "stranger@example.com")

	// Non-member and nonexistent read identically.
	if _, _, err := e.households.Get(hid, strangerID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for non-member", err)
	}
	if _, _, err := e.households.Get(99999, strangerID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for missing household", err)
	}
}

func TestUpdateHouseholdOwnerOnly(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	memberID := e.addMember(t, hid, ownerID, "sam@example.com")

	if _, err := e.households.UpdateName(hid, memberID, "Renamed"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}

	h, err := e.households.UpdateName(hid, ownerID, "Renamed")
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if h.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed", h.Name)
	}
}

func TestDeleteHouseholdHasOtherMembers(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	e.addMember(t, hid, ownerID, "sam@example.com")

	if err := e.households.Delete(hid, ownerID); !errors.Is(err, ErrHasOtherMembers) {
		t.Fatalf("err = %v, want ErrHasOtherMembers", err)
	}
}

func TestDeleteHouseholdSoleOwner(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")

	if err := e.households.Delete(hid, ownerID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	summary, err := e.households.GetUserHousehold(ownerID)
	if err != nil {
		t.Fatalf("get user household: %v", err)
	}
	if summary != nil {
		t.Error("expected no household after delete")
	}
}

func TestListMembersResolvesEmails(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	e.addMember(t, hid, ownerID, "sam@example.com")

	members, err := e.households.ListMembers(hid, ownerID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	emails := map[string]bool{}
	for _, m := range members {
		emails[m.Email] = true
	}
	if !emails["owner@example.com"] || !emails["sam@example.com"] {
		t.Errorf("emails = %v, want both members resolved", emails)
	}
}

func TestInviteMemberLegacyPath(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")

	inv, err := e.households.InviteMember(hid, ownerID, "sam@example.com")
	if err != nil {
		t.Fatalf("invite member: %v", err)
	}
	if inv.Token == "" {
		t.Error("invitation has no token")
	}

	samID := e.user(t, "sam@example.com")
	if _, err := e.invitations.Accept(inv.Token, samID, "sam@example.com"); err != nil {
		t.Fatalf("accept legacy invitation: %v", err)
	}
}
