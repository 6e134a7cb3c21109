package service

import (
	"errors"
	"testing"
	"time"
)

func TestInviteOwnerOnly(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	memberID := e.addMember(t, hid, ownerID, "sam@example.com")

	if _, err := e.invitations.Create(hid, memberID, "new@example.com"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}

	strangerID := e.user(t, "stranger@example.com")
	if _, err := e.invitations.Create(hid, strangerID, "new@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for non-member", err)
	}
}

func TestInviteAlreadyMember(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	e.addMember(t, hid, ownerID, "sam@example.com")

	if _, err := e.invitations.Create(hid, ownerID, "Sam@Example.com"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestInvitePendingExists(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")

	if _, err := e.invitations.Create(hid, ownerID, "new@example.com"); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	if _, err := e.invitations.Create(hid, ownerID, "new@example.com"); !errors.Is(err, ErrInvitationExists) {
		t.Fatalf("err = %v, want ErrInvitationExists", err)
	}
}

func TestInviteReplacesExpiredPending(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")

	first, err := e.invitations.Create(hid, ownerID, "new@example.com")
	if err != nil {
		t.Fatalf("first invite: %v", err)
	}

	// Move "now" past the first invitation's expiry.
	e.invitations.now = func() time.Time { return first.ExpiresAt.Add(time.Hour) }

	second, err := e.invitations.Create(hid, ownerID, "new@example.com")
	if err != nil {
		t.Fatalf("re-invite after expiry: %v", err)
	}
	if second.Token == first.Token {
		t.Error("expected a fresh token")
	}
}

func TestAcceptSequence(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	inviteeID := e.user(t, "sam@example.com")

	// Unknown token.
	if _, err := e.invitations.Accept("no-such-token", inviteeID, "sam@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	inv, err := e.invitations.Create(hid, ownerID, "sam@example.com")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	// Email mismatch, compared case-insensitively.
	otherID := e.user(t, "other@example.com")
	if _, err := e.invitations.Accept(inv.Token, otherID, "other@example.com"); !errors.Is(err, ErrEmailMismatch) {
		t.Fatalf("err = %v, want ErrEmailMismatch", err)
	}

	member, err := e.invitations.Accept(inv.Token, inviteeID, "Sam@Example.COM")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if member.HouseholdID != hid || member.UserID != inviteeID {
		t.Errorf("membership = %+v, want household %d user %d", member, hid, inviteeID)
	}

	// Second accept of the same token: already used.
	if _, err := e.invitations.Accept(inv.Token, inviteeID, "sam@example.com"); !errors.Is(err, ErrInvitationUsed) {
		t.Fatalf("err = %v, want ErrInvitationUsed", err)
	}
}

func TestAcceptExpired(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	inviteeID := e.user(t, "sam@example.com")

	inv, err := e.invitations.Create(hid, ownerID, "sam@example.com")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	e.invitations.now = func() time.Time { return inv.ExpiresAt.Add(time.Minute) }

	if _, err := e.invitations.Accept(inv.Token, inviteeID, "sam@example.com"); !errors.Is(err, ErrInvitationExpired) {
		t.Fatalf("err = %v, want ErrInvitationExpired", err)
	}
}

func TestAcceptAlreadyMember(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	samID := e.addMember(t, hid, ownerID, "sam@example.com")

	// A second pending invitation for someone who joined in the meantime;
	// inserted at the store level since Create rejects current members.
	inv, err := e.invitations.invitations.Create(hid, "sam@example.com")
	if err != nil {
		t.Fatalf("create stale invitation: %v", err)
	}
	if _, err := e.invitations.Accept(inv.Token, samID, "sam@example.com"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestCancelInvitation(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")
	otherOwnerID, otherHid := e.ownerWithHousehold(t, "other@example.com", "Gamgee")

	inv, err := e.invitations.Create(hid, ownerID, "new@example.com")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	// Another household's owner cancelling by our invitation id reads as
	// not found.
	if err := e.invitations.Cancel(otherHid, inv.ID, otherOwnerID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := e.invitations.Cancel(hid, inv.ID, ownerID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := e.invitations.Accept(inv.Token, e.user(t, "new@example.com"), "new@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after cancel", err)
	}
}

func TestInbox(t *testing.T) {
	e := setup(t)
	ownerID, hid := e.ownerWithHousehold(t, "owner@example.com", "Baggins")

	if _, err := e.invitations.Create(hid, ownerID, "sam@example.com"); err != nil {
		t.Fatalf("invite: %v", err)
	}

	inbox, err := e.invitations.Inbox("Sam@Example.com")
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("got %d invitations, want 1", len(inbox))
	}
	if inbox[0].HouseholdName != "Baggins" {
		t.Errorf("household name = %q, want Baggins", inbox[0].HouseholdName)
	}
	if inbox[0].OwnerEmail != "owner@example.com" {
		t.Errorf("owner email = %q, want owner@example.com", inbox[0].OwnerEmail)
	}
	if inbox[0].Token == "" {
		t.Error("expected token in inbox entry")
	}
}

func TestAcceptLeavesOldHousehold(t *testing.T) {
	e := setup(t)
	ownerA, hidA := e.ownerWithHousehold(t, "a@example.com", "Baggins")
	bobID := e.addMember(t, hidA, ownerA, "bob@example.com")
	ownerB, hidB := e.ownerWithHousehold(t, "b@example.com", "Gamgee")

	inv, err := e.invitations.Create(hidB, ownerB, "bob@example.com")
	if err != nil {
		t.Fatalf("create invitation: %v", err)
	}
	member, err := e.invitations.Accept(inv.Token, bobID, "bob@example.com")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if member.HouseholdID != hidB {
		t.Errorf("membership household = %d, want %d", member.HouseholdID, hidB)
	}

	summary, err := e.households.GetUserHousehold(bobID)
	if err != nil {
		t.Fatalf("get user household: %v", err)
	}
	if summary == nil || summary.ID != hidB {
		t.Fatalf("current household = %+v, want %d", summary, hidB)
	}

	members, err := e.households.ListMembers(hidA, ownerA)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("old household has %d members, want 1", len(members))
	}
}

func TestAcceptRejectsOwnerOfAnotherHousehold(t *testing.T) {
	e := setup(t)
	ownerA, hidA := e.ownerWithHousehold(t, "a@example.com", "Baggins")
	bobID, _ := e.ownerWithHousehold(t, "bob@example.com", "Bobtons")

	inv, err := e.invitations.Create(hidA, ownerA, "bob@example.com")
	if err != nil {
		t.Fatalf("create invitation: %v", err)
	}
	if _, err := e.invitations.Accept(inv.Token, bobID, "bob@example.com"); !errors.Is(err, ErrAlreadyOwner) {
		t.Fatalf("err = %v, want ErrAlreadyOwner", err)
	}
}
