package store

import (
	"testing"

	"github.com/dukerupert/larder/internal/database"
)

func openTestDB(t *testing.T) *testStores {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &testStores{
		users:       NewUserStore(db),
		sessions:    NewSessionStore(db),
		codes:       NewLoginCodeStore(db),
		households:  NewHouseholdStore(db),
		invitations: NewInvitationStore(db),
		pantries:    NewPantryStore(db),
		shopping:    NewShoppingStore(db),
		recipes:     NewRecipeStore(db),
		push:        NewPushStore(db),
	}
}

type testStores struct {
	users       *UserStore
	sessions    *SessionStore
	codes       *LoginCodeStore
	households  *HouseholdStore
	invitations *InvitationStore
	pantries    *PantryStore
	shopping    *ShoppingStore
	recipes     *RecipeStore
	push        *PushStore
}

func (ts *testStores) user(t *testing.T, email string) int64 {
	t.Helper()
	u, err := ts.users.Create(email, "Test User")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u.ID
}

func (ts *testStores) household(t *testing.T, name string, ownerID int64) int64 {
	t.Helper()
	h, err := ts.households.Provision(name, ownerID)
	if err != nil {
		t.Fatalf("provision household %s: %v", name, err)
	}
	return h.ID
}
