package service

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/store"
)

type testEnv struct {
	db          *sql.DB
	users       *store.UserStore
	households  *HouseholdService
	invitations *InvitationService
	pantry      *PantryService
	shopping    *ShoppingListService
	recipes     *RecipeService
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	invitationStore := store.NewInvitationStore(db)
	pantryStore := store.NewPantryStore(db)
	shoppingStore := store.NewShoppingStore(db)
	recipeStore := store.NewRecipeStore(db)

	invitationSvc := NewInvitationService(invitationStore, householdStore, userStore, nil, logger)
	pantrySvc := NewPantryService(pantryStore, householdStore, logger)

	return &testEnv{
		db:          db,
		users:       userStore,
		households:  NewHouseholdService(householdStore, invitationSvc, userStore, logger),
		invitations: invitationSvc,
		pantry:      pantrySvc,
		shopping:    NewShoppingListService(shoppingStore, pantryStore, householdStore, logger),
		recipes:     NewRecipeService(recipeStore, householdStore, pantrySvc, nil, logger),
	}
}

func (e *testEnv) user(t *testing.T, email string) int64 {
	t.Helper()
	u, err := e.users.Create(email, "Test User")
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u.ID
}

func (e *testEnv) ownerWithHousehold(t *testing.T, email, name string) (int64, int64) {
	t.Helper()
	userID := e.user(t, email)
	h, err := e.households.Create(userID, name)
	if err != nil {
		t.Fatalf("create household %s: %v", name, err)
	}
	return userID, h.ID
}

func (e *testEnv) addMember(t *testing.T, householdID, ownerID int64, email string) int64 {
	t.Helper()
	memberID := e.user(t, email)
	inv, err := e.invitations.Create(householdID, ownerID, email)
	if err != nil {
		t.Fatalf("invite %s: %v", email, err)
	}
	if _, err := e.invitations.Accept(inv.Token, memberID, email); err != nil {
		t.Fatalf("accept invitation for %s: %v", email, err)
	}
	return memberID
}
