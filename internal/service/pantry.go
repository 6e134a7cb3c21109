package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

const maxItemName = 100

// ItemInput is one item in an add-items request. Quantity defaults to 1
// when omitted.
type ItemInput struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
}

// validateItems normalizes a batch of item inputs and rejects names that
// are empty, too long, or duplicated within the batch itself.
func validateItems(items []ItemInput) ([]store.NewPantryItem, error) {
	if len(items) == 0 {
		return nil, invalid("items", "at least one item is required")
	}

	out := make([]store.NewPantryItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	var dupes []string
	for i, in := range items {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalid(fmt.Sprintf("items[%d].name", i), "is required")
		}
		if len(name) > maxItemName {
			return nil, invalid(fmt.Sprintf("items[%d].name", i), fmt.Sprintf("must be at most %d characters", maxItemName))
		}
		qty := 1.0
		if in.Quantity != nil {
			if *in.Quantity < 0 {
				return nil, invalid(fmt.Sprintf("items[%d].quantity", i), "must not be negative")
			}
			qty = *in.Quantity
		}
		key := strings.ToLower(name)
		if seen[key] {
			dupes = append(dupes, name)
			continue
		}
		seen[key] = true
		out = append(out, store.NewPantryItem{Name: name, Quantity: qty, Unit: in.Unit})
	}
	if len(dupes) > 0 {
		return nil, &DuplicateItemError{Names: dupes}
	}
	return out, nil
}

// collideExisting returns batch names that already exist in the target
// container, compared case-insensitively.
func collideExisting(batch []store.NewPantryItem, existing []string) []string {
	set := make(map[string]bool, len(existing))
	for _, name := range existing {
		set[strings.ToLower(name)] = true
	}
	var names []string
	for _, it := range batch {
		if set[strings.ToLower(it.Name)] {
			names = append(names, it.Name)
		}
	}
	return names
}

// PantryService manages a household's pantry inventory.
type PantryService struct {
	pantries   *store.PantryStore
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewPantryService(ps *store.PantryStore, hs *store.HouseholdStore, logger *slog.Logger) *PantryService {
	return &PantryService{pantries: ps, households: hs, logger: logger}
}

func (s *PantryService) requireMember(householdID, userID int64) error {
	member, err := s.households.GetMember(householdID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	return nil
}

func (s *PantryService) pantryFor(householdID, userID int64) (*model.Pantry, error) {
	if err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}
	pantry, err := s.pantries.GetByHousehold(householdID)
	if err != nil {
		return nil, err
	}
	if pantry == nil {
		return nil, ErrNotFound
	}
	return pantry, nil
}

func (s *PantryService) Get(householdID, userID int64) (*model.Pantry, []model.PantryItem, error) {
	pantry, err := s.pantryFor(householdID, userID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.pantries.ListItems(pantry.ID)
	if err != nil {
		return nil, nil, err
	}
	return pantry, items, nil
}

// AddItems inserts a batch of items atomically. A name collision against
// the pantry or within the batch fails the whole batch, reporting every
// colliding name.
func (s *PantryService) AddItems(householdID, userID int64, items []ItemInput) ([]model.PantryItem, error) {
	pantry, err := s.pantryFor(householdID, userID)
	if err != nil {
		return nil, err
	}

	batch, err := validateItems(items)
	if err != nil {
		return nil, err
	}

	existing, err := s.pantries.ListItemNames(pantry.ID)
	if err != nil {
		return nil, err
	}
	if dupes := collideExisting(batch, existing); len(dupes) > 0 {
		return nil, &DuplicateItemError{Names: dupes}
	}

	created, err := s.pantries.CreateItems(pantry.ID, batch)
	if err != nil {
		return nil, fmt.Errorf("create pantry items: %w", err)
	}
	return created, nil
}

// UpdateItem applies a partial update. At least one of quantity or unit
// must be present.
func (s *PantryService) UpdateItem(householdID, userID, itemID int64, quantity *float64, unit *string) (*model.PantryItem, error) {
	pantry, err := s.pantryFor(householdID, userID)
	if err != nil {
		return nil, err
	}

	if quantity == nil && unit == nil {
		return nil, ErrEmptyUpdate
	}
	if quantity != nil && *quantity < 0 {
		return nil, invalid("quantity", "must not be negative")
	}

	item, err := s.pantries.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.PantryID != pantry.ID {
		return nil, ErrItemNotFound
	}

	updated, err := s.pantries.UpdateItem(itemID, quantity, unit)
	if err != nil {
		return nil, fmt.Errorf("update pantry item: %w", err)
	}
	return updated, nil
}

func (s *PantryService) DeleteItem(householdID, userID, itemID int64) error {
	pantry, err := s.pantryFor(householdID, userID)
	if err != nil {
		return err
	}

	item, err := s.pantries.GetItemByID(itemID)
	if err != nil {
		return err
	}
	if item == nil || item.PantryID != pantry.ID {
		return ErrItemNotFound
	}
	return s.pantries.DeleteItem(itemID)
}

// ItemNames returns the pantry's item names for recipe generation context.
func (s *PantryService) ItemNames(householdID, userID int64) ([]string, error) {
	pantry, err := s.pantryFor(householdID, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.pantries.ListItems(pantry.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names, nil
}
