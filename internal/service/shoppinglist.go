package service

import (
	"fmt"
	"log/slog"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
)

// ShoppingUpdateResult is the outcome of a shopping item update. Exactly
// one field is set: Item for a plain edit, Transferred when marking the
// item purchased moved it into the pantry.
type ShoppingUpdateResult struct {
	Item        *model.ShoppingListItem `json:"item,omitempty"`
	Transferred *model.PantryItem       `json:"transferred,omitempty"`
}

// ShoppingListService manages a household's shopping list, including the
// purchase path that moves items into the pantry.
type ShoppingListService struct {
	lists      *store.ShoppingStore
	pantries   *store.PantryStore
	households *store.HouseholdStore
	logger     *slog.Logger
}

func NewShoppingListService(ss *store.ShoppingStore, ps *store.PantryStore, hs *store.HouseholdStore, logger *slog.Logger) *ShoppingListService {
	return &ShoppingListService{lists: ss, pantries: ps, households: hs, logger: logger}
}

func (s *ShoppingListService) listFor(householdID, userID int64) (*model.ShoppingList, error) {
	member, err := s.households.GetMember(householdID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}
	return s.lists.GetOrCreateByHousehold(householdID)
}

func (s *ShoppingListService) Get(householdID, userID int64) (*model.ShoppingList, []model.ShoppingListItem, error) {
	list, err := s.listFor(householdID, userID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.lists.ListItems(list.ID)
	if err != nil {
		return nil, nil, err
	}
	return list, items, nil
}

// AddItems inserts a batch atomically, failing the whole batch on any
// case-insensitive name collision.
func (s *ShoppingListService) AddItems(householdID, userID int64, items []ItemInput) ([]model.ShoppingListItem, error) {
	list, err := s.listFor(householdID, userID)
	if err != nil {
		return nil, err
	}

	batch, err := validateItems(items)
	if err != nil {
		return nil, err
	}

	existing, err := s.lists.ListItemNames(list.ID)
	if err != nil {
		return nil, err
	}
	if dupes := collideExisting(batch, existing); len(dupes) > 0 {
		return nil, &DuplicateItemError{Names: dupes}
	}

	newItems := make([]store.NewShoppingItem, 0, len(batch))
	for _, it := range batch {
		newItems = append(newItems, store.NewShoppingItem{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit})
	}
	created, err := s.lists.CreateItems(list.ID, newItems)
	if err != nil {
		return nil, fmt.Errorf("create shopping items: %w", err)
	}
	return created, nil
}

func (s *ShoppingListService) itemFor(list *model.ShoppingList, itemID int64) (*model.ShoppingListItem, error) {
	item, err := s.lists.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.ListID != list.ID {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// UpdateItem applies quantity/unit edits and, when isPurchased is true,
// transfers the item into the household's pantry. Edits apply before the
// transfer so the purchased quantity is what the caller last set.
func (s *ShoppingListService) UpdateItem(householdID, userID, itemID int64, quantity *float64, unit *string, isPurchased *bool) (*ShoppingUpdateResult, error) {
	list, err := s.listFor(householdID, userID)
	if err != nil {
		return nil, err
	}

	if quantity == nil && unit == nil && isPurchased == nil {
		return nil, ErrEmptyUpdate
	}
	if quantity != nil && *quantity < 0 {
		return nil, invalid("quantity", "must not be negative")
	}

	item, err := s.itemFor(list, itemID)
	if err != nil {
		return nil, err
	}

	if quantity != nil || unit != nil {
		item, err = s.lists.UpdateItem(itemID, quantity, unit)
		if err != nil {
			return nil, fmt.Errorf("update shopping item: %w", err)
		}
	}

	if isPurchased == nil || !*isPurchased {
		return &ShoppingUpdateResult{Item: item}, nil
	}

	transferred, err := s.transfer(householdID, item)
	if err != nil {
		return nil, err
	}
	return &ShoppingUpdateResult{Transferred: transferred}, nil
}

// transfer moves one shopping item into the household's pantry, merging
// by name. The pantry write lands before the shopping delete.
func (s *ShoppingListService) transfer(householdID int64, item *model.ShoppingListItem) (*model.PantryItem, error) {
	pantry, err := s.pantries.GetByHousehold(householdID)
	if err != nil {
		return nil, err
	}
	if pantry == nil {
		return nil, ErrNotFound
	}
	transferred, err := s.lists.TransferToPantry(item, pantry.ID)
	if err != nil {
		return nil, fmt.Errorf("transfer to pantry: %w", err)
	}
	return transferred, nil
}

func (s *ShoppingListService) DeleteItem(householdID, userID, itemID int64) error {
	list, err := s.listFor(householdID, userID)
	if err != nil {
		return err
	}
	item, err := s.itemFor(list, itemID)
	if err != nil {
		return err
	}
	return s.lists.DeleteItem(item.ID)
}

const (
	reasonItemNotFound     = "Item not found"
	reasonAlreadyPurchased = "Item already purchased"
	reasonLookupFailed     = "Item lookup failed"
)

// BulkPurchase transfers each listed item into the pantry. Items are
// processed independently in order; a failed item is recorded with a
// reason and never aborts the rest of the batch.
func (s *ShoppingListService) BulkPurchase(householdID, userID int64, itemIDs []int64) (*model.BulkResult, error) {
	list, err := s.listFor(householdID, userID)
	if err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return nil, invalid("item_ids", "at least one item id is required")
	}

	result := &model.BulkResult{Success: []int64{}, Failed: []model.BulkItemFailure{}}
	for _, id := range itemIDs {
		item, err := s.lists.GetItemByID(id)
		if err != nil {
			s.logger.Error("bulk purchase lookup", "item_id", id, "error", err)
			result.Failed = append(result.Failed, model.BulkItemFailure{ID: id, Reason: reasonLookupFailed})
			continue
		}
		if item == nil || item.ListID != list.ID {
			result.Failed = append(result.Failed, model.BulkItemFailure{ID: id, Reason: reasonItemNotFound})
			continue
		}
		if item.IsPurchased {
			result.Failed = append(result.Failed, model.BulkItemFailure{ID: id, Reason: reasonAlreadyPurchased})
			continue
		}
		if _, err := s.transfer(householdID, item); err != nil {
			s.logger.Error("bulk purchase item", "item_id", id, "error", err)
			result.Failed = append(result.Failed, model.BulkItemFailure{ID: id, Reason: "Transfer failed"})
			continue
		}
		result.Success = append(result.Success, id)
	}

	result.Summary = model.BulkSummary{
		Total:      len(itemIDs),
		Successful: len(result.Success),
		Failed:     len(result.Failed),
	}
	return result, nil
}

// BulkDelete removes each listed item with the same per-item isolation
// as BulkPurchase.
func (s *ShoppingListService) BulkDelete(householdID, userID int64, itemIDs []int64) (*model.BulkResult, error) {
	list, err := s.listFor(householdID, userID)
	if err != nil {
		return nil, err
	}
	if len(itemIDs) == 0 {
		return nil, invalid("item_ids", "at least one item id is required")
	}

	result := &model.BulkResult{Success: []int64{}, Failed: []model.BulkItemFailure{}}
	for _, id := range itemIDs {
		item, err := s.lists.GetItemByID(id)
		if err != nil {
			s.logger.Error("bulk delete lookup", "item_id", id, "error", err)
			result.Failed = append(result.Failed, model.BulkItemFailure{ID: id, Reason: reasonLookupFailed})
			continue
		}
		if item == nil || item.ListID != list.ID {
			result.Failed = append(result.Failed, model.BulkItemFailure{ID: id, Reason: reasonItemNotFound})
			continue
		}
		if err := s.lists.DeleteItem(id); err != nil {
			s.logger.Error("bulk delete item", "item_id", id, "error", err)
			result.Failed = append(result.Failed, model.BulkItemFailure{ID: id, Reason: "Delete failed"})
			continue
		}
		result.Success = append(result.Success, id)
	}

	result.Summary = model.BulkSummary{
		Total:      len(itemIDs),
		Successful: len(result.Success),
		Failed:     len(result.Failed),
	}
	return result, nil
}
