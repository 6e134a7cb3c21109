package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/larder/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	err := scanner.Scan(&l.ID, &l.HouseholdID, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	var unit sql.NullString
	var purchased int

	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity, &unit,
		&purchased, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.IsPurchased = purchased != 0
	if unit.Valid {
		item.Unit = &unit.String
	}
	return &item, nil
}

const shoppingListCols = `id, household_id, created_at`
const shoppingItemCols = `id, list_id, name, quantity, unit, is_purchased, created_at, updated_at`

// GetOrCreateByHousehold returns the household's shopping list, creating it
// lazily on first access.
func (s *ShoppingStore) GetOrCreateByHousehold(householdID int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+shoppingListCols+` FROM shopping_lists WHERE household_id = ?`, householdID)
	l, err := scanShoppingList(row)
	if err == nil {
		return l, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}

	result, err := s.db.Exec(`INSERT INTO shopping_lists (household_id) VALUES (?)`, householdID)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row = s.db.QueryRow(`SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?`, id)
	return scanShoppingList(row)
}

func (s *ShoppingStore) GetItemByID(id int64) (*model.ShoppingListItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingItemCols+` FROM shopping_list_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

// ListItemNames returns the lowercased names already present on a list.
func (s *ShoppingStore) ListItemNames(listID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT lower(name) FROM shopping_list_items WHERE list_id = ?`, listID)
	if err != nil {
		return nil, fmt.Errorf("list shopping item names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *ShoppingStore) ListItems(listID int64) ([]model.ShoppingListItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingItemCols+` FROM shopping_list_items WHERE list_id = ? ORDER BY name COLLATE NOCASE ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingListItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// NewShoppingItem is the insert shape for CreateItems.
type NewShoppingItem struct {
	Name     string
	Quantity float64
	Unit     *string
}

// CreateItems inserts a batch of items in one transaction, all-or-nothing.
func (s *ShoppingStore) CreateItems(listID int64, items []NewShoppingItem) ([]model.ShoppingListItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var ids []int64
	for _, it := range items {
		result, err := tx.Exec(
			`INSERT INTO shopping_list_items (list_id, name, quantity, unit) VALUES (?, ?, ?, ?)`,
			listID, it.Name, it.Quantity, nullString(it.Unit),
		)
		if err != nil {
			return nil, fmt.Errorf("insert shopping item %q: %w", it.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	var created []model.ShoppingListItem
	for _, id := range ids {
		row := tx.QueryRow(`SELECT `+shoppingItemCols+` FROM shopping_list_items WHERE id = ?`, id)
		item, err := scanShoppingItem(row)
		if err != nil {
			return nil, fmt.Errorf("get shopping item: %w", err)
		}
		created = append(created, *item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

// UpdateItem sets quantity and/or unit; nil fields are left untouched.
func (s *ShoppingStore) UpdateItem(id int64, quantity *float64, unit *string) (*model.ShoppingListItem, error) {
	if quantity != nil {
		if _, err := s.db.Exec(
			`UPDATE shopping_list_items SET quantity = ?, updated_at = datetime('now') WHERE id = ?`,
			*quantity, id,
		); err != nil {
			return nil, fmt.Errorf("update shopping item quantity: %w", err)
		}
	}
	if unit != nil {
		if _, err := s.db.Exec(
			`UPDATE shopping_list_items SET unit = ?, updated_at = datetime('now') WHERE id = ?`,
			*unit, id,
		); err != nil {
			return nil, fmt.Errorf("update shopping item unit: %w", err)
		}
	}
	return s.GetItemByID(id)
}

func (s *ShoppingStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

// TransferToPantry performs the purchase transfer: merge the item's quantity
// into the matching pantry item (case-insensitive name) or insert a new one,
// then delete the shopping-list item. The pantry write happens before the
// delete, and both run in one transaction, so quantity is never lost between
// the two tables. Units are not reconciled on merge.
func (s *ShoppingStore) TransferToPantry(item *model.ShoppingListItem, pantryID int64) (*model.PantryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT `+pantryItemCols+` FROM pantry_items WHERE pantry_id = ? AND name = ? COLLATE NOCASE`,
		pantryID, item.Name,
	)
	existing, err := scanPantryItem(row)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get pantry item by name: %w", err)
	}

	var pantryItemID int64
	if existing != nil {
		if _, err := tx.Exec(
			`UPDATE pantry_items SET quantity = quantity + ?, updated_at = datetime('now') WHERE id = ?`,
			item.Quantity, existing.ID,
		); err != nil {
			return nil, fmt.Errorf("merge pantry item: %w", err)
		}
		pantryItemID = existing.ID
	} else {
		result, err := tx.Exec(
			`INSERT INTO pantry_items (pantry_id, name, quantity, unit) VALUES (?, ?, ?, ?)`,
			pantryID, item.Name, item.Quantity, nullString(item.Unit),
		)
		if err != nil {
			return nil, fmt.Errorf("insert pantry item: %w", err)
		}
		pantryItemID, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, item.ID); err != nil {
		return nil, fmt.Errorf("delete shopping item: %w", err)
	}

	row = tx.QueryRow(`SELECT `+pantryItemCols+` FROM pantry_items WHERE id = ?`, pantryItemID)
	merged, err := scanPantryItem(row)
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return merged, nil
}
