package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/larder/internal/model"
)

type PantryStore struct {
	db *sql.DB
}

func NewPantryStore(db *sql.DB) *PantryStore {
	return &PantryStore{db: db}
}

func scanPantry(scanner interface{ Scan(...any) error }) (*model.Pantry, error) {
	var p model.Pantry
	err := scanner.Scan(&p.ID, &p.HouseholdID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPantryItem(scanner interface{ Scan(...any) error }) (*model.PantryItem, error) {
	var item model.PantryItem
	var unit sql.NullString

	err := scanner.Scan(
		&item.ID, &item.PantryID, &item.Name, &item.Quantity, &unit,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if unit.Valid {
		item.Unit = &unit.String
	}
	return &item, nil
}

const pantryCols = `id, household_id, created_at`
const pantryItemCols = `id, pantry_id, name, quantity, unit, created_at, updated_at`

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (s *PantryStore) GetByHousehold(householdID int64) (*model.Pantry, error) {
	row := s.db.QueryRow(`SELECT `+pantryCols+` FROM pantries WHERE household_id = ?`, householdID)
	p, err := scanPantry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry: %w", err)
	}
	return p, nil
}

func (s *PantryStore) GetItemByID(id int64) (*model.PantryItem, error) {
	row := s.db.QueryRow(`SELECT `+pantryItemCols+` FROM pantry_items WHERE id = ?`, id)
	item, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item: %w", err)
	}
	return item, nil
}

// GetItemByName looks an item up by name, case-insensitively.
func (s *PantryStore) GetItemByName(pantryID int64, name string) (*model.PantryItem, error) {
	row := s.db.QueryRow(
		`SELECT `+pantryItemCols+` FROM pantry_items WHERE pantry_id = ? AND name = ? COLLATE NOCASE`,
		pantryID, name,
	)
	item, err := scanPantryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pantry item by name: %w", err)
	}
	return item, nil
}

// ListItemNames returns the lowercased names already present in a pantry.
func (s *PantryStore) ListItemNames(pantryID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT lower(name) FROM pantry_items WHERE pantry_id = ?`, pantryID)
	if err != nil {
		return nil, fmt.Errorf("list pantry item names: %w", err)
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

func (s *PantryStore) ListItems(pantryID int64) ([]model.PantryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+pantryItemCols+` FROM pantry_items WHERE pantry_id = ? ORDER BY name COLLATE NOCASE ASC`,
		pantryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pantry items: %w", err)
	}
	defer rows.Close()

	var items []model.PantryItem
	for rows.Next() {
		item, err := scanPantryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pantry item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// NewPantryItem is the insert shape for CreateItems.
type NewPantryItem struct {
	Name     string
	Quantity float64
	Unit     *string
}

// CreateItems inserts a batch of items in one transaction, so a batch is
// all-or-nothing.
func (s *PantryStore) CreateItems(pantryID int64, items []NewPantryItem) ([]model.PantryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var ids []int64
	for _, it := range items {
		result, err := tx.Exec(
			`INSERT INTO pantry_items (pantry_id, name, quantity, unit) VALUES (?, ?, ?, ?)`,
			pantryID, it.Name, it.Quantity, nullString(it.Unit),
		)
		if err != nil {
			return nil, fmt.Errorf("insert pantry item %q: %w", it.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	var created []model.PantryItem
	for _, id := range ids {
		row := tx.QueryRow(`SELECT `+pantryItemCols+` FROM pantry_items WHERE id = ?`, id)
		item, err := scanPantryItem(row)
		if err != nil {
			return nil, fmt.Errorf("get pantry item: %w", err)
		}
		created = append(created, *item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

// UpdateItem sets quantity and/or unit; nil fields are left untouched.
func (s *PantryStore) UpdateItem(id int64, quantity *float64, unit *string) (*model.PantryItem, error) {
	if quantity != nil {
		if _, err := s.db.Exec(
			`UPDATE pantry_items SET quantity = ?, updated_at = datetime('now') WHERE id = ?`,
			*quantity, id,
		); err != nil {
			return nil, fmt.Errorf("update pantry item quantity: %w", err)
		}
	}
	if unit != nil {
		if _, err := s.db.Exec(
			`UPDATE pantry_items SET unit = ?, updated_at = datetime('now') WHERE id = ?`,
			*unit, id,
		); err != nil {
			return nil, fmt.Errorf("update pantry item unit: %w", err)
		}
	}
	return s.GetItemByID(id)
}

func (s *PantryStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM pantry_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}
