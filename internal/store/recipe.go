package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/larder/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var ingredients string
	var mealType sql.NullString
	var prep, cook sql.NullInt64

	err := scanner.Scan(
		&r.ID, &r.HouseholdID, &r.Title, &ingredients, &r.Instructions,
		&mealType, &r.CreationMethod, &prep, &cook, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if mealType.Valid {
		r.MealType = &mealType.String
	}
	if prep.Valid {
		v := int(prep.Int64)
		r.PrepTimeMin = &v
	}
	if cook.Valid {
		v := int(cook.Int64)
		r.CookTimeMin = &v
	}
	return &r, nil
}

const recipeCols = `id, household_id, title, ingredients, instructions, meal_type, creation_method, prep_time_minutes, cook_time_minutes, created_at, updated_at`

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func (s *RecipeStore) Create(r *model.Recipe) (*model.Recipe, error) {
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO recipes (household_id, title, ingredients, instructions, meal_type, creation_method, prep_time_minutes, cook_time_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.HouseholdID, r.Title, string(ingredients), r.Instructions,
		nullString(r.MealType), r.CreationMethod, nullInt(r.PrepTimeMin), nullInt(r.CookTimeMin),
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecipeStore) GetByID(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

func (s *RecipeStore) ListByHousehold(householdID int64) ([]model.Recipe, error) {
	rows, err := s.db.Query(
		`SELECT `+recipeCols+` FROM recipes WHERE household_id = ? ORDER BY created_at DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *RecipeStore) Update(r *model.Recipe) (*model.Recipe, error) {
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE recipes SET title = ?, ingredients = ?, instructions = ?, meal_type = ?, creation_method = ?, prep_time_minutes = ?, cook_time_minutes = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		r.Title, string(ingredients), r.Instructions, nullString(r.MealType),
		r.CreationMethod, nullInt(r.PrepTimeMin), nullInt(r.CookTimeMin), r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	return s.GetByID(r.ID)
}

func (s *RecipeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
