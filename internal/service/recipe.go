package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/recipegen"
	"github.com/dukerupert/larder/internal/store"
)

// RecipeGenerator produces a recipe from a free-form request, typically
// backed by an external text-generation provider.
type RecipeGenerator interface {
	Generate(ctx context.Context, req recipegen.Request) (*recipegen.GeneratedRecipe, error)
}

// RecipeInput is the caller-supplied recipe shape for create and update.
type RecipeInput struct {
	Title        string             `json:"title"`
	Ingredients  []model.Ingredient `json:"ingredients"`
	Instructions string             `json:"instructions"`
	MealType     *string            `json:"meal_type,omitempty"`
	PrepTimeMin  *int               `json:"prep_time_minutes,omitempty"`
	CookTimeMin  *int               `json:"cook_time_minutes,omitempty"`
}

// GenerateInput describes an AI generation request.
type GenerateInput struct {
	Hint           string `json:"hint"`
	MealType       string `json:"meal_type,omitempty"`
	UsePantryItems bool   `json:"use_pantry_items,omitempty"`
}

// RecipeService manages household recipes, manual and generated.
type RecipeService struct {
	recipes    *store.RecipeStore
	households *store.HouseholdStore
	pantry     *PantryService
	generator  RecipeGenerator
	logger     *slog.Logger
}

func NewRecipeService(rs *store.RecipeStore, hs *store.HouseholdStore, pantry *PantryService, generator RecipeGenerator, logger *slog.Logger) *RecipeService {
	return &RecipeService{recipes: rs, households: hs, pantry: pantry, generator: generator, logger: logger}
}

func (s *RecipeService) requireMember(householdID, userID int64) error {
	member, err := s.households.GetMember(householdID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	return nil
}

func validateRecipeInput(in RecipeInput) error {
	var fields []FieldError
	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "is required"})
	}
	if len(in.Ingredients) == 0 {
		fields = append(fields, FieldError{Field: "ingredients", Message: "at least one ingredient is required"})
	}
	for i, ing := range in.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			fields = append(fields, FieldError{Field: fmt.Sprintf("ingredients[%d].name", i), Message: "is required"})
		}
	}
	if strings.TrimSpace(in.Instructions) == "" {
		fields = append(fields, FieldError{Field: "instructions", Message: "is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *RecipeService) Create(householdID, userID int64, in RecipeInput) (*model.Recipe, error) {
	if err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}
	if err := validateRecipeInput(in); err != nil {
		return nil, err
	}
	recipe := &model.Recipe{
		HouseholdID:    householdID,
		Title:          strings.TrimSpace(in.Title),
		Ingredients:    in.Ingredients,
		Instructions:   in.Instructions,
		MealType:       in.MealType,
		CreationMethod: model.CreationManual,
		PrepTimeMin:    in.PrepTimeMin,
		CookTimeMin:    in.CookTimeMin,
	}
	return s.recipes.Create(recipe)
}

func (s *RecipeService) List(householdID, userID int64) ([]model.Recipe, error) {
	if err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}
	return s.recipes.ListByHousehold(householdID)
}

func (s *RecipeService) recipeFor(householdID, recipeID int64) (*model.Recipe, error) {
	recipe, err := s.recipes.GetByID(recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil || recipe.HouseholdID != householdID {
		return nil, ErrNotFound
	}
	return recipe, nil
}

func (s *RecipeService) Get(householdID, userID, recipeID int64) (*model.Recipe, error) {
	if err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}
	return s.recipeFor(householdID, recipeID)
}

// Update replaces a recipe's content. Editing an AI-generated recipe
// marks it as modified.
func (s *RecipeService) Update(householdID, userID, recipeID int64, in RecipeInput) (*model.Recipe, error) {
	if err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}
	if err := validateRecipeInput(in); err != nil {
		return nil, err
	}
	recipe, err := s.recipeFor(householdID, recipeID)
	if err != nil {
		return nil, err
	}

	recipe.Title = strings.TrimSpace(in.Title)
	recipe.Ingredients = in.Ingredients
	recipe.Instructions = in.Instructions
	recipe.MealType = in.MealType
	recipe.PrepTimeMin = in.PrepTimeMin
	recipe.CookTimeMin = in.CookTimeMin
	if recipe.CreationMethod == model.CreationAI {
		recipe.CreationMethod = model.CreationAIModified
	}
	return s.recipes.Update(recipe)
}

func (s *RecipeService) Delete(householdID, userID, recipeID int64) error {
	if err := s.requireMember(householdID, userID); err != nil {
		return err
	}
	recipe, err := s.recipeFor(householdID, recipeID)
	if err != nil {
		return err
	}
	return s.recipes.Delete(recipe.ID)
}

// Generate asks the provider for a recipe and persists it as ai_generated.
// Provider failures pass through unwrapped so callers can classify them.
func (s *RecipeService) Generate(ctx context.Context, householdID, userID int64, in GenerateInput) (*model.Recipe, error) {
	if err := s.requireMember(householdID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Hint) == "" {
		return nil, invalid("hint", "is required")
	}

	req := recipegen.Request{Hint: in.Hint, MealType: in.MealType}
	if in.UsePantryItems {
		names, err := s.pantry.ItemNames(householdID, userID)
		if err != nil {
			return nil, err
		}
		req.PantryItems = names
	}

	generated, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		HouseholdID:    householdID,
		Title:          generated.Title,
		Ingredients:    generated.Ingredients,
		Instructions:   generated.Instructions,
		MealType:       generated.MealType,
		CreationMethod: model.CreationAI,
		PrepTimeMin:    generated.PrepTimeMin,
		CookTimeMin:    generated.CookTimeMin,
	}
	saved, err := s.recipes.Create(recipe)
	if err != nil {
		return nil, fmt.Errorf("save generated recipe: %w", err)
	}
	return saved, nil
}
