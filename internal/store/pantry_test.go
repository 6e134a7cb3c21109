package store

import (
	"testing"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestPantryCreateItemsBatch(t *testing.T) {
	ts := openTestDB(t)
	ownerID := ts.user(t, "owner@example.com")
	hid := ts.household(t, "Baggins", ownerID)
	pantry, _ := ts.pantries.GetByHousehold(hid)

	items, err := ts.pantries.CreateItems(pantry.ID, []NewPantryItem{
		{Name: "Flour", Quantity: 2, Unit: strPtr("kg")},
		{Name: "Eggs", Quantity: 12},
	})
	if err != nil {
		t.Fatalf("create items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Flour" || items[0].Quantity != 2 {
		t.Errorf("item = %+v, want Flour qty 2", items[0])
	}
	if items[0].Unit == nil || *items[0].Unit != "kg" {
		t.Errorf("unit = %v, want kg", items[0].Unit)
	}
	if items[1].Unit != nil {
		t.Errorf("unit = %v, want nil", items[1].Unit)
	}
}

func TestPantryCreateItemsAllOrNothing(t *testing.T) {
	ts := openTestDB(t)
	ownerID := ts.user(t, "owner@example.com")
	hid := ts.household(t, "Baggins", ownerID)
	pantry, _ := ts.pantries.GetByHousehold(hid)

	if _, err := ts.pantries.CreateItems(pantry.ID, []NewPantryItem{{Name: "Milk", Quantity: 1}}); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	// Second entry collides case-insensitively; nothing from the batch may land.
	_, err := ts.pantries.CreateItems(pantry.ID, []NewPantryItem{
		{Name: "Butter", Quantity: 1},
		{Name: "MILK", Quantity: 3},
	})
	if err == nil {
		t.Fatal("expected batch to fail on duplicate name")
	}

	items, err := ts.pantries.ListItems(pantry.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1 (no partial insert)", len(items))
	}
}

func TestPantryGetItemByNameCaseInsensitive(t *testing.T) {
	ts := openTestDB(t)
	ownerID := ts.user(t, "owner@example.com")
	hid := ts.household(t, "Baggins", ownerID)
	pantry, _ := ts.pantries.GetByHousehold(hid)

	if _, err := ts.pantries.CreateItems(pantry.ID, []NewPantryItem{{Name: "Olive Oil", Quantity: 1}}); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	item, err := ts.pantries.GetItemByName(pantry.ID, "olive oil")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if item == nil {
		t.Fatal("expected case-insensitive match")
	}
	if item.Name != "Olive Oil" {
		t.Errorf("name = %q, want original casing preserved", item.Name)
	}
}

func TestPantryUpdateItemPartial(t *testing.T) {
	ts := openTestDB(t)
	ownerID := ts.user(t, "owner@example.com")
	hid := ts.household(t, "Baggins", ownerID)
	pantry, _ := ts.pantries.GetByHousehold(hid)

	items, err := ts.pantries.CreateItems(pantry.ID, []NewPantryItem{{Name: "Rice", Quantity: 5, Unit: strPtr("kg")}})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	updated, err := ts.pantries.UpdateItem(items[0].ID, floatPtr(3), nil)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if updated.Quantity != 3 {
		t.Errorf("quantity = %v, want 3", updated.Quantity)
	}
	if updated.Unit == nil || *updated.Unit != "kg" {
		t.Errorf("unit = %v, want kg untouched", updated.Unit)
	}

	updated, err = ts.pantries.UpdateItem(items[0].ID, nil, strPtr("lb"))
	if err != nil {
		t.Fatalf("update unit: %v", err)
	}
	if updated.Quantity != 3 {
		t.Errorf("quantity = %v, want 3 untouched", updated.Quantity)
	}
	if updated.Unit == nil || *updated.Unit != "lb" {
		t.Errorf("unit = %v, want lb", updated.Unit)
	}
}

func TestPantryDeleteItem(t *testing.T) {
	ts := openTestDB(t)
	ownerID := ts.user(t, "owner@example.com")
	hid := ts.household(t, "Baggins", ownerID)
	pantry, _ := ts.pantries.GetByHousehold(hid)

	items, err := ts.pantries.CreateItems(pantry.ID, []NewPantryItem{{Name: "Salt", Quantity: 1}})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	if err := ts.pantries.DeleteItem(items[0].ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	item, err := ts.pantries.GetItemByID(items[0].ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item != nil {
		t.Error("expected item to be gone")
	}
}
