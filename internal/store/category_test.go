package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"daylist/internal/database"
	"daylist/internal/model"
)

func setupCategoryTestDB(t *testing.T) (*CategoryStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCategoryStore(db), db
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestCreateAndGet(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	date := mustDate(t, "2024-01-01")
	c, err := cs.Create(date, "study", nil)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	if c.Name != "study" {
		t.Errorf("name = %q, want %q", c.Name, "study")
	}
	if !c.Date.Equal(date) {
		t.Errorf("date = %s, want %s", c.Date, date)
	}
	if len(c.Items) != 0 {
		t.Errorf("expected no items, got %d", len(c.Items))
	}

	got, err := cs.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("got id %q, want %q", got.ID, c.ID)
	}
}

func TestCreateWithSeedItems(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	c, err := cs.Create(mustDate(t, "2024-01-01"), "packing", []ItemInput{
		{Text: "passport", Checked: true},
		{Text: "charger"},
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if len(c.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(c.Items))
	}
	if c.Items[0].Text != "passport" || !c.Items[0].Checked {
		t.Errorf("item[0] = %+v, want passport/checked", c.Items[0])
	}
	if c.Items[1].Text != "charger" || c.Items[1].Checked {
		t.Errorf("item[1] = %+v, want charger/unchecked", c.Items[1])
	}
	if c.Items[0].ID == c.Items[1].ID {
		t.Error("items must get distinct ids")
	}
}

func TestListByDateWindow(t *testing.T) {
	cs, db := setupCategoryTestDB(t)

	date := mustDate(t, "2024-03-15")
	created, err := cs.Create(date, "at midnight", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A category stored mid-day still falls in the 15th's window.
	midday := time.Date(2024, 3, 15, 13, 30, 0, 0, time.UTC)
	if _, err := db.Exec(
		`INSERT INTO categories (id, date, name) VALUES (?, ?, ?)`,
		"7b1d8f0e-0000-4000-8000-000000000001", midday, "mid-day",
	); err != nil {
		t.Fatalf("insert mid-day category: %v", err)
	}

	// Next day's midnight is outside the half-open window.
	if _, err := cs.Create(mustDate(t, "2024-03-16"), "next day", nil); err != nil {
		t.Fatalf("create next day: %v", err)
	}

	categories, err := cs.ListByDate(date)
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories in window, got %d", len(categories))
	}
	found := false
	for _, c := range categories {
		if c.ID == created.ID {
			found = true
		}
		if c.Name == "next day" {
			t.Error("next day's category must not appear in the window")
		}
	}
	if !found {
		t.Error("midnight category missing from window")
	}

	prev, err := cs.ListByDate(mustDate(t, "2024-03-14"))
	if err != nil {
		t.Fatalf("list previous day: %v", err)
	}
	if len(prev) != 0 {
		t.Errorf("expected empty list for previous day, got %d", len(prev))
	}
}

func TestCreateThenListIncludesOnce(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	date := mustDate(t, "2024-05-05")
	created, err := cs.Create(date, "garden", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	categories, err := cs.ListByDate(date)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count := 0
	for _, c := range categories {
		if c.ID == created.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("created category appears %d times, want 1", count)
	}
}

func TestAddItemPreservesOrder(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	c, err := cs.Create(mustDate(t, "2024-01-01"), "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := cs.AddItem(c.ID, "first", false)
	if err != nil {
		t.Fatalf("add first item: %v", err)
	}
	second, err := cs.AddItem(c.ID, "second", false)
	if err != nil {
		t.Fatalf("add second item: %v", err)
	}

	got, err := cs.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].ID != first.ID || got.Items[1].ID != second.ID {
		t.Error("items not in insertion order")
	}
}

func TestUpdateItemKeepsIdentityAndPosition(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	c, err := cs.Create(mustDate(t, "2024-01-01"), "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a, _ := cs.AddItem(c.ID, "a", false)
	b, _ := cs.AddItem(c.ID, "b", false)
	z, _ := cs.AddItem(c.ID, "z", false)

	updated, err := cs.UpdateItem(c.ID, b.ID, "b edited", true)
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Text != "b edited" || !updated.Checked {
		t.Errorf("updated = %+v, want text=b edited checked=true", updated)
	}
	if updated.ID != b.ID {
		t.Errorf("item id changed on update: %q -> %q", b.ID, updated.ID)
	}

	got, err := cs.GetByID(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	wantOrder := []string{a.ID, b.ID, z.ID}
	for i, want := range wantOrder {
		if got.Items[i].ID != want {
			t.Errorf("items[%d].ID = %q, want %q", i, got.Items[i].ID, want)
		}
	}
	if got.Items[0].Text != "a" || got.Items[2].Text != "z" {
		t.Error("sibling items were perturbed by the update")
	}
}

func TestDoubleToggleRoundTrip(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	c, _ := cs.Create(mustDate(t, "2024-01-01"), "", nil)
	item, _ := cs.AddItem(c.ID, "water plants", false)

	if _, err := cs.UpdateItem(c.ID, item.ID, item.Text, true); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	after, err := cs.UpdateItem(c.ID, item.ID, item.Text, false)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if after.Checked != item.Checked {
		t.Errorf("double toggle: checked = %v, want original %v", after.Checked, item.Checked)
	}
}

func TestRenameLeavesItemsUntouched(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	c, _ := cs.Create(mustDate(t, "2024-01-01"), "old", []ItemInput{{Text: "keep me"}})
	itemID := c.Items[0].ID

	renamed, err := cs.Rename(c.ID, "new")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "new" {
		t.Errorf("name = %q, want %q", renamed.Name, "new")
	}
	if len(renamed.Items) != 1 || renamed.Items[0].ID != itemID {
		t.Error("rename must not touch items")
	}
}

func TestDeleteCascades(t *testing.T) {
	cs, db := setupCategoryTestDB(t)

	date := mustDate(t, "2024-01-01")
	c, _ := cs.Create(date, "doomed", []ItemInput{{Text: "x"}, {Text: "y"}})

	if err := cs.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := cs.GetByID(c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}

	categories, err := cs.ListByDate(date)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("expected empty list after delete, got %d", len(categories))
	}

	var orphans int
	if err := db.QueryRow(`SELECT COUNT(*) FROM items WHERE category_id = ?`, c.ID).Scan(&orphans); err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if orphans != 0 {
		t.Errorf("expected 0 orphaned items, got %d", orphans)
	}
}

func TestInvalidIDDistinctFromNotFound(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	// Malformed id: never reaches the store
	if _, err := cs.GetByID("not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("get malformed: err = %v, want ErrInvalidID", err)
	}
	if _, err := cs.Rename("123", "x"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("rename malformed: err = %v, want ErrInvalidID", err)
	}
	if err := cs.Delete(""); !errors.Is(err, ErrInvalidID) {
		t.Errorf("delete malformed: err = %v, want ErrInvalidID", err)
	}

	// Well-formed but absent
	missing := "7b1d8f0e-0000-4000-8000-00000000dead"
	if _, err := cs.GetByID(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing: err = %v, want ErrNotFound", err)
	}
	if _, err := cs.AddItem(missing, "", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("add item to missing: err = %v, want ErrNotFound", err)
	}
	if err := cs.Delete(missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateItemPairMustResolve(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	c1, _ := cs.Create(mustDate(t, "2024-01-01"), "one", nil)
	c2, _ := cs.Create(mustDate(t, "2024-01-01"), "two", nil)
	item, _ := cs.AddItem(c1.ID, "here", false)

	// Right item, wrong category
	if _, err := cs.UpdateItem(c2.ID, item.ID, "x", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-category update: err = %v, want ErrNotFound", err)
	}

	// Malformed item id
	if _, err := cs.UpdateItem(c1.ID, "bogus", "x", true); !errors.Is(err, ErrInvalidID) {
		t.Errorf("malformed item id: err = %v, want ErrInvalidID", err)
	}
}

// Full lifecycle: create, seed, edit, list, delete.
func TestCategoryLifecycle(t *testing.T) {
	cs, _ := setupCategoryTestDB(t)

	date := mustDate(t, "2024-01-01")
	c, err := cs.Create(date, "study", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := cs.AddItem(c.ID, "", false)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if item.Text != "" || item.Checked {
		t.Errorf("new item = %+v, want empty/unchecked", item)
	}

	fields, err := cs.UpdateItem(c.ID, item.ID, "read", true)
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if fields.Text != "read" || !fields.Checked {
		t.Errorf("updated = %+v, want read/checked", fields)
	}

	categories, err := cs.ListByDate(date)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}
	got := categories[0]
	if got.ID != c.ID || got.Name != "study" {
		t.Errorf("listed category = %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].ID != item.ID || got.Items[0].Text != "read" || !got.Items[0].Checked {
		t.Errorf("listed items = %+v", got.Items)
	}

	if err := cs.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	after, err := cs.ListByDate(date)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(after) != 0 {
		t.Errorf("expected empty list, got %d", len(after))
	}
}
