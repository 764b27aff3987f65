package store

import (
	"database/sql"
	"fmt"

	"daylist/internal/model"
)

// CategoryStore persists date-scoped categories and their nested items.
type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

type ItemInput struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var checked int
	if err := scanner.Scan(&item.ID, &item.Text, &checked); err != nil {
		return nil, err
	}
	item.Checked = checked != 0
	return &item, nil
}

const itemCols = `id, text, checked`

// ListByDate returns all categories whose date falls in the half-open
// window [date, date+24h), each with its items in insertion order.
func (s *CategoryStore) ListByDate(date model.Date) ([]model.Category, error) {
	start, end := date.DayWindow()
	rows, err := s.db.Query(
		`SELECT id, date, name FROM categories WHERE date >= ? AND date < ? ORDER BY created_at ASC, id ASC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range categories {
		items, err := s.listItems(categories[i].ID)
		if err != nil {
			return nil, err
		}
		categories[i].Items = items
	}
	return categories, nil
}

func scanCategoryRow(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	var date sql.NullTime
	if err := scanner.Scan(&c.ID, &date, &c.Name); err != nil {
		return nil, err
	}
	if date.Valid {
		c.Date = model.DateOf(date.Time)
	}
	c.Items = []model.Item{}
	return &c, nil
}

func (s *CategoryStore) listItems(categoryID string) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM items WHERE category_id = ? ORDER BY position ASC`,
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Create persists a new category for the given date. The category id and
// the ids of any seed items are assigned here; clients never supply ids.
func (s *CategoryStore) Create(date model.Date, name string, items []ItemInput) (*model.Category, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create category: %w", err)
	}
	defer tx.Rollback()

	id := newID()
	if _, err := tx.Exec(
		`INSERT INTO categories (id, date, name) VALUES (?, ?, ?)`,
		id, date.Time(), name,
	); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	for pos, in := range items {
		if _, err := tx.Exec(
			`INSERT INTO items (id, category_id, text, checked, position) VALUES (?, ?, ?, ?, ?)`,
			newID(), id, in.Text, boolToInt(in.Checked), pos,
		); err != nil {
			return nil, fmt.Errorf("insert seed item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create category: %w", err)
	}

	return s.GetByID(id)
}

// GetByID returns the category with its items, ErrNotFound when absent.
func (s *CategoryStore) GetByID(id string) (*model.Category, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`SELECT id, date, name FROM categories WHERE id = ?`, id)
	c, err := scanCategoryRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	items, err := s.listItems(id)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

// AddItem appends a new item to the category, assigning its id and the
// next position in insertion order.
func (s *CategoryStore) AddItem(categoryID, text string, checked bool) (*model.Item, error) {
	if err := validateID(categoryID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin add item: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM categories WHERE id = ?`, categoryID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	id := newID()
	if _, err := tx.Exec(
		`INSERT INTO items (id, category_id, text, checked, position)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM items WHERE category_id = ?))`,
		id, categoryID, text, boolToInt(checked), categoryID,
	); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	row := tx.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add item: %w", err)
	}
	return item, nil
}

// Rename updates the category name only; items are untouched.
func (s *CategoryStore) Rename(categoryID, name string) (*model.Category, error) {
	if err := validateID(categoryID); err != nil {
		return nil, err
	}

	result, err := s.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, categoryID)
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rename rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(categoryID)
}

// UpdateItem replaces both text and checked in one statement. The item is
// addressed by the (category, item) pair; sibling items are never touched,
// so their ids and positions are stable by construction.
func (s *CategoryStore) UpdateItem(categoryID, itemID, text string, checked bool) (*model.Item, error) {
	if err := validateID(categoryID); err != nil {
		return nil, err
	}
	if err := validateID(itemID); err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`UPDATE items SET text = ?, checked = ? WHERE id = ? AND category_id = ?`,
		text, boolToInt(checked), itemID, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update item rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, itemID)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("get updated item: %w", err)
	}
	return item, nil
}

// Delete removes the category and, via the foreign key cascade, all of its
// items. Irreversible; the id is never reused (ids are random).
func (s *CategoryStore) Delete(categoryID string) error {
	if err := validateID(categoryID); err != nil {
		return err
	}

	result, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, categoryID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
