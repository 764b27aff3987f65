package client

import (
	"sync"

	"daylist/internal/model"
)

// State is the container for the categories of the currently selected date.
// All updates go through pure per-action functions that copy what they
// change and leave every id and the item order untouched, so an entry's
// identity survives any number of edits.
type State struct {
	mu         sync.RWMutex
	date       model.Date
	categories []model.Category
}

func NewState() *State {
	return &State{}
}

// Reset replaces the selected date and the whole category list. Any
// local-only entries for the previous date are discarded; state is never
// merged across dates.
func (s *State) Reset(date model.Date, categories []model.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = date
	s.categories = cloneCategories(categories)
}

// Date returns the currently selected date.
func (s *State) Date() model.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.date
}

// Snapshot returns a deep copy of the current category list.
func (s *State) Snapshot() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.categories)
}

// apply runs one update function against the current list, but only when
// the state is still on the date the action was issued for. Responses that
// resolve after the user moved to another date are dropped.
func (s *State) apply(date model.Date, fn func([]model.Category) []model.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.date.Equal(date) {
		return
	}
	s.categories = fn(s.categories)
}

// item returns a copy of one item, used to read the current checked value
// before a text sync and vice versa.
func (s *State) item(categoryID, itemID string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.categories {
		if s.categories[i].ID != categoryID {
			continue
		}
		for _, item := range s.categories[i].Items {
			if item.ID == itemID {
				return item, true
			}
		}
	}
	return model.Item{}, false
}

// --- pure update functions ---

func cloneCategories(categories []model.Category) []model.Category {
	out := make([]model.Category, len(categories))
	for i, c := range categories {
		out[i] = c
		out[i].Items = make([]model.Item, len(c.Items))
		copy(out[i].Items, c.Items)
	}
	return out
}

// appendCategory adds a category at the end of the list.
func appendCategory(categories []model.Category, c model.Category) []model.Category {
	out := make([]model.Category, len(categories), len(categories)+1)
	copy(out, categories)
	return append(out, c)
}

// replaceCategory swaps the entry with the given id for the replacement,
// keeping its position in the list. Used to reconcile an optimistic entry
// with the server-assigned identity.
func replaceCategory(categories []model.Category, id string, replacement model.Category) []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	for i := range out {
		if out[i].ID == id {
			out[i] = replacement
			break
		}
	}
	return out
}

// removeCategory drops the entry with the given id.
func removeCategory(categories []model.Category, id string) []model.Category {
	out := make([]model.Category, 0, len(categories))
	for _, c := range categories {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// renameCategory sets the name of one category; its id and items are untouched.
func renameCategory(categories []model.Category, id, name string) []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	for i := range out {
		if out[i].ID == id {
			out[i].Name = name
			break
		}
	}
	return out
}

// appendItem adds an item to the end of a category's item list.
func appendItem(categories []model.Category, categoryID string, item model.Item) []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	for i := range out {
		if out[i].ID != categoryID {
			continue
		}
		items := make([]model.Item, len(out[i].Items), len(out[i].Items)+1)
		copy(items, out[i].Items)
		out[i].Items = append(items, item)
		break
	}
	return out
}

// setItemFields replaces an item's text and checked in place. The item's id
// and its position in the sequence never change.
func setItemFields(categories []model.Category, categoryID, itemID, text string, checked bool) []model.Category {
	out := make([]model.Category, len(categories))
	copy(out, categories)
	for i := range out {
		if out[i].ID != categoryID {
			continue
		}
		items := make([]model.Item, len(out[i].Items))
		copy(items, out[i].Items)
		for j := range items {
			if items[j].ID == itemID {
				items[j].Text = text
				items[j].Checked = checked
				break
			}
		}
		out[i].Items = items
		break
	}
	return out
}
