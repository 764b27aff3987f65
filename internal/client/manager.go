package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"daylist/internal/model"
)

// localIDPrefix marks optimistic entries that have not been confirmed by
// the server yet. Ids with this prefix never leave the client.
const localIDPrefix = "pending:"

const (
	defaultRequestTimeout   = 5 * time.Second
	defaultDebounceInterval = 300 * time.Millisecond
)

// Options configures a Manager.
type Options struct {
	BaseURL string
	// RequestTimeout bounds each remote call. Zero means 5s.
	RequestTimeout time.Duration
	// DebounceInterval is the trailing-edge delay for item text syncs.
	// Zero means 300ms.
	DebounceInterval time.Duration
	Logger           *slog.Logger
}

// Manager holds the in-memory categories for the selected date and keeps
// them in sync with the server. Local edits apply immediately; the matching
// remote call runs in its own goroutine with a per-request timeout and is
// never retried. On failure the local state keeps the last-known-good
// optimistic value, except for the two cases below:
//
//   - an optimistic AddCategory entry is rolled back when its create fails,
//     so a dead entry cannot collect edits that have nowhere to go;
//   - DeleteCategory is not optimistic at all and removes the entry only
//     after the server confirms.
type Manager struct {
	api      *API
	state    *State
	logger   *slog.Logger
	timeout  time.Duration
	debounce *debouncer
	wg       sync.WaitGroup

	// tombstones records temp ids deleted while their create was still in
	// flight, so the reconcile can delete the server copy instead of
	// resurrecting it.
	mu         sync.Mutex
	tombstones map[string]struct{}
}

// NewManager creates a Manager. Call SelectDate before issuing edits.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	interval := opts.DebounceInterval
	if interval == 0 {
		interval = defaultDebounceInterval
	}
	return &Manager{
		api:        NewAPI(opts.BaseURL, timeout),
		state:      NewState(),
		logger:     logger.With("component", "client"),
		timeout:    timeout,
		debounce:   newDebouncer(interval),
		tombstones: make(map[string]struct{}),
	}
}

// SelectDate replaces the selected date and refreshes the category list
// from the server. Local-only state for the previous date is discarded
// immediately; nothing is merged across dates.
func (m *Manager) SelectDate(date model.Date) {
	m.state.Reset(date, nil)

	m.async(func(ctx context.Context) {
		categories, err := m.api.ListCategories(ctx, date)
		if err != nil {
			m.logger.Error("fetch categories", "date", date.String(), "error", err)
			return
		}
		m.state.apply(date, func([]model.Category) []model.Category {
			return cloneCategories(categories)
		})
	})
}

// SelectedDate returns the currently selected date.
func (m *Manager) SelectedDate() model.Date {
	return m.state.Date()
}

// Categories returns a deep copy of the current in-memory list.
func (m *Manager) Categories() []model.Category {
	return m.state.Snapshot()
}

// AddCategory optimistically appends an empty category for the selected
// date and asks the server to create it. On success the temporary id is
// swapped for the server-assigned one in place; on failure the optimistic
// entry is removed. Returns the temporary id.
func (m *Manager) AddCategory() string {
	date := m.state.Date()
	tempID := localIDPrefix + uuid.NewString()

	m.state.apply(date, func(categories []model.Category) []model.Category {
		return appendCategory(categories, model.Category{
			ID:    tempID,
			Date:  date,
			Name:  "",
			Items: []model.Item{},
		})
	})

	m.async(func(ctx context.Context) {
		created, err := m.api.CreateCategory(ctx, date, "", nil)
		if err != nil {
			m.logger.Error("create category", "error", err)
			m.takeTombstone(tempID)
			m.state.apply(date, func(categories []model.Category) []model.Category {
				return removeCategory(categories, tempID)
			})
			return
		}
		if m.takeTombstone(tempID) {
			// Deleted while the create was in flight; remove the server
			// copy so it cannot resurface on the next fetch.
			if err := m.api.DeleteCategory(ctx, created.ID); err != nil {
				m.logger.Error("delete reconciled category", "category_id", created.ID, "error", err)
			}
			return
		}
		m.state.apply(date, func(categories []model.Category) []model.Category {
			return replaceCategory(categories, tempID, *created)
		})
	})

	return tempID
}

// RenameCategory renames locally right away and persists asynchronously
// with a single attempt. Renames of a still-pending category stay local;
// the entry has no server identity to address yet.
func (m *Manager) RenameCategory(categoryID, name string) {
	date := m.state.Date()
	m.state.apply(date, func(categories []model.Category) []model.Category {
		return renameCategory(categories, categoryID, name)
	})

	if isLocalID(categoryID) {
		return
	}

	m.async(func(ctx context.Context) {
		if _, err := m.api.RenameCategory(ctx, categoryID, name); err != nil {
			m.logger.Error("rename category", "category_id", categoryID, "error", err)
		}
	})
}

// AddItem asks the server for a new empty item and appends it to the
// category once the call resolves. Item creation is never purely local:
// the id must be server-assigned before any later edit can reference it.
func (m *Manager) AddItem(categoryID string) {
	if isLocalID(categoryID) {
		m.logger.Warn("add item to unconfirmed category skipped", "category_id", categoryID)
		return
	}
	date := m.state.Date()

	m.async(func(ctx context.Context) {
		item, err := m.api.AddItem(ctx, categoryID, NewItem{})
		if err != nil {
			m.logger.Error("add item", "category_id", categoryID, "error", err)
			return
		}
		m.state.apply(date, func(categories []model.Category) []model.Category {
			return appendItem(categories, categoryID, *item)
		})
	})
}

// SetItemText applies the new text locally on every call and schedules a
// trailing-edge debounced sync. The sync reads the item's state at send
// time and always carries both text and checked, matching the persistence
// contract that updates the two fields together.
func (m *Manager) SetItemText(categoryID, itemID, text string) {
	date := m.state.Date()
	current, ok := m.state.item(categoryID, itemID)
	if !ok {
		return
	}
	m.state.apply(date, func(categories []model.Category) []model.Category {
		return setItemFields(categories, categoryID, itemID, text, current.Checked)
	})

	m.debounce.trigger(categoryID+"/"+itemID, func() {
		m.syncItem(categoryID, itemID)
	})
}

// ToggleItemChecked flips the checked flag locally and syncs immediately,
// sending the item's current text along with the new value.
func (m *Manager) ToggleItemChecked(categoryID, itemID string) {
	date := m.state.Date()
	current, ok := m.state.item(categoryID, itemID)
	if !ok {
		return
	}
	m.state.apply(date, func(categories []model.Category) []model.Category {
		return setItemFields(categories, categoryID, itemID, current.Text, !current.Checked)
	})

	m.syncItem(categoryID, itemID)
}

// syncItem pushes an item's current text and checked to the server.
func (m *Manager) syncItem(categoryID, itemID string) {
	item, ok := m.state.item(categoryID, itemID)
	if !ok {
		// Category was deleted or the date changed since the edit
		return
	}

	m.async(func(ctx context.Context) {
		if _, err := m.api.UpdateItem(ctx, categoryID, itemID, item.Text, item.Checked); err != nil {
			m.logger.Error("update item", "category_id", categoryID, "item_id", itemID, "error", err)
		}
	})
}

// DeleteCategory removes the category locally only after the server
// confirms the delete. Destructive actions are the one place the manager
// waits for the server before touching local state.
func (m *Manager) DeleteCategory(categoryID string) {
	date := m.state.Date()

	if isLocalID(categoryID) {
		// Not confirmed yet; drop it locally and leave a tombstone so a
		// create that still resolves deletes the server copy.
		m.markTombstone(categoryID)
		m.state.apply(date, func(categories []model.Category) []model.Category {
			return removeCategory(categories, categoryID)
		})
		return
	}

	m.async(func(ctx context.Context) {
		if err := m.api.DeleteCategory(ctx, categoryID); err != nil {
			m.logger.Error("delete category", "category_id", categoryID, "error", err)
			return
		}
		m.state.apply(date, func(categories []model.Category) []model.Category {
			return removeCategory(categories, categoryID)
		})
	})
}

// Flush fires all pending debounced syncs and waits for every in-flight
// remote call to finish. Used on shutdown and by tests.
func (m *Manager) Flush() {
	m.debounce.flush()
	m.wg.Wait()
}

// Close flushes outstanding work and stops the debouncer.
func (m *Manager) Close() {
	m.Flush()
	m.debounce.stop()
}

// async runs fn in its own goroutine under the per-request timeout.
// Calls are fire-and-forget: the caller never blocks on the network.
func (m *Manager) async(fn func(ctx context.Context)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		fn(ctx)
	}()
}

func (m *Manager) markTombstone(tempID string) {
	m.mu.Lock()
	m.tombstones[tempID] = struct{}{}
	m.mu.Unlock()
}

// takeTombstone reports whether the temp id was deleted while pending and
// clears the record.
func (m *Manager) takeTombstone(tempID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tombstones[tempID]
	delete(m.tombstones, tempID)
	return ok
}

func isLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}
