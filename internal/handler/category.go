package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"daylist/internal/event"
	"daylist/internal/model"
	"daylist/internal/store"
	"daylist/internal/websocket"
)

// CategoryHandler serves the category/item CRUD surface. Every successful
// mutation is broadcast on the websocket hub and, when a publisher is
// configured, emitted as an AMQP change event.
type CategoryHandler struct {
	categories *store.CategoryStore
	hub        *websocket.Hub
	events     *event.Publisher
	logger     *slog.Logger
}

func NewCategoryHandler(cs *store.CategoryStore, hub *websocket.Hub, events *event.Publisher, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: cs, hub: hub, events: events, logger: logger}
}

func (h *CategoryHandler) notify(ctx context.Context, entity, action, categoryID, itemID, date string) {
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage(entity, action, categoryID, itemID, date))
	}
	if h.events != nil {
		msg := event.NewChangeMessage(entity, action, categoryID, itemID, date)
		if err := h.events.Publish(ctx, msg); err != nil {
			h.logger.Error("publish change event", "entity", entity, "action", action, "error", err)
		}
	}
}

type createCategoryRequest struct {
	Date  model.Date        `json:"date"`
	Name  string            `json:"name"`
	Items []store.ItemInput `json:"items"`
}

// List handles GET /categories/{date}.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := model.ParseDate(r.PathValue("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	categories, err := h.categories.ListByDate(date)
	if err != nil {
		h.logger.Error("list categories", "date", date.String(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list categories"})
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Date.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}

	category, err := h.categories.Create(req.Date, req.Name, req.Items)
	if err != nil {
		h.logger.Error("create category", "date", req.Date.String(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create category"})
		return
	}

	h.notify(r.Context(), "category", event.ActionCreated, category.ID, "", category.Date.String())

	writeJSON(w, http.StatusCreated, category)
}

type addItemRequest struct {
	CategoryID string          `json:"categoryId"`
	NewItem    store.ItemInput `json:"newItem"`
}

// AddItem handles POST /categories/items.
func (h *CategoryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.categories.AddItem(req.CategoryID, req.NewItem.Text, req.NewItem.Checked)
	if err != nil {
		h.storeError(w, err, "add item", "category_id", req.CategoryID)
		return
	}

	h.notify(r.Context(), "item", event.ActionCreated, req.CategoryID, item.ID, "")

	writeJSON(w, http.StatusCreated, item)
}

type renameCategoryRequest struct {
	Name string `json:"name"`
}

// Rename handles PATCH /categories/{id}. Only the name changes; the item
// list is untouched.
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req renameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	category, err := h.categories.Rename(id, req.Name)
	if err != nil {
		h.storeError(w, err, "rename category", "category_id", id)
		return
	}

	h.notify(r.Context(), "category", event.ActionRenamed, category.ID, "", category.Date.String())

	writeJSON(w, http.StatusOK, category)
}

type updateItemRequest struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

type updateItemResponse struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// UpdateItem handles PATCH /categories/items/{categoryId}/{itemId}.
// Both fields are replaced together; the storage layer never writes one
// without the other.
func (h *CategoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryId")
	itemID := r.PathValue("itemId")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.categories.UpdateItem(categoryID, itemID, req.Text, req.Checked)
	if err != nil {
		h.storeError(w, err, "update item", "category_id", categoryID, "item_id", itemID)
		return
	}

	h.notify(r.Context(), "item", event.ActionUpdated, categoryID, itemID, "")

	writeJSON(w, http.StatusOK, updateItemResponse{Text: item.Text, Checked: item.Checked})
}

// Delete handles DELETE /categories/{id}. Items go with the category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.categories.Delete(id); err != nil {
		h.storeError(w, err, "delete category", "category_id", id)
		return
	}

	h.notify(r.Context(), "category", event.ActionDeleted, id, "", "")

	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// storeError maps store errors onto the response taxonomy: malformed id →
// 400, missing resource → 404, anything else → 500.
func (h *CategoryHandler) storeError(w http.ResponseWriter, err error, op string, logArgs ...any) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		h.logger.Error(op, append(logArgs, "error", err)...)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to " + op})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
