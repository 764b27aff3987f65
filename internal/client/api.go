package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"daylist/internal/model"
)

var (
	// ErrInvalidID is returned when the server rejects an id as malformed.
	ErrInvalidID = errors.New("invalid id")

	// ErrNotFound is returned when the server reports no matching resource.
	ErrNotFound = errors.New("not found")
)

// NewItem is the payload for item creation and category seeding.
type NewItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// ItemFields is the server's response to an item update: the two fields
// that are always written together.
type ItemFields struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// API is an HTTP client for the daylist category service.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI creates an API client for the given base URL. The timeout bounds
// the whole request including body read; zero means 10 seconds.
func NewAPI(baseURL string, timeout time.Duration) *API {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListCategories fetches all categories for the given calendar date.
func (a *API) ListCategories(ctx context.Context, date model.Date) ([]model.Category, error) {
	var categories []model.Category
	err := a.do(ctx, http.MethodGet, "/categories/"+date.String(), nil, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

type createCategoryBody struct {
	Date  model.Date `json:"date"`
	Name  string     `json:"name"`
	Items []NewItem  `json:"items"`
}

// CreateCategory asks the server to create a category; the returned value
// carries the server-assigned id.
func (a *API) CreateCategory(ctx context.Context, date model.Date, name string, items []NewItem) (*model.Category, error) {
	if items == nil {
		items = []NewItem{}
	}
	var category model.Category
	body := createCategoryBody{Date: date, Name: name, Items: items}
	if err := a.do(ctx, http.MethodPost, "/categories", body, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

type addItemBody struct {
	CategoryID string  `json:"categoryId"`
	NewItem    NewItem `json:"newItem"`
}

// AddItem asks the server to append an item to a category. The item id is
// assigned server-side, which is why item creation is never purely local.
func (a *API) AddItem(ctx context.Context, categoryID string, item NewItem) (*model.Item, error) {
	var created model.Item
	body := addItemBody{CategoryID: categoryID, NewItem: item}
	if err := a.do(ctx, http.MethodPost, "/categories/items", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type renameBody struct {
	Name string `json:"name"`
}

// RenameCategory updates a category's name only.
func (a *API) RenameCategory(ctx context.Context, categoryID, name string) (*model.Category, error) {
	var category model.Category
	if err := a.do(ctx, http.MethodPatch, "/categories/"+categoryID, renameBody{Name: name}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateItem replaces an item's text and checked together.
func (a *API) UpdateItem(ctx context.Context, categoryID, itemID, text string, checked bool) (*ItemFields, error) {
	var fields ItemFields
	body := ItemFields{Text: text, Checked: checked}
	path := "/categories/items/" + categoryID + "/" + itemID
	if err := a.do(ctx, http.MethodPatch, path, body, &fields); err != nil {
		return nil, err
	}
	return &fields, nil
}

// DeleteCategory removes a category and all of its items.
func (a *API) DeleteCategory(ctx context.Context, categoryID string) error {
	return a.do(ctx, http.MethodDelete, "/categories/"+categoryID, nil, nil)
}

type errorBody struct {
	Error string `json:"error"`
}

// do runs one JSON round trip and maps error status codes onto the client's
// error taxonomy.
func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// fall through to decode
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s %s: %s: %w", method, path, readError(resp), ErrInvalidID)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %s: %w", method, path, readError(resp), ErrNotFound)
	default:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, readError(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) string {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return "unknown error"
	}
	return body.Error
}
