package model

// Category is a named group of to-do items scoped to a single calendar day.
// The date is fixed at creation; only the name and item list change afterward.
type Category struct {
	ID    string `json:"id"`
	Date  Date   `json:"date"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item is one checkable entry in a category. Its ID is assigned by the
// server and never changes across text or checked edits.
type Item struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}
