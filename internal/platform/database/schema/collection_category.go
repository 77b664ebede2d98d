package schema

// CategoryTable represents the 'categories' table
type CategoryTable struct {
	Table     string
	ID        string
	UserID    string
	CreatedAt string
	SortKey   string
	Title     string
	Order     string
	Track     string
	ShowInLib string
	DeletedAt string
}

// Category is the schema definition for categories
var Category = CategoryTable{
	Table:     "categories",
	ID:        "id",
	UserID:    "user_id",
	CreatedAt: "created_at",
	SortKey:   "sort_key",
	Title:     "title",
	Order:     `"order"`,
	Track:     "track",
	ShowInLib: "show_in_lib",
	DeletedAt: "deleted_at",
}

// Columns returns all column names in insert order
func (t CategoryTable) Columns() []string {
	return []string{t.ID, t.UserID, t.CreatedAt, t.SortKey, t.Title, t.Order, t.Track, t.ShowInLib, t.DeletedAt}
}
