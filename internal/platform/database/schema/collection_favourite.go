package schema

// FavouriteTable represents the 'favourites' table
type FavouriteTable struct {
	Table      string
	MangaID    string
	CategoryID string
	UserID     string
	SortKey    string
	CreatedAt  string
	DeletedAt  string
}

// Favourite is the schema definition for favourites
var Favourite = FavouriteTable{
	Table:      "favourites",
	MangaID:    "manga_id",
	CategoryID: "category_id",
	UserID:     "user_id",
	SortKey:    "sort_key",
	CreatedAt:  "created_at",
	DeletedAt:  "deleted_at",
}

// Columns returns all column names in insert order
func (t FavouriteTable) Columns() []string {
	return []string{t.MangaID, t.CategoryID, t.UserID, t.SortKey, t.CreatedAt, t.DeletedAt}
}
