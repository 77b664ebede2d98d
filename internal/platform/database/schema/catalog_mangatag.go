package schema

// MangaTagTable represents the 'manga_tags' join table
type MangaTagTable struct {
	Table   string
	MangaID string
	TagID   string
}

// MangaTag is the schema definition for manga_tags
var MangaTag = MangaTagTable{
	Table:   "manga_tags",
	MangaID: "manga_id",
	TagID:   "tag_id",
}

// Columns returns all column names in insert order
func (t MangaTagTable) Columns() []string {
	return []string{t.MangaID, t.TagID}
}
