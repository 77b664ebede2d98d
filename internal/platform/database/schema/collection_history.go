package schema

// HistoryTable represents the 'history' table
type HistoryTable struct {
	Table     string
	MangaID   string
	UserID    string
	CreatedAt string
	UpdatedAt string
	ChapterID string
	Page      string
	Scroll    string
	Percent   string
	Chapters  string
	DeletedAt string
}

// History is the schema definition for history
var History = HistoryTable{
	Table:     "history",
	MangaID:   "manga_id",
	UserID:    "user_id",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
	ChapterID: "chapter_id",
	Page:      "page",
	Scroll:    "scroll",
	Percent:   "percent",
	Chapters:  "chapters",
	DeletedAt: "deleted_at",
}

// Columns returns all column names in insert order
func (t HistoryTable) Columns() []string {
	return []string{
		t.MangaID, t.UserID, t.CreatedAt, t.UpdatedAt, t.ChapterID,
		t.Page, t.Scroll, t.Percent, t.Chapters, t.DeletedAt,
	}
}
