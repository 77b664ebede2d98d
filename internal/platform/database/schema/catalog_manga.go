package schema

// MangaTable represents the 'manga' table
type MangaTable struct {
	Table         string
	ID            string
	Title         string
	AltTitle      string
	URL           string
	PublicURL     string
	Rating        string
	IsNSFW        string
	CoverURL      string
	LargeCoverURL string
	State         string
	Author        string
	Source        string
}

// Manga is the schema definition for manga
var Manga = MangaTable{
	Table:         "manga",
	ID:            "id",
	Title:         "title",
	AltTitle:      "alt_title",
	URL:           "url",
	PublicURL:     "public_url",
	Rating:        "rating",
	IsNSFW:        "is_nsfw",
	CoverURL:      "cover_url",
	LargeCoverURL: "large_cover_url",
	State:         "state",
	Author:        "author",
	Source:        "source",
}

// Columns returns all column names in insert order
func (t MangaTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.AltTitle, t.URL, t.PublicURL, t.Rating, t.IsNSFW,
		t.CoverURL, t.LargeCoverURL, t.State, t.Author, t.Source,
	}
}
