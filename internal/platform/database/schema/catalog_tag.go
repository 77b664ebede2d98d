package schema

// TagTable represents the 'tags' table
type TagTable struct {
	Table  string
	ID     string
	Title  string
	Key    string
	Source string
}

// Tag is the schema definition for tags
var Tag = TagTable{
	Table:  "tags",
	ID:     "id",
	Title:  "title",
	Key:    "key",
	Source: "source",
}

// Columns returns all column names in insert order
func (t TagTable) Columns() []string {
	return []string{t.ID, t.Title, t.Key, t.Source}
}
