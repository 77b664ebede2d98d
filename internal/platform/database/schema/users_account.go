package schema

// UserAccountTable represents the 'users' table
type UserAccountTable struct {
	Table                   string
	ID                      string
	Email                   string
	Password                string
	Nickname                string
	FavouritesSyncTimestamp string
	HistorySyncTimestamp    string
}

// UserAccount is the schema definition for users
var UserAccount = UserAccountTable{
	Table:                   "users",
	ID:                      "id",
	Email:                   "email",
	Password:                "password_hash",
	Nickname:                "nickname",
	FavouritesSyncTimestamp: "favourites_sync_timestamp",
	HistorySyncTimestamp:    "history_sync_timestamp",
}

// Columns returns the columns scanned into a user record, password hash last
func (t UserAccountTable) Columns() []string {
	return []string{t.ID, t.Email, t.Nickname, t.Password}
}
