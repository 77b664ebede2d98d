// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package users handles reader accounts: get-or-create authentication with an
email and password, token issuing and the profile endpoint.

Sync cursors live on the user row but belong to the collection package; this
package never reads or writes them.
*/
package users

// User is a reader account.
type User struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Nickname     *string `json:"nickname"`
	PasswordHash string  `json:"-"`
}
