package types

import "time"

// User is an authenticated journal owner. The ledger core only ever sees the
// ID; credentials stay inside the auth collaborator.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session identifies an authenticated caller. Operations receive it
// explicitly; there is no ambient current-user state.
type Session struct {
	UserID string
	Token  string
}
