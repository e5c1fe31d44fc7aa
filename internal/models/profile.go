package models

import "time"

// UserProfile holds display metadata for a user. It carries no
// authorization weight; resolution never consults it.
type UserProfile struct {
	UserSub   string
	Email     string
	FirstName string
	CreatedAt time.Time
	UpdatedAt time.Time
}
