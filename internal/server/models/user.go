package models

import "time"

// User is the identity record. Watchlist and Portfolio are embedded and
// persisted together with the user.
type User struct {
	ID           string           `json:"id" bson:"_id"`
	Name         string           `json:"name" bson:"name"`
	Email        string           `json:"email" bson:"email"`
	PasswordHash string           `json:"-" bson:"password"`
	CreatedAt    time.Time        `json:"createdAt" bson:"createdAt"`
	Watchlist    []WatchlistEntry `json:"watchlist" bson:"watchlist"`
	Portfolio    []Holding        `json:"portfolio" bson:"portfolio"`
}

// Profile is the public view of a User.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Clone returns a deep copy so callers can mutate collections without
// touching the original.
func (u *User) Clone() *User {
	c := *u
	c.Watchlist = append([]WatchlistEntry(nil), u.Watchlist...)
	c.Portfolio = append([]Holding(nil), u.Portfolio...)
	return &c
}
