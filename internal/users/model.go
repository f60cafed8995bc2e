package users

import "time"

// DefaultCredits is granted to every new user on first sign-in.
const DefaultCredits = 2

type User struct {
	ID          int64     `json:"-"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Image       string    `json:"image"`
	Credits     int       `json:"credits"`
	Role        string    `json:"role"`
	FreeGranted bool      `json:"freeGranted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
