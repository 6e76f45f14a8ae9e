package models

import "time"

// DefaultImage is the avatar reference of a user who never uploaded one.
const DefaultImage = "default.png"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // don’t expose hash
	FullName     string    `json:"fullname"`
	Age          *int      `json:"age,omitempty"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Posts is filled from the posts table at read time; it is never persisted on the user row.
	Posts []Post `json:"posts,omitempty"`
}
