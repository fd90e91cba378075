package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PublicUser — то, что можно отдавать наружу и класть в контекст запроса.
type PublicUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u *User) Public() *PublicUser {
	name := u.FullName
	if name == "" {
		name = u.Username
	}
	return &PublicUser{ID: u.ID, Email: u.Email, Name: name, Role: u.Role}
}
