package domain

import "strings"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == "admin" }

// Is compares by id when both sides have one, else by email.
func (u User) Is(o User) bool {
	if u.ID != 0 && o.ID != 0 {
		return u.ID == o.ID
	}
	return u.Email != "" && strings.EqualFold(u.Email, o.Email)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ProfileUpdate struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
