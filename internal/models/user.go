package models

import "time"

// User represents a row in the users table.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // never rendered
	CreatedAt    time.Time
}

// Credentials is the form payload for /register and /login.
type Credentials struct {
	Username string
	Password string
}

// Validate checks the required-and-non-empty constraint shared by both
// auth forms. The username arrives already trimmed.
func (c Credentials) Validate() error {
	if c.Username == "" || c.Password == "" {
		return &ValidationError{Msg: "Username and password are required."}
	}
	return nil
}
