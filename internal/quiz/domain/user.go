package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeGeneral UserType = "general"
)

func (t UserType) Valid() bool {
	return t == UserTypeStudent || t == UserTypeGeneral
}

// User is a registered account. Email and Mobile are empty when absent.
type User struct {
	ID            string
	Name          string
	Email         string
	Mobile        string
	PasswordHash  string
	UserType      UserType
	Role          Role
	EmailVerified bool
	Disabled      bool
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
