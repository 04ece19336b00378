package entity

import "time"

type User struct {
	ID         string     `db:"id"`
	Email      string     `db:"email"`
	Password   string     `db:"password"`
	Name       string     `db:"name"`
	Avatar     string     `db:"avatar"`
	IsActive   bool       `db:"is_active"`
	VerifiedAt *time.Time `db:"verified_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (u User) IsVerified() bool {
	return u.VerifiedAt != nil && !u.VerifiedAt.IsZero()
}

type UserLoginData struct {
	ID    string
	Name  string
	Email string
}
