package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The db tags drive sqlx scanning; handlers define
// separate response types so HashedPassword never leaves the
// service layer.
//
// Fields:
//  ID             – primary key identifier of the user.
//  FullName       – display name given at signup.
//  Username       – unique login name; also the token subject.
//  Email          – unique email address.
//  HashedPassword – bcrypt hashed password.
//  CreatedAt      – timestamp of creation.
type User struct {
	ID             uint64    `db:"user_id"`         // users.user_id
	FullName       string    `db:"full_name"`       // users.full_name
	Username       string    `db:"username"`        // users.username
	Email          string    `db:"email"`           // users.email
	HashedPassword string    `db:"hashed_password"` // users.hashed_password
	CreatedAt      time.Time `db:"created_at"`      // users.created_at
}
