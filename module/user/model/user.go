package model

import "time"

// User account. PasswordHash is bcrypt and never leaves the process; the
// wire shape is PublicUser.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Friends      []string  `bson:"friends" json:"friends"`
	CreateTime   time.Time `bson:"create_time" json:"-"`
}

type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
