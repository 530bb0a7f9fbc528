package models

import "time"

// User is a registered account. Rooms reference users only through the
// denormalized Member snapshot, so this stays in the relational store.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ProfilePic   string    `db:"profile_pic" json:"profilePic,omitempty"`
	IsVerified   bool      `db:"is_verified" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// TokenPair is issued on register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
