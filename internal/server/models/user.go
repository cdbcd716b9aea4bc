// Package models holds the server-side persistence types.
package models

import "time"

type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
