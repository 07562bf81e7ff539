package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	PNO          string    `json:"pno"`
	FullName     string    `json:"full_name"`
	Rank         string    `json:"rank,omitempty"`
	Designation  string    `json:"designation,omitempty"`
	PasswordHash string    `json:"-"`
	PINHash      string    `json:"-"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"date_joined"`
}
