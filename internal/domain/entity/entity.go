package entity

import (
	"time"
)

type Message struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
