package models

import "time"

// User is an account owning recipes and meal plans. Single-user deployments
// run against the seeded default user.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
