package identity

import "time"

// User maps a customer identifier to its issued bearer token.
type User struct {
	ID          string
	CustomerXID string
	Token       string
	CreatedAt   time.Time
}
