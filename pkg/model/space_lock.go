package model

import "time"

// SpaceLock is an advisory lock document held while a space's reservations
// are checked and written. Expired locks are removed by a TTL index.
type SpaceLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
