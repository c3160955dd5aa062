package model

import "time"

// RefreshToken records an issued refresh credential by its JWT ID so
// refresh attempts can be checked against the store. A non-nil
// RevokedAt withdraws the token; revoked and expired rows are purged
// by the scheduler.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	JTI       string `gorm:"uniqueIndex"`
	UserID    uint   `gorm:"index"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
