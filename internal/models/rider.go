package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Rider is a fleet rider account. BaselineLatencyMs is the rider's
// reference reaction latency for the cognitive test; new accounts start
// from the configured default until enough history exists to tune it.
type Rider struct {
	ID                uint   `gorm:"primaryKey"`
	Username          string `gorm:"uniqueIndex"`
	Email             string
	Password          string
	Name              string
	Language          string
	BaselineLatencyMs float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CheckPassword compares a plaintext candidate against the stored hash.
func (r *Rider) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(r.Password), []byte(password))
	return err == nil
}
