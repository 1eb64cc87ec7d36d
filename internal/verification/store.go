// Package verification stores pending phone verification codes.
package verification

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("verification code not found")

type Record struct {
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code can no longer be used at now.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

type Store interface {
	// Save replaces any record held for phone.
	Save(ctx context.Context, phone string, rec Record) error
	Get(ctx context.Context, phone string) (*Record, error)
	IncrementAttempts(ctx context.Context, phone string) error
	Delete(ctx context.Context, phone string) error
}
