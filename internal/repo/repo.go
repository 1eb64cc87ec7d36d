package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrCartChanged means the cart rows removed at checkout differ from the rows priced.
	ErrCartChanged      = errors.New("cart changed during checkout")
	ErrProductGone      = errors.New("product no longer available")
	ErrTokenUnavailable = errors.New("token expired or revoked")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
