package verification

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"github.com/Skotchmaster/online_cafe/internal/repo"
)

type GormStore struct {
	Repo *repo.GormRepo
}

func NewGormStore(r *repo.GormRepo) *GormStore {
	return &GormStore{Repo: r}
}

func (s *GormStore) Save(ctx context.Context, phone string, rec Record) error {
	return s.Repo.UpsertVerificationCode(ctx, &models.VerificationCode{
		Phone:     phone,
		CodeHash:  rec.CodeHash,
		ExpiresAt: rec.ExpiresAt,
		Attempts:  rec.Attempts,
		CreatedAt: rec.CreatedAt,
	})
}

func (s *GormStore) Get(ctx context.Context, phone string) (*Record, error) {
	code, err := s.Repo.GetVerificationCode(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Record{
		CodeHash:  code.CodeHash,
		ExpiresAt: code.ExpiresAt,
		Attempts:  code.Attempts,
		CreatedAt: code.CreatedAt,
	}, nil
}

func (s *GormStore) IncrementAttempts(ctx context.Context, phone string) error {
	return s.Repo.IncrementVerificationAttempts(ctx, phone)
}

func (s *GormStore) Delete(ctx context.Context, phone string) error {
	return s.Repo.DeleteVerificationCode(ctx, phone)
}
