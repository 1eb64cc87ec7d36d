package repo

import (
	"context"

	"github.com/Skotchmaster/online_cafe/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertVerificationCode replaces any pending record for the same phone.
func (r *GormRepo) UpsertVerificationCode(ctx context.Context, code *models.VerificationCode) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "attempts", "created_at"}),
	}).Create(code).Error
}

func (r *GormRepo) GetVerificationCode(ctx context.Context, phone string) (*models.VerificationCode, error) {
	var code models.VerificationCode
	if err := r.DB.WithContext(ctx).Where("phone = ?", phone).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *GormRepo) IncrementVerificationAttempts(ctx context.Context, phone string) error {
	return r.DB.WithContext(ctx).Model(&models.VerificationCode{}).
		Where("phone = ?", phone).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *GormRepo) DeleteVerificationCode(ctx context.Context, phone string) error {
	return r.DB.WithContext(ctx).Where("phone = ?", phone).Delete(&models.VerificationCode{}).Error
}
