package repository

import (
	"context"
	"time"

	"expnote/internal/domain/model"
	domainrepo "expnote/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type revokedTokenGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewRevokedTokenGormRepository(db *gorm.DB) domainrepo.RevokedTokenRepository {
	return &revokedTokenGormRepository{db: db}
}

// jtiを失効台帳に追記します。
// 既に記録済みならON CONFLICT DO NOTHINGで何もしない（logoutは冪等）。
func (r *revokedTokenGormRepository) Revoke(ctx context.Context, jti string, revokedAt time.Time) error {
	rec := &model.RevokedToken{
		JTI:       jti,
		RevokedAt: revokedAt,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "jti"}},
			DoNothing: true,
		}).
		Create(rec).Error
}

// jtiが失効済みかどうか（存在チェックのみ）。
func (r *revokedTokenGormRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// 自然失効が確実に過ぎた古い記録を削除します。
func (r *revokedTokenGormRepository) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("revoked_at < ?", cutoff).
		Delete(&model.RevokedToken{})

	if res.Error != nil {
		return 0, res.Error
	}

	return res.RowsAffected, nil
}
