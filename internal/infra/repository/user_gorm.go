package repository

import (
	"context"
	"errors"
	"time"

	"expnote/internal/domain/model"
	domainrepo "expnote/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成。
// unique制約違反（同時登録の競合含む）はErrDuplicateUserに変換する。
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return domainrepo.ErrDuplicateUser
		}
		return err
	}
	return nil
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// emailでユーザーを1件取得
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// usernameでユーザーを1件取得
func (r *userGormRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// ログインIDで1件取得。
// 述語は2つだけ：email完全一致（呼び出し側で小文字化済み） OR username完全一致。
func (r *userGormRepository) FindByLoginID(ctx context.Context, email string, username string) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		First(&u).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// password_hashとupdated_atだけを更新します。
func (r *userGormRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    now,
		})

	if res.Error != nil {
		return res.Error
	}

	// 0件更新は「対象がない」
	if res.RowsAffected == 0 {
		return domainrepo.ErrUserNotFound
	}
	return nil
}

// PostgreSQLのunique_violation（23505）かどうか
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
