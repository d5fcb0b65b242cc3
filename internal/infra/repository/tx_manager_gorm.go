package repository

import (
	"context"

	repo "expnote/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users         repo.UserRepository
	revokedTokens repo.RevokedTokenRepository
}

func (r *txReposGorm) Users() repo.UserRepository                 { return r.users }
func (r *txReposGorm) RevokedTokens() repo.RevokedTokenRepository { return r.revokedTokens }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			users:         NewUserGormRepository(tx),
			revokedTokens: NewRevokedTokenGormRepository(tx),
		}
		return fn(r)
	})
}
