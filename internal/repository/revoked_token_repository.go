package repository

import (
	"context"
	"time"
)

// 失効台帳。jtiの追記と存在チェックだけを約束する。
type RevokedTokenRepository interface {
	//jtiを失効として記録する。二重登録はエラーにしない（logout冪等のため）
	Revoke(ctx context.Context, jti string, revokedAt time.Time) error
	//jtiが失効済みかどうか
	IsRevoked(ctx context.Context, jti string) (bool, error)
	//自然失効が確実に過ぎた古い記録を掃除する。戻り値は削除件数
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
