package repository

import (
	"context"
	"errors"
	"time"

	"expnote/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// unique制約違反（email/username重複）を統一
var ErrDuplicateUser = errors.New("duplicate user")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成。重複はErrDuplicateUser
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メール（小文字化済み）からユーザーを1件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	//ユーザー名からユーザーを1件取得する。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	//ログインID照合。email一致（小文字化済み）またはusername一致（大文字小文字区別）
	FindByLoginID(ctx context.Context, email string, username string) (*model.User, error)
	//パスワードハッシュとupdated_atだけを更新する
	UpdatePassword(ctx context.Context, userID int64, passwordHash string, now time.Time) error
}
