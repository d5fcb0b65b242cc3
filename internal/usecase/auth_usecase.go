package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"expnote/internal/domain/model"
	"expnote/internal/repository"
	"expnote/internal/token"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateUsername(username string) error
	ValidateEmail(email string) error
	ValidatePassword(password string) error
}

// access/refresh tokenを発行する約束
type TokenIssuer interface {
	IssueAccess(userID int64) (string, error)
	IssueRefresh(userID int64) (string, error)
}

// パスワード再設定tokenの発行・検証の約束
type ResetTokenCodec interface {
	Create(email string) (string, error)
	Verify(raw string) (string, bool)
}

// 再設定メールを送る約束
type ResetMailer interface {
	SendPasswordReset(to string, resetURL string) error
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type UserDTO struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// 登録・ログインの返却（user + 両token）
type AuthResponse struct {
	Message      string  `json:"message"`
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfileResponse struct {
	User UserDTO `json:"user"`
}

type AuthUsecase struct {
	users       repository.UserRepository
	revoked     repository.RevokedTokenRepository
	txm         repository.TransactionManager
	validator   AuthValidator
	hasher      PasswordHasher
	verifier    PasswordVerifier
	tokens      TokenIssuer
	resetCodec  ResetTokenCodec
	mailer      ResetMailer
	frontendURL string
	clock       Clock
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	revoked repository.RevokedTokenRepository,
	txm repository.TransactionManager,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	tokens TokenIssuer,
	resetCodec ResetTokenCodec,
	mailer ResetMailer,
	frontendURL string,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		revoked:     revoked,
		txm:         txm,
		validator:   validator,
		hasher:      hasher,
		verifier:    verifier,
		tokens:      tokens,
		resetCodec:  resetCodec,
		mailer:      mailer,
		frontendURL: frontendURL,
		clock:       clock,
	}
}

// 会員登録。成功したら両tokenを発行して返す。
func (u *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	//入力検証（username → email → password）
	if err := u.validator.ValidateUsername(username); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := u.validator.ValidateEmail(email); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := u.validator.ValidatePassword(req.Password); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//重複の事前チェック（email → usernameの順）。
	//あくまで親切なチェックで、最終的な保証はDBのunique制約。
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, NewHTTPError(http.StatusConflict, "email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return nil, NewHTTPError(http.StatusConflict, "username already taken")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := u.clock.Now()

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	//書き込みは1トランザクション。同時登録の競合はunique違反で片方だけ失敗する。
	err = u.txm.WithinTx(ctx, func(r repository.TxRepos) error {
		return r.Users().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, NewHTTPError(http.StatusConflict, "email or username already registered")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//token発行はcommit後の純粋な処理
	accessToken, err := u.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	refreshToken, err := u.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthResponse{
		Message:      "registration successful",
		User:         toUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ログイン。login_idはusernameまたはemail（emailのみ大文字小文字を無視）。
func (u *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	loginID := strings.TrimSpace(req.LoginID)
	if loginID == "" || req.Password == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "login_id and password are required")
	}

	//email述語だけ小文字化。usernameは大文字小文字を区別する。
	user, err := u.users.FindByLoginID(ctx, strings.ToLower(loginID), loginID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			//「ユーザーがいない」と「パスワード違い」は同じ応答（列挙攻撃対策）
			return nil, NewHTTPError(http.StatusUnauthorized, "invalid username/email or password")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//パスワード照合
	if ok := u.verifier.Verify(req.Password, user.PasswordHash); !ok {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid username/email or password")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, NewHTTPError(http.StatusForbidden, "account is disabled")
	}

	accessToken, err := u.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	refreshToken, err := u.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &AuthResponse{
		Message:      "login successful",
		User:         toUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// refresh tokenの検証はmiddleware側。ここではaccessを再発行するだけ。
// refresh token自体のローテーションや失効はしない。
func (u *AuthUsecase) Refresh(ctx context.Context, userID int64) (*RefreshResponse, error) {
	accessToken, err := u.tokens.IssueAccess(userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &RefreshResponse{AccessToken: accessToken}, nil
}

// 退出。jtiを失効台帳に追記する。
// 既に失効済みでも成功を返す（冪等）。
func (u *AuthUsecase) Logout(ctx context.Context, jti string) (*MessageResponse, error) {
	now := u.clock.Now()

	if err := u.revoked.Revoke(ctx, jti, now); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//自然失効が確実に過ぎた古い記録をついでに掃除（失敗しても続行）
	_, _ = u.revoked.DeleteRevokedBefore(ctx, now.Add(-token.RefreshTokenTTL))

	return &MessageResponse{Message: "logged out"}, nil
}

// パスワード変更（ログイン済みユーザー）。
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID int64, oldPassword string, newPassword string) (*MessageResponse, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//旧パスワード照合が先。失敗なら保存ハッシュは触らない
	if ok := u.verifier.Verify(oldPassword, user.PasswordHash); !ok {
		return nil, NewHTTPError(http.StatusBadRequest, "old password is incorrect")
	}

	if err := u.validator.ValidatePassword(newPassword); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pwHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.users.UpdatePassword(ctx, user.ID, pwHash, u.clock.Now()); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &MessageResponse{Message: "password changed"}, nil
}

// 忘却フロー。ユーザーがいてもいなくても同じメッセージを返す（列挙攻撃対策）。
func (u *AuthUsecase) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "email is required")
	}

	sent := &MessageResponse{Message: "if the email is registered, a reset link has been sent"}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return sent, nil
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	resetToken, err := u.resetCodec.Create(user.Email)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	resetURL := u.frontendURL + "/reset-password?token=" + resetToken

	if err := u.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "failed to send reset email, try again later")
	}

	return sent, nil
}

// メールのリンクから来た再設定tokenでパスワードを更新する。
func (u *AuthUsecase) ResetPassword(ctx context.Context, rawToken string, newPassword string) (*MessageResponse, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "reset token is required")
	}

	email, ok := u.resetCodec.Verify(rawToken)
	if !ok {
		return nil, NewHTTPError(http.StatusBadRequest, "reset link is invalid or expired")
	}

	if err := u.validator.ValidatePassword(newPassword); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			//tokenが正しく発行されていれば通常は来ないが、来たら404
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.users.UpdatePassword(ctx, user.ID, pwHash, u.clock.Now()); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &MessageResponse{Message: "password reset successful, please log in again"}, nil
}

// ログイン中ユーザーの情報取得。
func (u *AuthUsecase) Profile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return &ProfileResponse{User: toUserDTO(user)}, nil
}

// model.UserをAPI返却用DTOに変換。password_hashは絶対に出さない。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
