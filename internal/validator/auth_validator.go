package validator

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"expnote/internal/usecase"
)

var (
	//3-30文字。英数字・アンダースコア・漢字のみ
	usernameRe = regexp.MustCompile(`^[0-9A-Za-z_\x{4e00}-\x{9fa5}]+$`)

	//簡易メール形式（local@domain.tld）
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	letterRe = regexp.MustCompile(`[a-zA-Z]`)
	digitRe  = regexp.MustCompile(`[0-9]`)
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// ユーザー名を検証。長さはルーン数で数える。
func (v *authValidator) ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 3 || n > 30 {
		return errors.New("username must be 3-30 characters")
	}
	if !usernameRe.MatchString(username) {
		return errors.New("username may only contain letters, digits, underscores and CJK characters")
	}
	return nil
}

// メール形式を検証
func (v *authValidator) ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// パスワード強度を検証（最低6文字・英字1つ以上・数字1つ以上）
func (v *authValidator) ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if !letterRe.MatchString(password) {
		return errors.New("password must contain at least one letter")
	}
	if !digitRe.MatchString(password) {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
