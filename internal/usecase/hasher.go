package usecase

import "golang.org/x/crypto/bcrypt"

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化。saltは毎回ランダムなので同じ入力でも出力は毎回違う。
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較。壊れたハッシュはfalse（panicしない）。
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
