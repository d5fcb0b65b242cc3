package validator_test

import (
	"strings"
	"testing"

	"expnote/internal/validator"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	v := validator.NewAuthValidator()

	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"too short", "ab", true},
		{"min length", "abc", false},
		{"normal", "valid_user1", false},
		{"cjk", "你好123", false},
		{"space", "bad space", true},
		{"hyphen", "bad-name", true},
		{"too long", strings.Repeat("a", 31), true},
		{"max length", strings.Repeat("a", 30), false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	v := validator.NewAuthValidator()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", "abc", true},
		{"no digit", "abcdef", true},
		{"no letter", "123456", true},
		{"ok", "abc123", false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	v := validator.NewAuthValidator()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"ok", "foo@bar.com", false},
		{"subdomain", "a.b@mail.example.co", false},
		{"no tld", "foo@bar", true},
		{"no at", "foobar.com", true},
		{"empty", "", true},
		{"spaces", "foo @bar.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
