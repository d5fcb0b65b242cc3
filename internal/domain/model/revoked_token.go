package model

import "time"

// logoutで失効させたtokenのjtiを記録する（追記のみ）。
// tokenの自然失効後は消してよいので、revoked_atを掃除の基準にする。
type RevokedToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI       string    `gorm:"size:36;uniqueIndex;not null" json:"jti"`
	RevokedAt time.Time `gorm:"not null" json:"revoked_at"`
}
