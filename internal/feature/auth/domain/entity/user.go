// Package entity はauthフィーチャーのドメインエンティティを定義します。
package entity

import "time"

// User はログイン可能な利用者です。Passwordにはbcryptハッシュのみを保存します。
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;size:255;not null"`
	Password  string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
