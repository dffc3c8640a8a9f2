package models

import "gorm.io/gorm"

// User is a registered account. The reserved "System" user authors server
// messages and carries no usable password.
type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:text" json:"-"`
}
