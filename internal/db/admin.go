package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminCredential 定义了后台管理员账号，密码以 bcrypt 哈希存储。
type AdminCredential struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名。
func (AdminCredential) TableName() string {
	return "admin"
}

// HashPassword returns the bcrypt hash stored in AdminCredential.Password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// EnsureAdmin 存在性检查：若用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的管理员。
// 已存在的账号不会被修改。只裁剪用户名，密码按原样哈希。
func EnsureAdmin(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	if trimmedUser == "" || password == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing AdminCredential
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := HashPassword(password)
		if err != nil {
			return err
		}

		return gdb.Create(&AdminCredential{Username: trimmedUser, Password: hashed}).Error
	}

	return nil
}

// SetAdminPassword creates the account or replaces its password hash.
func SetAdminPassword(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	if trimmedUser == "" || password == "" {
		return errors.New("username and password are required")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}

	var existing AdminCredential
	err = gdb.Where("username = ?", trimmedUser).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return gdb.Create(&AdminCredential{Username: trimmedUser, Password: hashed}).Error
	case err != nil:
		return err
	}

	return gdb.Model(&existing).Update("password", hashed).Error
}
