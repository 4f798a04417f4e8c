package models

import (
	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(phone, password string) error {
	var count int64
	DB.Model(&User{}).Where("role = ?", constants.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	// 创建默认管理员
	if phone == "" {
		phone = "09000000000"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{
		Phone:        phone,
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         constants.RoleAdmin,
		Status:       constants.UserStatusActive,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "phone", phone)
		logger.Warnw("default_admin_password_change_required", "phone", phone)
	} else {
		logger.Warnw("default_admin_created", "phone", phone, "password_hidden", true)
	}

	return nil
}
