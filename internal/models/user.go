package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（顾客、商家与员工共用，按 Role 区分）
type User struct {
	ID              uint           `gorm:"primarykey" json:"id"`                          // 主键
	Phone           string         `gorm:"uniqueIndex;not null" json:"phone"`             // 手机号（登录凭证）
	Username        string         `gorm:"uniqueIndex;not null" json:"username"`          // 用户名
	PasswordHash    string         `gorm:"not null" json:"-"`                             // 密码哈希（不返回给前端）
	FirstName       string         `gorm:"default:''" json:"first_name"`                  // 名
	LastName        string         `gorm:"default:''" json:"last_name"`                   // 姓
	Role            string         `gorm:"index;not null;default:'customer'" json:"role"` // 角色
	Status          string         `gorm:"default:'active'" json:"status"`                // 账号状态
	PhoneVerifiedAt *time.Time     `json:"phone_verified_at"`                             // 手机号验证时间
	LastLoginAt     *time.Time     `json:"last_login_at"`                                 // 最后登录时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// FullName 返回姓名拼接
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
