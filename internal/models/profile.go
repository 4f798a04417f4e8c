package models

import (
	"time"

	"gorm.io/gorm"
)

// BusinessProfile 商家档案表
type BusinessProfile struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	UserID     uint           `gorm:"uniqueIndex;not null" json:"user_id"`     // 所属用户
	Name       string         `gorm:"not null" json:"name"`                    // 商家名称
	CategoryID *uint          `gorm:"index" json:"category_id"`                // 服务分类
	CityID     *uint          `gorm:"index" json:"city_id"`                    // 城市
	Address    string         `gorm:"default:''" json:"address"`               // 地址
	Latitude   *float64       `json:"latitude"`                                // 纬度
	Longitude  *float64       `json:"longitude"`                               // 经度
	Rating     float64        `gorm:"default:0" json:"rating"`                 // 评分
	UniqueCode string         `gorm:"uniqueIndex;not null" json:"unique_code"` // 扫码入口唯一码
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User     *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	City     *City            `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

// TableName 指定表名
func (BusinessProfile) TableName() string {
	return "business_profiles"
}

// CustomerProfile 顾客档案表
type CustomerProfile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"` // 所属用户
	Gender    string         `gorm:"default:''" json:"gender"`            // 性别
	BirthDate *time.Time     `json:"birth_date"`                          // 出生日期
	CityID    *uint          `gorm:"index" json:"city_id"`                // 城市
	Address   string         `gorm:"default:''" json:"address"`           // 地址
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	City *City `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

// TableName 指定表名
func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

// IsComplete 判断顾客资料是否完整（兑换礼遇前必须补全）
func (p *CustomerProfile) IsComplete(user *User) bool {
	if user == nil {
		return false
	}
	return user.FirstName != "" && user.LastName != "" &&
		p.Gender != "" && p.BirthDate != nil && p.CityID != nil
}
