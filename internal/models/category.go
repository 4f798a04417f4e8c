package models

import (
	"time"

	"gorm.io/gorm"
)

// ServiceCategory 服务分类表（餐饮、美容、健身等）
type ServiceCategory struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // 主键
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`  // 分类名称
	Description string         `gorm:"default:''" json:"description"`     // 分类描述
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"` // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                        // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (ServiceCategory) TableName() string {
	return "service_categories"
}

// VipExperienceCategory VIP 体验类目表（由平台员工维护，商家从中选配）
type VipExperienceCategory struct {
	ID          uint           `gorm:"primarykey" json:"id"`           // 主键
	Name        string         `gorm:"not null" json:"name"`           // 体验名称
	Description string         `gorm:"default:''" json:"description"`  // 体验描述
	VipType     string         `gorm:"index;not null" json:"vip_type"` // VIP 或 VIP+
	CategoryID  *uint          `gorm:"index" json:"category_id"`       // 关联服务分类
	CreatedAt   time.Time      `json:"created_at"`                     // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                     // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                 // 软删除时间

	Category *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名
func (VipExperienceCategory) TableName() string {
	return "vip_experience_categories"
}
