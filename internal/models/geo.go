package models

import "time"

// Province 省份表
type Province struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"` // 省份名称
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Province) TableName() string {
	return "provinces"
}

// City 城市表
type City struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProvinceID uint      `gorm:"index;not null" json:"province_id"` // 所属省份
	Name       string    `gorm:"not null" json:"name"`              // 城市名称
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Province *Province `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`
}

// TableName 指定表名
func (City) TableName() string {
	return "cities"
}
