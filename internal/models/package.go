package models

import (
	"time"

	"gorm.io/gorm"
)

// Package 商家优惠套餐表
//
// 状态机：draft → pending → approved/rejected，approved 套餐由激活引擎
// 置为 is_active=true，到期后 status=expired。同一商家任意时刻至多一个
// is_active=true 的套餐。
type Package struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	BusinessID uint           `gorm:"index;not null" json:"business_id"`             // 所属商家
	Status     string         `gorm:"index;not null;default:'draft'" json:"status"`  // 套餐状态
	IsActive   bool           `gorm:"index;not null;default:false" json:"is_active"` // 是否生效中
	IsComplete bool           `gorm:"not null;default:false" json:"is_complete"`     // 要素是否齐备
	StartDate  *time.Time     `gorm:"index" json:"start_date"`                       // 生效起始日（含）
	EndDate    *time.Time     `gorm:"index" json:"end_date"`                         // 生效截止日（含）
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Business         *BusinessProfile         `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	BlanketDiscount  *BlanketDiscount         `gorm:"foreignKey:PackageID" json:"blanket_discount,omitempty"`
	SpecificDiscount *SpecificDiscount        `gorm:"foreignKey:PackageID" json:"specific_discount,omitempty"`
	EliteGift        *EliteGift               `gorm:"foreignKey:PackageID" json:"elite_gift,omitempty"`
	VipSelections    []VipExperienceSelection `gorm:"foreignKey:PackageID" json:"vip_selections,omitempty"`
}

// TableName 指定表名
func (Package) TableName() string {
	return "packages"
}

// DaysRemaining 返回距 EndDate 的剩余天数（按日历日计，当天算 0）
func (p *Package) DaysRemaining(now time.Time) int {
	if p.EndDate == nil {
		return 0
	}
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := p.EndDate
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, now.Location())
	return int(endDay.Sub(nowDay).Hours() / 24)
}

// HasExpired 判断套餐是否已到失效日（EndDate 当天起停用）
func (p *Package) HasExpired(now time.Time) bool {
	return p.EndDate != nil && p.DaysRemaining(now) <= 0
}

// BlanketDiscount 全场折扣表（每个套餐必有且仅有一条）
type BlanketDiscount struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PackageID  uint      `gorm:"uniqueIndex;not null" json:"package_id"` // 所属套餐
	Percentage int       `gorm:"not null" json:"percentage"`             // 折扣百分比 [1,100]
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (BlanketDiscount) TableName() string {
	return "blanket_discounts"
}

// SpecificDiscount 专项折扣表（可选，折扣比例必须高于全场折扣）
type SpecificDiscount struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PackageID   uint      `gorm:"uniqueIndex;not null" json:"package_id"` // 所属套餐
	Title       string    `gorm:"not null" json:"title"`                  // 专项名称
	Description string    `gorm:"default:''" json:"description"`          // 专项说明
	Percentage  int       `gorm:"not null" json:"percentage"`             // 折扣百分比
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (SpecificDiscount) TableName() string {
	return "specific_discounts"
}

// EliteGift 精英赠礼表（达标门槛二选一：累计消费金额或累计消费次数）
type EliteGift struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	PackageID    uint      `gorm:"uniqueIndex;not null" json:"package_id"`  // 所属套餐
	Gift         string    `gorm:"not null" json:"gift"`                    // 赠礼内容
	TargetAmount *Money    `gorm:"type:decimal(12,0)" json:"target_amount"` // 累计消费金额门槛
	TargetCount  *int      `json:"target_count"`                            // 累计消费次数门槛
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (EliteGift) TableName() string {
	return "elite_gifts"
}

// VipExperienceSelection 套餐选配的 VIP 体验
type VipExperienceSelection struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PackageID  uint      `gorm:"index:idx_pkg_vip_exp,unique;not null" json:"package_id"`  // 所属套餐
	CategoryID uint      `gorm:"index:idx_pkg_vip_exp,unique;not null" json:"category_id"` // VIP 体验类目
	CreatedAt  time.Time `json:"created_at"`

	Category *VipExperienceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName 指定表名
func (VipExperienceSelection) TableName() string {
	return "vip_experience_selections"
}
