package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction 消费交易表
//
// 折扣金额、专项折扣金额与应付金额在创建时一次性计算并冻结，
// 之后套餐内容变化不影响已有交易。
type Transaction struct {
	ID                            uint           `gorm:"primarykey" json:"id"`
	CustomerID                    uint           `gorm:"index;not null" json:"customer_id"`                                             // 顾客用户
	BusinessID                    uint           `gorm:"index;not null" json:"business_id"`                                             // 商家档案
	PackageID                     uint           `gorm:"index;not null" json:"package_id"`                                              // 结算所依据的套餐
	Status                        string         `gorm:"index;not null;default:'pending'" json:"status"`                                // 交易状态
	OriginalAmount                Money          `gorm:"type:decimal(12,0);not null" json:"original_amount"`                            // 原始消费金额
	HasSpecialDiscount            bool           `gorm:"not null;default:false" json:"has_special_discount"`                            // 是否包含专项折扣部分
	SpecialDiscountOriginalAmount Money          `gorm:"type:decimal(12,0);not null;default:0" json:"special_discount_original_amount"` // 专项折扣部分的原始金额
	DiscountAllAmount             Money          `gorm:"type:decimal(12,0);not null;default:0" json:"discount_all_amount"`              // 全场折扣金额
	SpecialDiscountAmount         Money          `gorm:"type:decimal(12,0);not null;default:0" json:"special_discount_amount"`          // 专项折扣金额
	FinalAmount                   Money          `gorm:"type:decimal(12,0);not null;default:0" json:"final_amount"`                     // 应付金额
	PointsEarned                  int64          `gorm:"not null;default:0" json:"points_earned"`                                       // 核销后记入的积分
	ApprovedAt                    *time.Time     `json:"approved_at"`                                                                   // 核销时间
	CreatedAt                     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt                     time.Time      `json:"updated_at"`
	DeletedAt                     gorm.DeletedAt `gorm:"index" json:"-"`

	Customer *User            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Business *BusinessProfile `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
	Package  *Package         `gorm:"foreignKey:PackageID" json:"package,omitempty"`
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
