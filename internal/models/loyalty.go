package models

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
)

// CustomerLoyalty 顾客在单个商家的忠诚度账户（顾客 × 商家唯一）
type CustomerLoyalty struct {
	ID                     uint       `gorm:"primarykey" json:"id"`
	CustomerID             uint       `gorm:"index:idx_customer_business,unique;not null" json:"customer_id"` // 顾客用户
	BusinessID             uint       `gorm:"index:idx_customer_business,unique;not null" json:"business_id"` // 商家档案
	Points                 int64      `gorm:"not null;default:0" json:"points"`                               // 累计积分
	VipStatus              string     `gorm:"index;not null;default:'none'" json:"vip_status"`                // 派生 VIP 等级
	EliteGiftTargetReached bool       `gorm:"not null;default:false" json:"elite_gift_target_reached"`        // 精英赠礼门槛是否已达标
	EliteGiftUsed          bool       `gorm:"not null;default:false" json:"elite_gift_used"`                  // 精英赠礼是否已兑换
	EliteGiftUsedAt        *time.Time `json:"elite_gift_used_at"`                                             // 兑换时间
	TotalSpent             Money      `gorm:"type:decimal(12,0);not null;default:0" json:"total_spent"`       // 累计消费金额
	VisitCount             int        `gorm:"not null;default:0" json:"visit_count"`                          // 累计核销次数
	CreatedAt              time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	Customer *User            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Business *BusinessProfile `gorm:"foreignKey:BusinessID" json:"business,omitempty"`
}

// TableName 指定表名
func (CustomerLoyalty) TableName() string {
	return "customer_loyalties"
}

// RecalcVipStatus 按积分阈值重算 VIP 等级（等级只由积分派生，不单独维护）
func (l *CustomerLoyalty) RecalcVipStatus() {
	switch {
	case l.Points >= constants.VipPlusThreshold:
		l.VipStatus = constants.VipStatusPlus
	case l.Points >= constants.VipThreshold:
		l.VipStatus = constants.VipStatusVip
	default:
		l.VipStatus = constants.VipStatusNone
	}
}
