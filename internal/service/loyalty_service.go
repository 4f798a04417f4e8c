package service

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"

	"gorm.io/gorm"
)

// LoyaltyService 顾客忠诚度服务
//
// 积分只增不减，VIP 等级始终由积分重新派生。
// 精英赠礼按顾客 × 商家维度一次性兑换。
type LoyaltyService struct {
	loyaltyRepo repository.LoyaltyRepository
	packageRepo repository.PackageRepository
}

// NewLoyaltyService 创建忠诚度服务
func NewLoyaltyService(
	loyaltyRepo repository.LoyaltyRepository,
	packageRepo repository.PackageRepository,
) *LoyaltyService {
	return &LoyaltyService{
		loyaltyRepo: loyaltyRepo,
		packageRepo: packageRepo,
	}
}

// GetOrCreate 获取顾客在商家的忠诚度账户，首次交互时自动建零分账户
func (s *LoyaltyService) GetOrCreate(customerID, businessID uint) (*models.CustomerLoyalty, error) {
	if customerID == 0 || businessID == 0 {
		return nil, ErrLoyaltyNotFound
	}
	loyalty, created, err := s.loyaltyRepo.GetOrCreate(customerID, businessID)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Infow("loyalty_account_created", "customer_id", customerID, "business_id", businessID)
	}
	return loyalty, nil
}

// AddPoints 增加积分并重算 VIP 等级
func (s *LoyaltyService) AddPoints(customerID, businessID uint, points int64) (*models.CustomerLoyalty, error) {
	if points < 0 {
		return nil, ErrNegativePoints
	}
	loyalty, err := s.GetOrCreate(customerID, businessID)
	if err != nil {
		return nil, err
	}
	prevStatus := loyalty.VipStatus
	loyalty.Points += points
	loyalty.RecalcVipStatus()
	if err := s.loyaltyRepo.Update(loyalty); err != nil {
		return nil, err
	}
	if loyalty.VipStatus != prevStatus {
		logger.Infow("loyalty_vip_status_changed",
			"customer_id", customerID,
			"business_id", businessID,
			"from", prevStatus,
			"to", loyalty.VipStatus,
			"points", loyalty.Points)
	}
	return loyalty, nil
}

// CreditTx 事务内记入一笔核销：累加积分、消费金额与次数，重算等级，
// 并依据套餐的精英赠礼门槛刷新达标标记。由交易核销流程调用，
// 保证与交易状态变更同库事务。
func (s *LoyaltyService) CreditTx(tx *gorm.DB, customerID, businessID uint, points int64, amount models.Money, gift *models.EliteGift) error {
	if points < 0 {
		return ErrNegativePoints
	}
	repo := s.loyaltyRepo.WithTx(tx)
	loyalty, _, err := repo.GetOrCreate(customerID, businessID)
	if err != nil {
		return err
	}
	loyalty.Points += points
	loyalty.TotalSpent = models.NewMoneyFromDecimal(loyalty.TotalSpent.Decimal.Add(amount.Decimal))
	loyalty.VisitCount++
	loyalty.RecalcVipStatus()
	if !loyalty.EliteGiftTargetReached && targetReached(gift, loyalty) {
		loyalty.EliteGiftTargetReached = true
	}
	return repo.Update(loyalty)
}

// EliteGiftEligibility 精英赠礼达标情况
type EliteGiftEligibility struct {
	Gift          *models.EliteGift
	TargetReached bool
	AlreadyUsed   bool
}

// CheckEliteGift 查询顾客在商家生效套餐下的精英赠礼达标情况
func (s *LoyaltyService) CheckEliteGift(customerID, businessID uint) (*EliteGiftEligibility, error) {
	loyalty, err := s.GetOrCreate(customerID, businessID)
	if err != nil {
		return nil, err
	}
	gift, err := s.activeEliteGift(businessID)
	if err != nil {
		return nil, err
	}
	return &EliteGiftEligibility{
		Gift:          gift,
		TargetReached: targetReached(gift, loyalty),
		AlreadyUsed:   loyalty.EliteGiftUsed,
	}, nil
}

// UseEliteGift 兑换精英赠礼：未达标返回 target not reached，
// 已兑换返回 already used；达标标记滞后时先按当前累计刷新一次。
func (s *LoyaltyService) UseEliteGift(customerID, businessID uint) (*models.CustomerLoyalty, error) {
	loyalty, err := s.GetOrCreate(customerID, businessID)
	if err != nil {
		return nil, err
	}
	if loyalty.EliteGiftUsed {
		return nil, ErrEliteGiftAlreadyUsed
	}
	if !loyalty.EliteGiftTargetReached {
		gift, err := s.activeEliteGift(businessID)
		if err == nil && targetReached(gift, loyalty) {
			loyalty.EliteGiftTargetReached = true
			if err := s.loyaltyRepo.Update(loyalty); err != nil {
				return nil, err
			}
		}
	}
	if !loyalty.EliteGiftTargetReached {
		return nil, ErrEliteGiftTargetNotReached
	}
	now := time.Now()
	loyalty.EliteGiftUsed = true
	loyalty.EliteGiftUsedAt = &now
	if err := s.loyaltyRepo.Update(loyalty); err != nil {
		return nil, err
	}
	logger.Infow("elite_gift_used", "customer_id", customerID, "business_id", businessID)
	return loyalty, nil
}

// ListByBusiness 商家侧忠诚度账户列表
func (s *LoyaltyService) ListByBusiness(filter repository.LoyaltyListFilter) ([]models.CustomerLoyalty, int64, error) {
	return s.loyaltyRepo.List(filter)
}

// activeEliteGift 获取商家当前生效套餐配置的精英赠礼
func (s *LoyaltyService) activeEliteGift(businessID uint) (*models.EliteGift, error) {
	active, err := s.packageRepo.GetActiveByBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActivePackage
	}
	detail, err := s.packageRepo.GetByIDWithDetails(active.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.EliteGift == nil {
		return nil, ErrEliteGiftNotConfigured
	}
	return detail.EliteGift, nil
}

func targetReached(gift *models.EliteGift, loyalty *models.CustomerLoyalty) bool {
	if gift == nil || loyalty == nil {
		return false
	}
	if gift.TargetAmount != nil {
		return loyalty.TotalSpent.Decimal.GreaterThanOrEqual(gift.TargetAmount.Decimal)
	}
	if gift.TargetCount != nil {
		return loyalty.VisitCount >= *gift.TargetCount
	}
	return false
}
