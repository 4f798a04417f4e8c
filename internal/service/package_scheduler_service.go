package service

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"

	"gorm.io/gorm"
)

// PackageSchedulerService 套餐调度服务
//
// 每日对账：停用过期套餐，为无生效套餐的商家按创建顺序激活
// 排队中的 approved 套餐。单个商家失败不影响其余商家。
type PackageSchedulerService struct {
	packageRepo repository.PackageRepository
}

// NewPackageSchedulerService 创建套餐调度服务
func NewPackageSchedulerService(packageRepo repository.PackageRepository) *PackageSchedulerService {
	return &PackageSchedulerService{packageRepo: packageRepo}
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	Deactivated int `json:"deactivated"`
	Activated   int `json:"activated"`
}

// Reconcile 执行一轮套餐对账，幂等：重复执行不产生额外变更
func (s *PackageSchedulerService) Reconcile(now time.Time) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	expiredIDs, err := s.packageRepo.ExpireActiveBefore(today)
	if err != nil {
		return nil, err
	}
	result.Deactivated = len(expiredIDs)
	if len(expiredIDs) > 0 {
		logger.Infow("package_reconcile_expired", "count", len(expiredIDs), "package_ids", expiredIDs)
	}

	businessIDs, err := s.packageRepo.BusinessIDsWithQueuedApproved()
	if err != nil {
		return result, err
	}
	for _, businessID := range businessIDs {
		activated, err := s.activateNextForBusiness(businessID, today)
		if err != nil {
			// 单个商家失败只记录，继续处理其余商家
			logger.Errorw("package_reconcile_business_failed", "business_id", businessID, "error", err)
			continue
		}
		if activated {
			result.Activated++
		}
	}

	logger.Infow("package_reconcile_done",
		"deactivated", result.Deactivated,
		"activated", result.Activated)
	return result, nil
}

// ReconcileBusiness 针对单个商家执行到期停用与递补激活
//
// 由套餐到期任务触发，幂等。
func (s *PackageSchedulerService) ReconcileBusiness(packageID, businessID uint, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if packageID != 0 {
		pkg, err := s.packageRepo.GetByID(packageID)
		if err != nil {
			return err
		}
		if pkg != nil && pkg.IsActive && pkg.HasExpired(now) {
			expired, err := s.packageRepo.Expire(pkg.ID)
			if err != nil {
				return err
			}
			if expired {
				logger.Infow("package_expired", "package_id", pkg.ID, "business_id", pkg.BusinessID)
			}
		}
	}

	_, err := s.activateNextForBusiness(businessID, today)
	return err
}

// activateNextForBusiness 为单个商家激活最早创建的可激活套餐
func (s *PackageSchedulerService) activateNextForBusiness(businessID uint, today time.Time) (bool, error) {
	active, err := s.packageRepo.GetActiveByBusiness(businessID)
	if err != nil {
		return false, err
	}
	if active != nil {
		return false, nil
	}

	queued, err := s.packageRepo.ListQueuedApprovedByBusiness(businessID)
	if err != nil {
		return false, err
	}
	for _, pkg := range queued {
		if pkg.StartDate != nil && pkg.StartDate.After(today) {
			continue
		}
		activated := false
		err := models.DB.Transaction(func(tx *gorm.DB) error {
			repo := s.packageRepo.WithTx(tx)
			current, err := repo.GetActiveByBusiness(businessID)
			if err != nil {
				return err
			}
			if current != nil {
				return nil
			}
			ok, err := repo.Activate(pkg.ID)
			if err != nil {
				return err
			}
			activated = ok
			return nil
		})
		if err != nil {
			return false, err
		}
		if activated {
			logger.Infow("package_reconcile_activated", "package_id", pkg.ID, "business_id", businessID)
			return true, nil
		}
		// 套餐在并发中被他处处理，继续看下一个
	}
	return false, nil
}
