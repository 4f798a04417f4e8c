package service

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/queue"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// 审核结果提示语
const (
	ApproveMessageActivated = "package approved and activated"
	ApproveMessageQueued    = "package approved; it will activate when the current package ends"
	ApproveMessageNoop      = "package is already approved"
)

// PackageExpireEnqueuer 套餐到期任务投递接口，由队列客户端实现
type PackageExpireEnqueuer interface {
	EnqueuePackageExpire(payload queue.PackageExpirePayload, opts ...asynq.Option) error
}

// PackageLifecycleService 套餐状态流转服务
//
// 负责 pending → approved/rejected 的审批流与激活引擎。
// 激活与停用始终走仓库的条件更新，保证同一商家至多一个生效套餐。
type PackageLifecycleService struct {
	packageRepo repository.PackageRepository
	expireQueue PackageExpireEnqueuer
}

// NewPackageLifecycleService 创建套餐状态流转服务
func NewPackageLifecycleService(packageRepo repository.PackageRepository, expireQueue PackageExpireEnqueuer) *PackageLifecycleService {
	return &PackageLifecycleService{
		packageRepo: packageRepo,
		expireQueue: expireQueue,
	}
}

// schedulePackageExpire 在套餐激活后按失效日预约到期交接任务，
// 队列不可用时退化为每日对账兜底。
func (s *PackageLifecycleService) schedulePackageExpire(pkg *models.Package) {
	if s.expireQueue == nil || pkg == nil || pkg.EndDate == nil {
		return
	}
	payload := queue.PackageExpirePayload{PackageID: pkg.ID, BusinessID: pkg.BusinessID}
	if err := s.expireQueue.EnqueuePackageExpire(payload, asynq.ProcessAt(*pkg.EndDate)); err != nil {
		logger.Warnw("package_expire_enqueue_failed",
			"package_id", pkg.ID,
			"business_id", pkg.BusinessID,
			"error", err)
	}
}

// ApproveResult 审批结果
type ApproveResult struct {
	Package   *models.Package
	Activated bool
	Message   string
}

// CanActivateImmediately 判断审批通过后能否立即激活：
// 商家的首个套餐，或商家当前没有生效套餐。
func (s *PackageLifecycleService) CanActivateImmediately(pkg *models.Package) (bool, error) {
	if pkg == nil {
		return false, ErrPackageNotFound
	}
	submitted, err := s.packageRepo.CountSubmittedByBusiness(pkg.BusinessID, pkg.ID)
	if err != nil {
		return false, err
	}
	if submitted == 0 {
		return true, nil
	}
	active, err := s.packageRepo.GetActiveByBusiness(pkg.BusinessID)
	if err != nil {
		return false, err
	}
	return active == nil, nil
}

// Approve 审批通过套餐
//
// 已 approved 的套餐重复审批为显式空操作。可立即激活时在同一事务内
// 先停用该商家其他生效套餐再条件激活本套餐；否则保持排队等待调度。
func (s *PackageLifecycleService) Approve(packageID uint) (*ApproveResult, error) {
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if pkg.Status == constants.PackageStatusApproved {
		return &ApproveResult{Package: pkg, Activated: pkg.IsActive, Message: ApproveMessageNoop}, nil
	}
	if pkg.Status != constants.PackageStatusPending {
		return nil, ErrPackageNotPending
	}
	if !pkg.IsComplete {
		return nil, ErrPackageIncomplete
	}

	immediate, err := s.CanActivateImmediately(pkg)
	if err != nil {
		return nil, err
	}

	activated := false
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.packageRepo.WithTx(tx)
		pkg.Status = constants.PackageStatusApproved
		if err := repo.Update(pkg); err != nil {
			return err
		}
		if !immediate {
			return nil
		}
		if _, err := repo.DeactivateOthers(pkg.BusinessID, pkg.ID); err != nil {
			return err
		}
		ok, err := repo.Activate(pkg.ID)
		if err != nil {
			return err
		}
		activated = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	if activated {
		pkg.IsActive = true
		s.schedulePackageExpire(pkg)
	}
	message := ApproveMessageQueued
	if activated {
		message = ApproveMessageActivated
	}
	logger.Infow("package_approved",
		"package_id", pkg.ID,
		"business_id", pkg.BusinessID,
		"activated", activated)
	return &ApproveResult{Package: pkg, Activated: activated, Message: message}, nil
}

// Reject 审批驳回套餐（终态）
func (s *PackageLifecycleService) Reject(packageID uint) (*models.Package, error) {
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if pkg.Status != constants.PackageStatusPending {
		return nil, ErrPackageNotPending
	}
	pkg.Status = constants.PackageStatusRejected
	pkg.IsActive = false
	if err := s.packageRepo.Update(pkg); err != nil {
		return nil, err
	}
	logger.Infow("package_rejected", "package_id", pkg.ID, "business_id", pkg.BusinessID)
	return pkg, nil
}

// ReevaluateActivation 激活引擎：对 approved 且要素齐备的套餐，
// 当商家没有其他生效套餐且已到生效日时激活。
func (s *PackageLifecycleService) ReevaluateActivation(packageID uint, now time.Time) (bool, error) {
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return false, err
	}
	if pkg == nil {
		return false, ErrPackageNotFound
	}
	if pkg.Status != constants.PackageStatusApproved || !pkg.IsComplete || pkg.IsActive {
		return false, nil
	}
	if pkg.StartDate != nil && pkg.StartDate.After(now) {
		return false, nil
	}
	active, err := s.packageRepo.GetActiveByBusiness(pkg.BusinessID)
	if err != nil {
		return false, err
	}
	if active != nil {
		return false, nil
	}
	return s.packageRepo.Activate(pkg.ID)
}

// AdminOverrideActivate 人工强制激活（绕过激活引擎，仅保证单活不变量）
func (s *PackageLifecycleService) AdminOverrideActivate(packageID uint) (*models.Package, error) {
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if pkg.Status != constants.PackageStatusApproved {
		return nil, ErrPackageNotPending
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.packageRepo.WithTx(tx)
		if _, err := repo.DeactivateOthers(pkg.BusinessID, pkg.ID); err != nil {
			return err
		}
		_, err := repo.Activate(pkg.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Warnw("package_admin_override_activate", "package_id", pkg.ID, "business_id", pkg.BusinessID)
	s.schedulePackageExpire(pkg)
	return s.packageRepo.GetByID(packageID)
}

// AdminOverrideDeactivate 人工强制停用（幂等）
func (s *PackageLifecycleService) AdminOverrideDeactivate(packageID uint) (*models.Package, error) {
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if _, err := s.packageRepo.Deactivate(pkg.ID); err != nil {
		return nil, err
	}
	logger.Warnw("package_admin_override_deactivate", "package_id", pkg.ID, "business_id", pkg.BusinessID)
	return s.packageRepo.GetByID(packageID)
}

// ListPending 待审套餐列表
func (s *PackageLifecycleService) ListPending(page, pageSize int) ([]models.Package, int64, error) {
	return s.packageRepo.List(repository.PackageListFilter{
		Status:      constants.PackageStatusPending,
		Page:        page,
		PageSize:    pageSize,
		WithDetails: true,
	})
}
