package repository

import (
	"errors"
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/models"

	"gorm.io/gorm"
)

// PackageRepository 套餐数据访问接口
type PackageRepository interface {
	GetByID(id uint) (*models.Package, error)
	GetByIDWithDetails(id uint) (*models.Package, error)
	GetActiveByBusiness(businessID uint) (*models.Package, error)
	GetDraftByBusiness(businessID uint) (*models.Package, error)
	GetPendingCompleteByBusiness(businessID uint) (*models.Package, error)
	CountSubmittedByBusiness(businessID uint, excludeID uint) (int64, error)
	Create(pkg *models.Package) error
	Update(pkg *models.Package) error
	Delete(id uint) error
	List(filter PackageListFilter) ([]models.Package, int64, error)
	Activate(id uint) (bool, error)
	Deactivate(id uint) (bool, error)
	Expire(id uint) (bool, error)
	DeactivateOthers(businessID uint, keepID uint) (int64, error)
	ExpireActiveBefore(today time.Time) ([]uint, error)
	BusinessIDsWithQueuedApproved() ([]uint, error)
	ListQueuedApprovedByBusiness(businessID uint) ([]models.Package, error)
	UpsertBlanketDiscount(d *models.BlanketDiscount) error
	UpsertSpecificDiscount(d *models.SpecificDiscount) error
	DeleteSpecificDiscount(packageID uint) error
	UpsertEliteGift(g *models.EliteGift) error
	ReplaceVipSelections(packageID uint, categoryIDs []uint) error
	WithTx(tx *gorm.DB) *GormPackageRepository
}

// PackageListFilter 套餐列表筛选
type PackageListFilter struct {
	BusinessID  uint
	Status      string
	IsActive    *bool
	IsComplete  *bool
	Page        int
	PageSize    int
	WithDetails bool
}

// GormPackageRepository GORM 实现
type GormPackageRepository struct {
	db *gorm.DB
}

// NewPackageRepository 创建套餐仓库
func NewPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPackageRepository) WithTx(tx *gorm.DB) *GormPackageRepository {
	if tx == nil {
		return r
	}
	return &GormPackageRepository{db: tx}
}

// GetByID 根据ID获取套餐
func (r *GormPackageRepository) GetByID(id uint) (*models.Package, error) {
	var pkg models.Package
	if err := r.db.First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// GetByIDWithDetails 根据ID获取套餐及其全部子要素
func (r *GormPackageRepository) GetByIDWithDetails(id uint) (*models.Package, error) {
	var pkg models.Package
	err := r.db.
		Preload("BlanketDiscount").
		Preload("SpecificDiscount").
		Preload("EliteGift").
		Preload("VipSelections").
		Preload("VipSelections.Category").
		First(&pkg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// GetActiveByBusiness 获取商家当前生效套餐
func (r *GormPackageRepository) GetActiveByBusiness(businessID uint) (*models.Package, error) {
	var pkg models.Package
	err := r.db.Where("business_id = ? AND is_active = ?", businessID, true).
		Order("id desc").First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// GetDraftByBusiness 获取商家当前草稿套餐
func (r *GormPackageRepository) GetDraftByBusiness(businessID uint) (*models.Package, error) {
	var pkg models.Package
	err := r.db.Where("business_id = ? AND status = ?", businessID, constants.PackageStatusDraft).
		Order("id desc").First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// GetPendingCompleteByBusiness 获取商家已提交待审且要素齐备的套餐
func (r *GormPackageRepository) GetPendingCompleteByBusiness(businessID uint) (*models.Package, error) {
	var pkg models.Package
	err := r.db.Where("business_id = ? AND status = ? AND is_complete = ?",
		businessID, constants.PackageStatusPending, true).
		Order("id desc").First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// CountSubmittedByBusiness 统计商家已进入审批流的套餐数（pending/approved），
// 用于判断是否首个套餐。excludeID 排除当前套餐自身。
func (r *GormPackageRepository) CountSubmittedByBusiness(businessID uint, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Package{}).
		Where("business_id = ?", businessID).
		Where("status IN ?", []string{constants.PackageStatusPending, constants.PackageStatusApproved, constants.PackageStatusExpired})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建套餐
func (r *GormPackageRepository) Create(pkg *models.Package) error {
	return r.db.Create(pkg).Error
}

// Update 更新套餐
func (r *GormPackageRepository) Update(pkg *models.Package) error {
	return r.db.Save(pkg).Error
}

// Delete 删除套餐
func (r *GormPackageRepository) Delete(id uint) error {
	return r.db.Delete(&models.Package{}, id).Error
}

// List 获取套餐列表
func (r *GormPackageRepository) List(filter PackageListFilter) ([]models.Package, int64, error) {
	var packages []models.Package
	query := r.db.Model(&models.Package{})

	if filter.BusinessID != 0 {
		query = query.Where("business_id = ?", filter.BusinessID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsComplete != nil {
		query = query.Where("is_complete = ?", *filter.IsComplete)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithDetails {
		query = query.
			Preload("Business").
			Preload("BlanketDiscount").
			Preload("SpecificDiscount").
			Preload("EliteGift").
			Preload("VipSelections.Category")
	}
	if err := query.Order("id desc").Find(&packages).Error; err != nil {
		return nil, 0, err
	}
	return packages, total, nil
}

// Activate 激活套餐（条件更新，仅 approved 且未激活的套餐生效）
func (r *GormPackageRepository) Activate(id uint) (bool, error) {
	res := r.db.Model(&models.Package{}).
		Where("id = ? AND status = ? AND is_active = ?", id, constants.PackageStatusApproved, false).
		Update("is_active", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Deactivate 停用套餐（条件更新，幂等）
func (r *GormPackageRepository) Deactivate(id uint) (bool, error) {
	res := r.db.Model(&models.Package{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Expire 将单个生效套餐停用并置为 expired
func (r *GormPackageRepository) Expire(id uint) (bool, error) {
	res := r.db.Model(&models.Package{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{"is_active": false, "status": constants.PackageStatusExpired})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeactivateOthers 停用商家除 keepID 外的全部生效套餐
func (r *GormPackageRepository) DeactivateOthers(businessID uint, keepID uint) (int64, error) {
	res := r.db.Model(&models.Package{}).
		Where("business_id = ? AND is_active = ? AND id <> ?", businessID, true, keepID).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// ExpireActiveBefore 停用全部已过期的生效套餐并置为 expired，返回受影响的套餐ID
func (r *GormPackageRepository) ExpireActiveBefore(today time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Package{}).
		Where("is_active = ? AND end_date IS NOT NULL AND end_date <= ?", true, today).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	err = r.db.Model(&models.Package{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"is_active": false, "status": constants.PackageStatusExpired}).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// BusinessIDsWithQueuedApproved 返回存在 approved 且未激活且要素齐备套餐的商家ID列表
func (r *GormPackageRepository) BusinessIDsWithQueuedApproved() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Package{}).
		Where("status = ? AND is_active = ? AND is_complete = ?", constants.PackageStatusApproved, false, true).
		Distinct().Pluck("business_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListQueuedApprovedByBusiness 按创建顺序返回商家排队中的 approved 套餐
func (r *GormPackageRepository) ListQueuedApprovedByBusiness(businessID uint) ([]models.Package, error) {
	var packages []models.Package
	err := r.db.Where("business_id = ? AND status = ? AND is_active = ? AND is_complete = ?",
		businessID, constants.PackageStatusApproved, false, true).
		Order("created_at asc, id asc").Find(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

// UpsertBlanketDiscount 创建或更新全场折扣（每套餐至多一条）
func (r *GormPackageRepository) UpsertBlanketDiscount(d *models.BlanketDiscount) error {
	var existing models.BlanketDiscount
	err := r.db.Where("package_id = ?", d.PackageID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(d).Error
		}
		return err
	}
	existing.Percentage = d.Percentage
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*d = existing
	return nil
}

// UpsertSpecificDiscount 创建或更新专项折扣
func (r *GormPackageRepository) UpsertSpecificDiscount(d *models.SpecificDiscount) error {
	var existing models.SpecificDiscount
	err := r.db.Where("package_id = ?", d.PackageID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(d).Error
		}
		return err
	}
	existing.Title = d.Title
	existing.Description = d.Description
	existing.Percentage = d.Percentage
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*d = existing
	return nil
}

// DeleteSpecificDiscount 删除套餐的专项折扣
func (r *GormPackageRepository) DeleteSpecificDiscount(packageID uint) error {
	return r.db.Where("package_id = ?", packageID).Delete(&models.SpecificDiscount{}).Error
}

// UpsertEliteGift 创建或更新精英赠礼
func (r *GormPackageRepository) UpsertEliteGift(g *models.EliteGift) error {
	var existing models.EliteGift
	err := r.db.Where("package_id = ?", g.PackageID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(g).Error
		}
		return err
	}
	existing.Gift = g.Gift
	existing.TargetAmount = g.TargetAmount
	existing.TargetCount = g.TargetCount
	// 指针字段显式整体保存，确保门槛切换时旧值被清空
	if err := r.db.Model(&existing).Select("gift", "target_amount", "target_count").Updates(map[string]interface{}{
		"gift":          existing.Gift,
		"target_amount": existing.TargetAmount,
		"target_count":  existing.TargetCount,
	}).Error; err != nil {
		return err
	}
	*g = existing
	return nil
}

// ReplaceVipSelections 整体替换套餐的 VIP 体验选配（先删后建）
func (r *GormPackageRepository) ReplaceVipSelections(packageID uint, categoryIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id = ?", packageID).Delete(&models.VipExperienceSelection{}).Error; err != nil {
			return err
		}
		for _, cid := range categoryIDs {
			sel := models.VipExperienceSelection{PackageID: packageID, CategoryID: cid}
			if err := tx.Create(&sel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
