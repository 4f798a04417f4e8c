package repository

import (
	"errors"

	"github.com/rajabpour4097/faydo/internal/models"

	"gorm.io/gorm"
)

// BusinessRepository 商家档案数据访问接口
type BusinessRepository interface {
	GetByID(id uint) (*models.BusinessProfile, error)
	GetByUserID(userID uint) (*models.BusinessProfile, error)
	GetByUniqueCode(code string) (*models.BusinessProfile, error)
	Create(profile *models.BusinessProfile) error
	Update(profile *models.BusinessProfile) error
	List(filter BusinessListFilter) ([]models.BusinessProfile, int64, error)
	WithTx(tx *gorm.DB) *GormBusinessRepository
}

// GormBusinessRepository GORM 实现
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository 创建商家档案仓库
func NewBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBusinessRepository) WithTx(tx *gorm.DB) *GormBusinessRepository {
	if tx == nil {
		return r
	}
	return &GormBusinessRepository{db: tx}
}

// GetByID 根据ID获取商家档案
func (r *GormBusinessRepository) GetByID(id uint) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	if err := r.db.Preload("Category").Preload("City").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUserID 根据用户ID获取商家档案
func (r *GormBusinessRepository) GetByUserID(userID uint) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUniqueCode 根据扫码唯一码获取商家档案
func (r *GormBusinessRepository) GetByUniqueCode(code string) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	err := r.db.Preload("Category").Preload("City").Where("unique_code = ?", code).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Create 创建商家档案
func (r *GormBusinessRepository) Create(profile *models.BusinessProfile) error {
	return r.db.Create(profile).Error
}

// Update 更新商家档案
func (r *GormBusinessRepository) Update(profile *models.BusinessProfile) error {
	return r.db.Save(profile).Error
}

// List 获取商家列表
func (r *GormBusinessRepository) List(filter BusinessListFilter) ([]models.BusinessProfile, int64, error) {
	var profiles []models.BusinessProfile
	query := r.db.Model(&models.BusinessProfile{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		cond, n := buildLikeCondition(r.db, []string{"name", "address"})
		query = query.Where(cond, repeatLikeArgs(like, n)...)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.CityID != 0 {
		query = query.Where("city_id = ?", filter.CityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Category").Preload("City").Order("id desc").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// CustomerRepository 顾客档案数据访问接口
type CustomerRepository interface {
	GetByUserID(userID uint) (*models.CustomerProfile, error)
	Create(profile *models.CustomerProfile) error
	Update(profile *models.CustomerProfile) error
	WithTx(tx *gorm.DB) *GormCustomerRepository
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建顾客档案仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) *GormCustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// GetByUserID 根据用户ID获取顾客档案
func (r *GormCustomerRepository) GetByUserID(userID uint) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Create 创建顾客档案
func (r *GormCustomerRepository) Create(profile *models.CustomerProfile) error {
	return r.db.Create(profile).Error
}

// Update 更新顾客档案
func (r *GormCustomerRepository) Update(profile *models.CustomerProfile) error {
	return r.db.Save(profile).Error
}
