package repository

import (
	"errors"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/models"

	"gorm.io/gorm"
)

// LoyaltyRepository 顾客忠诚度账户数据访问接口
type LoyaltyRepository interface {
	GetByID(id uint) (*models.CustomerLoyalty, error)
	GetByCustomerBusiness(customerID, businessID uint) (*models.CustomerLoyalty, error)
	GetOrCreate(customerID, businessID uint) (*models.CustomerLoyalty, bool, error)
	Update(loyalty *models.CustomerLoyalty) error
	List(filter LoyaltyListFilter) ([]models.CustomerLoyalty, int64, error)
	WithTx(tx *gorm.DB) *GormLoyaltyRepository
}

// LoyaltyListFilter 忠诚度账户列表筛选
type LoyaltyListFilter struct {
	CustomerID uint
	BusinessID uint
	VipStatus  string
	Page       int
	PageSize   int
}

// GormLoyaltyRepository GORM 实现
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewLoyaltyRepository 创建忠诚度仓库
func NewLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLoyaltyRepository) WithTx(tx *gorm.DB) *GormLoyaltyRepository {
	if tx == nil {
		return r
	}
	return &GormLoyaltyRepository{db: tx}
}

// GetByID 根据ID获取账户
func (r *GormLoyaltyRepository) GetByID(id uint) (*models.CustomerLoyalty, error) {
	var loyalty models.CustomerLoyalty
	if err := r.db.First(&loyalty, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loyalty, nil
}

// GetByCustomerBusiness 按顾客与商家获取账户
func (r *GormLoyaltyRepository) GetByCustomerBusiness(customerID, businessID uint) (*models.CustomerLoyalty, error) {
	var loyalty models.CustomerLoyalty
	err := r.db.Where("customer_id = ? AND business_id = ?", customerID, businessID).First(&loyalty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loyalty, nil
}

// GetOrCreate 获取账户，不存在则创建零分账户；第二个返回值表示是否新建
func (r *GormLoyaltyRepository) GetOrCreate(customerID, businessID uint) (*models.CustomerLoyalty, bool, error) {
	existing, err := r.GetByCustomerBusiness(customerID, businessID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	loyalty := models.CustomerLoyalty{
		CustomerID: customerID,
		BusinessID: businessID,
		VipStatus:  constants.VipStatusNone,
	}
	if err := r.db.Create(&loyalty).Error; err != nil {
		// 并发创建时回读已有记录
		if retry, rerr := r.GetByCustomerBusiness(customerID, businessID); rerr == nil && retry != nil {
			return retry, false, nil
		}
		return nil, false, err
	}
	return &loyalty, true, nil
}

// Update 保存账户
func (r *GormLoyaltyRepository) Update(loyalty *models.CustomerLoyalty) error {
	return r.db.Save(loyalty).Error
}

// List 获取账户列表
func (r *GormLoyaltyRepository) List(filter LoyaltyListFilter) ([]models.CustomerLoyalty, int64, error) {
	var loyalties []models.CustomerLoyalty
	query := r.db.Model(&models.CustomerLoyalty{})

	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.BusinessID != 0 {
		query = query.Where("business_id = ?", filter.BusinessID)
	}
	if filter.VipStatus != "" {
		query = query.Where("vip_status = ?", filter.VipStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("points desc, id asc").Find(&loyalties).Error; err != nil {
		return nil, 0, err
	}
	return loyalties, total, nil
}
