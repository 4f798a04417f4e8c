package repository

import (
	"errors"
	"time"

	"github.com/rajabpour4097/faydo/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 消费交易数据访问接口
type TransactionRepository interface {
	GetByID(id uint) (*models.Transaction, error)
	Create(txn *models.Transaction) error
	Update(txn *models.Transaction) error
	List(filter TransactionListFilter) ([]models.Transaction, int64, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// TransactionListFilter 交易列表筛选
type TransactionListFilter struct {
	CustomerID  uint
	BusinessID  uint
	PackageID   uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// GetByID 根据ID获取交易
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// Create 创建交易
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// Update 更新交易
func (r *GormTransactionRepository) Update(txn *models.Transaction) error {
	return r.db.Save(txn).Error
}

// List 获取交易列表
func (r *GormTransactionRepository) List(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	query := r.db.Model(&models.Transaction{})

	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.BusinessID != 0 {
		query = query.Where("business_id = ?", filter.BusinessID)
	}
	if filter.PackageID != 0 {
		query = query.Where("package_id = ?", filter.PackageID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
