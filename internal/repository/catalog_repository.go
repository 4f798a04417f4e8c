package repository

import (
	"errors"

	"github.com/rajabpour4097/faydo/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository 基础资料数据访问接口（省市、服务分类、VIP 体验类目）
type CatalogRepository interface {
	ListProvinces() ([]models.Province, error)
	ListCitiesByProvince(provinceID uint) ([]models.City, error)
	GetCityByID(id uint) (*models.City, error)
	ListServiceCategories() ([]models.ServiceCategory, error)
	GetServiceCategoryByID(id uint) (*models.ServiceCategory, error)
	CreateServiceCategory(category *models.ServiceCategory) error
	UpdateServiceCategory(category *models.ServiceCategory) error
	DeleteServiceCategory(id uint) error
	GetVipCategoryByID(id uint) (*models.VipExperienceCategory, error)
	ListVipCategoriesByIDs(ids []uint) ([]models.VipExperienceCategory, error)
	ListVipCategories(filter VipExperienceCategoryListFilter) ([]models.VipExperienceCategory, int64, error)
	CreateVipCategory(category *models.VipExperienceCategory) error
	UpdateVipCategory(category *models.VipExperienceCategory) error
	DeleteVipCategory(id uint) error
	WithTx(tx *gorm.DB) *GormCatalogRepository
}

// GormCatalogRepository GORM 实现
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建基础资料仓库
func NewCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCatalogRepository) WithTx(tx *gorm.DB) *GormCatalogRepository {
	if tx == nil {
		return r
	}
	return &GormCatalogRepository{db: tx}
}

// ListProvinces 省份列表
func (r *GormCatalogRepository) ListProvinces() ([]models.Province, error) {
	var provinces []models.Province
	if err := r.db.Order("name asc").Find(&provinces).Error; err != nil {
		return nil, err
	}
	return provinces, nil
}

// ListCitiesByProvince 按省份获取城市列表
func (r *GormCatalogRepository) ListCitiesByProvince(provinceID uint) ([]models.City, error) {
	var cities []models.City
	query := r.db.Order("name asc")
	if provinceID != 0 {
		query = query.Where("province_id = ?", provinceID)
	}
	if err := query.Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

// GetCityByID 根据ID获取城市
func (r *GormCatalogRepository) GetCityByID(id uint) (*models.City, error) {
	var city models.City
	if err := r.db.First(&city, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

// ListServiceCategories 服务分类列表
func (r *GormCatalogRepository) ListServiceCategories() ([]models.ServiceCategory, error) {
	var categories []models.ServiceCategory
	if err := r.db.Order("sort_order asc, id asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetServiceCategoryByID 根据ID获取服务分类
func (r *GormCatalogRepository) GetServiceCategoryByID(id uint) (*models.ServiceCategory, error) {
	var category models.ServiceCategory
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// CreateServiceCategory 创建服务分类
func (r *GormCatalogRepository) CreateServiceCategory(category *models.ServiceCategory) error {
	return r.db.Create(category).Error
}

// UpdateServiceCategory 更新服务分类
func (r *GormCatalogRepository) UpdateServiceCategory(category *models.ServiceCategory) error {
	return r.db.Save(category).Error
}

// DeleteServiceCategory 删除服务分类
func (r *GormCatalogRepository) DeleteServiceCategory(id uint) error {
	return r.db.Delete(&models.ServiceCategory{}, id).Error
}

// GetVipCategoryByID 根据ID获取 VIP 体验类目
func (r *GormCatalogRepository) GetVipCategoryByID(id uint) (*models.VipExperienceCategory, error) {
	var category models.VipExperienceCategory
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// ListVipCategoriesByIDs 批量获取 VIP 体验类目
func (r *GormCatalogRepository) ListVipCategoriesByIDs(ids []uint) ([]models.VipExperienceCategory, error) {
	if len(ids) == 0 {
		return []models.VipExperienceCategory{}, nil
	}
	var categories []models.VipExperienceCategory
	if err := r.db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListVipCategories 获取 VIP 体验类目列表
func (r *GormCatalogRepository) ListVipCategories(filter VipExperienceCategoryListFilter) ([]models.VipExperienceCategory, int64, error) {
	var categories []models.VipExperienceCategory
	query := r.db.Model(&models.VipExperienceCategory{})

	if filter.VipType != "" {
		query = query.Where("vip_type = ?", filter.VipType)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		cond, n := buildLikeCondition(r.db, []string{"name", "description"})
		query = query.Where(cond, repeatLikeArgs(like, n)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id asc").Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// CreateVipCategory 创建 VIP 体验类目
func (r *GormCatalogRepository) CreateVipCategory(category *models.VipExperienceCategory) error {
	return r.db.Create(category).Error
}

// UpdateVipCategory 更新 VIP 体验类目
func (r *GormCatalogRepository) UpdateVipCategory(category *models.VipExperienceCategory) error {
	return r.db.Save(category).Error
}

// DeleteVipCategory 删除 VIP 体验类目
func (r *GormCatalogRepository) DeleteVipCategory(id uint) error {
	return r.db.Delete(&models.VipExperienceCategory{}, id).Error
}
