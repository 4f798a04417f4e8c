package service

import (
	"strings"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"
)

// CatalogService 基础目录服务：省市、服务分类与 VIP 体验分类
type CatalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// ListProvinces 省份列表
func (s *CatalogService) ListProvinces() ([]models.Province, error) {
	return s.catalogRepo.ListProvinces()
}

// ListCities 指定省份的城市列表
func (s *CatalogService) ListCities(provinceID uint) ([]models.City, error) {
	return s.catalogRepo.ListCitiesByProvince(provinceID)
}

// ListServiceCategories 服务分类列表
func (s *CatalogService) ListServiceCategories() ([]models.ServiceCategory, error) {
	return s.catalogRepo.ListServiceCategories()
}

// ServiceCategoryInput 服务分类输入
type ServiceCategoryInput struct {
	Name        string
	Description string
}

// CreateServiceCategory 创建服务分类
func (s *CatalogService) CreateServiceCategory(input ServiceCategoryInput) (*models.ServiceCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}
	category := &models.ServiceCategory{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.catalogRepo.CreateServiceCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateServiceCategory 更新服务分类
func (s *CatalogService) UpdateServiceCategory(id uint, input ServiceCategoryInput) (*models.ServiceCategory, error) {
	category, err := s.catalogRepo.GetServiceCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	category.Description = strings.TrimSpace(input.Description)
	if err := s.catalogRepo.UpdateServiceCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteServiceCategory 删除服务分类
func (s *CatalogService) DeleteServiceCategory(id uint) error {
	category, err := s.catalogRepo.GetServiceCategoryByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return s.catalogRepo.DeleteServiceCategory(id)
}

// VipCategoryInput VIP 体验分类输入
type VipCategoryInput struct {
	Name        string
	Description string
	VipType     string
	CategoryID  *uint
}

// ListVipCategories VIP 体验分类列表
func (s *CatalogService) ListVipCategories(filter repository.VipExperienceCategoryListFilter) ([]models.VipExperienceCategory, int64, error) {
	return s.catalogRepo.ListVipCategories(filter)
}

// CreateVipCategory 创建 VIP 体验分类
func (s *CatalogService) CreateVipCategory(input VipCategoryInput) (*models.VipExperienceCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}
	if input.VipType != constants.VipTypeVip && input.VipType != constants.VipTypePlus {
		return nil, ErrVipTypeInvalid
	}
	if input.CategoryID != nil {
		category, err := s.catalogRepo.GetServiceCategoryByID(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
	}
	category := &models.VipExperienceCategory{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		VipType:     input.VipType,
		CategoryID:  input.CategoryID,
	}
	if err := s.catalogRepo.CreateVipCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateVipCategory 更新 VIP 体验分类
func (s *CatalogService) UpdateVipCategory(id uint, input VipCategoryInput) (*models.VipExperienceCategory, error) {
	category, err := s.catalogRepo.GetVipCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrVipCategoryNotFound
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	if input.VipType != "" {
		if input.VipType != constants.VipTypeVip && input.VipType != constants.VipTypePlus {
			return nil, ErrVipTypeInvalid
		}
		category.VipType = input.VipType
	}
	category.Description = strings.TrimSpace(input.Description)
	if input.CategoryID != nil {
		serviceCategory, err := s.catalogRepo.GetServiceCategoryByID(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		if serviceCategory == nil {
			return nil, ErrCategoryNotFound
		}
		category.CategoryID = input.CategoryID
	}
	if err := s.catalogRepo.UpdateVipCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteVipCategory 删除 VIP 体验分类
func (s *CatalogService) DeleteVipCategory(id uint) error {
	category, err := s.catalogRepo.GetVipCategoryByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrVipCategoryNotFound
	}
	return s.catalogRepo.DeleteVipCategory(id)
}
