package service

import (
	"errors"
	"strings"
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"
)

// BusinessService 商家档案与扫码入口服务
type BusinessService struct {
	businessRepo repository.BusinessRepository
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	catalogRepo  repository.CatalogRepository
	packageRepo  repository.PackageRepository
	loyaltySvc   *LoyaltyService
}

// NewBusinessService 创建商家服务
func NewBusinessService(
	businessRepo repository.BusinessRepository,
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	catalogRepo repository.CatalogRepository,
	packageRepo repository.PackageRepository,
	loyaltySvc *LoyaltyService,
) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		catalogRepo:  catalogRepo,
		packageRepo:  packageRepo,
		loyaltySvc:   loyaltySvc,
	}
}

// GetByUserID 获取当前商家档案
func (s *BusinessService) GetByUserID(userID uint) (*models.BusinessProfile, error) {
	profile, err := s.businessRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrBusinessNotFound
	}
	return profile, nil
}

// UpdateBusinessProfileInput 商家档案更新输入
type UpdateBusinessProfileInput struct {
	Name       string
	CategoryID *uint
	CityID     *uint
	Address    string
	Latitude   *float64
	Longitude  *float64
}

// UpdateProfile 更新商家档案
func (s *BusinessService) UpdateProfile(userID uint, input UpdateBusinessProfileInput) (*models.BusinessProfile, error) {
	profile, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		profile.Name = name
	}
	if input.CategoryID != nil {
		category, err := s.catalogRepo.GetServiceCategoryByID(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		profile.CategoryID = input.CategoryID
	}
	if input.CityID != nil {
		city, err := s.catalogRepo.GetCityByID(*input.CityID)
		if err != nil {
			return nil, err
		}
		if city == nil {
			return nil, ErrCityNotFound
		}
		profile.CityID = input.CityID
	}
	if input.Address != "" {
		profile.Address = strings.TrimSpace(input.Address)
	}
	if input.Latitude != nil {
		profile.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		profile.Longitude = input.Longitude
	}

	if err := s.businessRepo.Update(profile); err != nil {
		return nil, err
	}
	return s.businessRepo.GetByID(profile.ID)
}

// ListBusinesses 商家目录检索
func (s *BusinessService) ListBusinesses(filter repository.BusinessListFilter) ([]models.BusinessProfile, int64, error) {
	return s.businessRepo.List(filter)
}

// UpdateCustomerProfileInput 顾客档案更新输入
type UpdateCustomerProfileInput struct {
	FirstName string
	LastName  string
	Gender    string
	BirthDate *time.Time
	CityID    *uint
	Address   string
}

// UpdateCustomerProfile 更新顾客档案（姓名落在用户表，其余落在档案表）
func (s *BusinessService) UpdateCustomerProfile(userID uint, input UpdateCustomerProfileInput) (*models.CustomerProfile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role != constants.RoleCustomer {
		return nil, ErrCustomerOnly
	}
	profile, err := s.customerRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileMissing
	}

	if input.FirstName != "" {
		user.FirstName = strings.TrimSpace(input.FirstName)
	}
	if input.LastName != "" {
		user.LastName = strings.TrimSpace(input.LastName)
	}
	if input.Gender != "" {
		if input.Gender != constants.GenderMale && input.Gender != constants.GenderFemale {
			return nil, errors.New("invalid gender")
		}
		profile.Gender = input.Gender
	}
	if input.BirthDate != nil {
		profile.BirthDate = input.BirthDate
	}
	if input.CityID != nil {
		city, err := s.catalogRepo.GetCityByID(*input.CityID)
		if err != nil {
			return nil, err
		}
		if city == nil {
			return nil, ErrCityNotFound
		}
		profile.CityID = input.CityID
	}
	if input.Address != "" {
		profile.Address = strings.TrimSpace(input.Address)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// GetCustomerProfile 获取顾客档案
func (s *BusinessService) GetCustomerProfile(userID uint) (*models.CustomerProfile, error) {
	profile, err := s.customerRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileMissing
	}
	return profile, nil
}

// BusinessStorefront 顾客扫码后看到的商家门面
type BusinessStorefront struct {
	Business      *models.BusinessProfile `json:"business"`
	ActivePackage *models.Package         `json:"active_package"`
	Loyalty       *models.CustomerLoyalty `json:"loyalty"`
	EliteGift     *EliteGiftEligibility   `json:"elite_gift,omitempty"`
}

// GetStorefrontByCode 顾客扫码进入商家：返回档案、生效套餐与本人忠诚度
//
// 首次扫码会为顾客建立积分账户。
func (s *BusinessService) GetStorefrontByCode(code string, customerID uint) (*BusinessStorefront, error) {
	profile, err := s.businessRepo.GetByUniqueCode(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrBusinessNotFound
	}

	storefront := &BusinessStorefront{Business: profile}

	active, err := s.packageRepo.GetActiveByBusiness(profile.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		detail, err := s.packageRepo.GetByIDWithDetails(active.ID)
		if err != nil {
			return nil, err
		}
		storefront.ActivePackage = detail
	}

	if customerID != 0 {
		loyalty, err := s.loyaltySvc.GetOrCreate(customerID, profile.ID)
		if err != nil {
			return nil, err
		}
		storefront.Loyalty = loyalty

		if storefront.ActivePackage != nil && storefront.ActivePackage.EliteGift != nil {
			eligibility, err := s.loyaltySvc.CheckEliteGift(customerID, profile.ID)
			if err != nil && !errors.Is(err, ErrEliteGiftNotConfigured) && !errors.Is(err, ErrNoActivePackage) {
				return nil, err
			}
			storefront.EliteGift = eligibility
		}
	}
	return storefront, nil
}
