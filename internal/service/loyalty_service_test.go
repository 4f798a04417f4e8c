package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLoyaltyServiceTest(t *testing.T) (*LoyaltyService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:loyalty_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.BusinessProfile{},
		&models.Package{},
		&models.BlanketDiscount{},
		&models.SpecificDiscount{},
		&models.EliteGift{},
		&models.VipExperienceCategory{},
		&models.VipExperienceSelection{},
		&models.CustomerLoyalty{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewLoyaltyService(
		repository.NewLoyaltyRepository(db),
		repository.NewPackageRepository(db),
	), db
}

// seedActivePackageWithGift 落库一个带精英赠礼的生效套餐
func seedActivePackageWithGift(t *testing.T, db *gorm.DB, businessID uint, targetAmount *models.Money, targetCount *int) *models.Package {
	t.Helper()
	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 89)
	pkg := models.Package{
		BusinessID: businessID,
		Status:     constants.PackageStatusApproved,
		IsActive:   true,
		IsComplete: true,
		StartDate:  &start,
		EndDate:    &end,
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("create package failed: %v", err)
	}
	gift := models.EliteGift{
		PackageID:    pkg.ID,
		Gift:         "شام دونفره",
		TargetAmount: targetAmount,
		TargetCount:  targetCount,
	}
	if err := db.Create(&gift).Error; err != nil {
		t.Fatalf("create elite gift failed: %v", err)
	}
	return &pkg
}

func TestGetOrCreateLoyaltyAccount(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)

	loyalty, err := svc.GetOrCreate(1, 2)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if loyalty.Points != 0 || loyalty.VipStatus != constants.VipStatusNone {
		t.Fatalf("new account must start at zero: %+v", loyalty)
	}

	again, err := svc.GetOrCreate(1, 2)
	if err != nil {
		t.Fatalf("second get or create failed: %v", err)
	}
	if again.ID != loyalty.ID {
		t.Fatalf("expected same account, got %d and %d", loyalty.ID, again.ID)
	}
	var count int64
	if err := db.Model(&models.CustomerLoyalty{}).Count(&count).Error; err != nil {
		t.Fatalf("count accounts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 account row, got %d", count)
	}

	if _, err := svc.GetOrCreate(0, 2); !errors.Is(err, ErrLoyaltyNotFound) {
		t.Fatalf("expected ErrLoyaltyNotFound got %v", err)
	}
}

func TestAddPointsDerivesVipStatus(t *testing.T) {
	svc, _ := setupLoyaltyServiceTest(t)

	loyalty, err := svc.AddPoints(1, 2, constants.VipThreshold-1)
	if err != nil {
		t.Fatalf("add points failed: %v", err)
	}
	if loyalty.VipStatus != constants.VipStatusNone {
		t.Fatalf("below threshold should stay none, got %s", loyalty.VipStatus)
	}

	loyalty, err = svc.AddPoints(1, 2, 1)
	if err != nil {
		t.Fatalf("add points failed: %v", err)
	}
	if loyalty.VipStatus != constants.VipStatusVip {
		t.Fatalf("expected vip at %d points, got %s", loyalty.Points, loyalty.VipStatus)
	}

	loyalty, err = svc.AddPoints(1, 2, constants.VipPlusThreshold-constants.VipThreshold)
	if err != nil {
		t.Fatalf("add points failed: %v", err)
	}
	if loyalty.VipStatus != constants.VipStatusPlus {
		t.Fatalf("expected vip_plus at %d points, got %s", loyalty.Points, loyalty.VipStatus)
	}

	if _, err := svc.AddPoints(1, 2, -10); !errors.Is(err, ErrNegativePoints) {
		t.Fatalf("expected ErrNegativePoints got %v", err)
	}
}

func TestCheckEliteGiftStates(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)

	// 无生效套餐
	if _, err := svc.CheckEliteGift(1, 2); !errors.Is(err, ErrNoActivePackage) {
		t.Fatalf("expected ErrNoActivePackage got %v", err)
	}

	count := 3
	seedActivePackageWithGift(t, db, 2, nil, &count)

	elig, err := svc.CheckEliteGift(1, 2)
	if err != nil {
		t.Fatalf("check elite gift failed: %v", err)
	}
	if elig.TargetReached || elig.AlreadyUsed {
		t.Fatalf("fresh account should not be eligible: %+v", elig)
	}
	if elig.Gift == nil || elig.Gift.TargetCount == nil || *elig.Gift.TargetCount != count {
		t.Fatalf("gift not surfaced: %+v", elig.Gift)
	}

	// 达标：核销次数满足门槛
	if err := db.Model(&models.CustomerLoyalty{}).
		Where("customer_id = ? AND business_id = ?", uint(1), uint(2)).
		Update("visit_count", count).Error; err != nil {
		t.Fatalf("update visit count failed: %v", err)
	}
	elig, err = svc.CheckEliteGift(1, 2)
	if err != nil {
		t.Fatalf("check elite gift failed: %v", err)
	}
	if !elig.TargetReached {
		t.Fatal("target should be reached at the visit threshold")
	}
}

func TestUseEliteGiftFlow(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)
	amount := models.NewMoneyFromInt(300000)
	seedActivePackageWithGift(t, db, 2, &amount, nil)

	if _, err := svc.UseEliteGift(1, 2); !errors.Is(err, ErrEliteGiftTargetNotReached) {
		t.Fatalf("expected ErrEliteGiftTargetNotReached got %v", err)
	}

	// 累计消费达门槛后，兑换时按当前累计刷新达标标记
	if err := db.Model(&models.CustomerLoyalty{}).
		Where("customer_id = ? AND business_id = ?", uint(1), uint(2)).
		Update("total_spent", models.NewMoneyFromInt(300000)).Error; err != nil {
		t.Fatalf("update total spent failed: %v", err)
	}
	loyalty, err := svc.UseEliteGift(1, 2)
	if err != nil {
		t.Fatalf("use elite gift failed: %v", err)
	}
	if !loyalty.EliteGiftUsed || loyalty.EliteGiftUsedAt == nil {
		t.Fatalf("gift not marked used: %+v", loyalty)
	}

	// 二次兑换被拒
	if _, err := svc.UseEliteGift(1, 2); !errors.Is(err, ErrEliteGiftAlreadyUsed) {
		t.Fatalf("expected ErrEliteGiftAlreadyUsed got %v", err)
	}
}

func TestUseEliteGiftWithoutConfiguredGift(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)

	// 有生效套餐但未配置赠礼
	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 89)
	pkg := models.Package{
		BusinessID: 2,
		Status:     constants.PackageStatusApproved,
		IsActive:   true,
		IsComplete: true,
		StartDate:  &start,
		EndDate:    &end,
	}
	if err := db.Create(&pkg).Error; err != nil {
		t.Fatalf("create package failed: %v", err)
	}

	if _, err := svc.UseEliteGift(1, 2); !errors.Is(err, ErrEliteGiftTargetNotReached) {
		t.Fatalf("expected ErrEliteGiftTargetNotReached got %v", err)
	}
	elig, err := svc.CheckEliteGift(1, 2)
	if !errors.Is(err, ErrEliteGiftNotConfigured) {
		t.Fatalf("expected ErrEliteGiftNotConfigured got %v (elig=%+v)", err, elig)
	}
}

func TestListByBusinessFiltersVipStatus(t *testing.T) {
	svc, db := setupLoyaltyServiceTest(t)

	accounts := []models.CustomerLoyalty{
		{CustomerID: 1, BusinessID: 2, Points: 100, VipStatus: constants.VipStatusNone},
		{CustomerID: 2, BusinessID: 2, Points: 3500, VipStatus: constants.VipStatusVip},
		{CustomerID: 3, BusinessID: 2, Points: 8000, VipStatus: constants.VipStatusPlus},
		{CustomerID: 4, BusinessID: 9, Points: 4000, VipStatus: constants.VipStatusVip},
	}
	for i := range accounts {
		if err := db.Create(&accounts[i]).Error; err != nil {
			t.Fatalf("create loyalty failed: %v", err)
		}
	}

	items, total, err := svc.ListByBusiness(repository.LoyaltyListFilter{BusinessID: 2, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 accounts for business 2, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.ListByBusiness(repository.LoyaltyListFilter{
		BusinessID: 2,
		VipStatus:  constants.VipStatusVip,
		Page:       1,
		PageSize:   10,
	})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].CustomerID != 2 {
		t.Fatalf("vip filter wrong result: total=%d items=%+v", total, items)
	}
}
