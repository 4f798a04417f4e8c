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

func setupPackageBuilderTest(t *testing.T) (*PackageBuilderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:package_builder_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.BusinessProfile{},
		&models.ServiceCategory{},
		&models.VipExperienceCategory{},
		&models.Package{},
		&models.BlanketDiscount{},
		&models.SpecificDiscount{},
		&models.EliteGift{},
		&models.VipExperienceSelection{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	svc := NewPackageBuilderService(
		repository.NewPackageRepository(db),
		repository.NewCatalogRepository(db),
	)
	return svc, db
}

func seedBuilderBusiness(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		Phone:        fmt.Sprintf("0912%07d", id),
		Username:     fmt.Sprintf("builder_biz_%d", id),
		PasswordHash: "hash",
		Role:         constants.RoleBusiness,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	profile := models.BusinessProfile{
		ID:         id,
		UserID:     user.ID,
		Name:       fmt.Sprintf("کافه شماره %d", id),
		UniqueCode: fmt.Sprintf("BIZ%04d", id),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create business profile failed: %v", err)
	}
}

func seedVipCategories(t *testing.T, db *gorm.DB) (vipID, plusID uint) {
	t.Helper()
	vip := models.VipExperienceCategory{Name: "میز ویژه", VipType: constants.VipTypeVip}
	plus := models.VipExperienceCategory{Name: "دسر رایگان", VipType: constants.VipTypePlus}
	if err := db.Create(&vip).Error; err != nil {
		t.Fatalf("create vip category failed: %v", err)
	}
	if err := db.Create(&plus).Error; err != nil {
		t.Fatalf("create vip+ category failed: %v", err)
	}
	return vip.ID, plus.ID
}

// buildCompleteDraft 配齐草稿的全部要素（不提交）
func buildCompleteDraft(t *testing.T, svc *PackageBuilderService, db *gorm.DB, businessID uint) *models.Package {
	t.Helper()
	pkg, err := svc.CreateDraft(businessID)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := svc.SetDiscounts(SetDiscountsInput{
		PackageID:         pkg.ID,
		BusinessID:        businessID,
		BlanketPercentage: 10,
	}); err != nil {
		t.Fatalf("set discounts failed: %v", err)
	}
	count := 5
	if _, err := svc.SetEliteGift(SetEliteGiftInput{
		PackageID:   pkg.ID,
		BusinessID:  businessID,
		Gift:        "یک وعده رایگان",
		TargetCount: &count,
	}); err != nil {
		t.Fatalf("set elite gift failed: %v", err)
	}
	vipID, _ := seedVipCategories(t, db)
	if _, err := svc.SetVipExperiences(SetVipExperiencesInput{
		PackageID:   pkg.ID,
		BusinessID:  businessID,
		CategoryIDs: []uint{vipID},
	}); err != nil {
		t.Fatalf("set vip experiences failed: %v", err)
	}
	return pkg
}

func TestCreateDraftRejectsDuplicateDraft(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)

	if _, err := svc.CreateDraft(1); err != nil {
		t.Fatalf("first draft failed: %v", err)
	}
	if _, err := svc.CreateDraft(1); !errors.Is(err, ErrPackageDraftExists) {
		t.Fatalf("expected ErrPackageDraftExists got %v", err)
	}
}

func TestCreateDraftRejectsPendingComplete(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)

	pkg := buildCompleteDraft(t, svc, db, 1)
	if _, err := svc.Finalize(FinalizeInput{PackageID: pkg.ID, BusinessID: 1, DurationMonths: 3, Agree: true}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if _, err := svc.CreateDraft(1); !errors.Is(err, ErrPackagePendingExists) {
		t.Fatalf("expected ErrPackagePendingExists got %v", err)
	}
}

func TestCreateDraftHandoffWindow(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)

	// 生效套餐剩余 30 天，超过交接窗口，不允许开新草稿
	farEnd := time.Now().AddDate(0, 0, 30)
	active := models.Package{
		BusinessID: 1,
		Status:     constants.PackageStatusApproved,
		IsActive:   true,
		IsComplete: true,
		EndDate:    &farEnd,
	}
	if err := db.Create(&active).Error; err != nil {
		t.Fatalf("create active package failed: %v", err)
	}
	if _, err := svc.CreateDraft(1); !errors.Is(err, ErrPackageActiveTooLong) {
		t.Fatalf("expected ErrPackageActiveTooLong got %v", err)
	}

	// 剩余天数进入窗口后放行
	nearEnd := time.Now().AddDate(0, 0, constants.PackageHandoffWindowDays)
	if err := db.Model(&models.Package{}).Where("id = ?", active.ID).
		Update("end_date", nearEnd).Error; err != nil {
		t.Fatalf("update end date failed: %v", err)
	}
	if _, err := svc.CreateDraft(1); err != nil {
		t.Fatalf("draft inside handoff window failed: %v", err)
	}
}

func TestSetDiscountsValidation(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)
	pkg, err := svc.CreateDraft(1)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	if _, err := svc.SetDiscounts(SetDiscountsInput{PackageID: pkg.ID, BusinessID: 1, BlanketPercentage: 0}); !errors.Is(err, ErrDiscountPercentageInvalid) {
		t.Fatalf("expected ErrDiscountPercentageInvalid got %v", err)
	}
	if _, err := svc.SetDiscounts(SetDiscountsInput{PackageID: pkg.ID, BusinessID: 1, BlanketPercentage: 101}); !errors.Is(err, ErrDiscountPercentageInvalid) {
		t.Fatalf("expected ErrDiscountPercentageInvalid got %v", err)
	}
	if _, err := svc.SetDiscounts(SetDiscountsInput{
		PackageID:         pkg.ID,
		BusinessID:        1,
		BlanketPercentage: 20,
		Specific:          &SpecificDiscountInput{Title: "صبحانه", Percentage: 20},
	}); !errors.Is(err, ErrSpecificNotExceedBlanket) {
		t.Fatalf("expected ErrSpecificNotExceedBlanket got %v", err)
	}

	detail, err := svc.SetDiscounts(SetDiscountsInput{
		PackageID:         pkg.ID,
		BusinessID:        1,
		BlanketPercentage: 20,
		Specific:          &SpecificDiscountInput{Title: "صبحانه", Percentage: 30},
	})
	if err != nil {
		t.Fatalf("set discounts failed: %v", err)
	}
	if detail.BlanketDiscount == nil || detail.BlanketDiscount.Percentage != 20 {
		t.Fatalf("unexpected blanket discount: %+v", detail.BlanketDiscount)
	}
	if detail.SpecificDiscount == nil || detail.SpecificDiscount.Percentage != 30 {
		t.Fatalf("unexpected specific discount: %+v", detail.SpecificDiscount)
	}

	// 重复保存覆盖而非新增
	detail, err = svc.SetDiscounts(SetDiscountsInput{PackageID: pkg.ID, BusinessID: 1, BlanketPercentage: 15})
	if err != nil {
		t.Fatalf("re-set discounts failed: %v", err)
	}
	if detail.BlanketDiscount.Percentage != 15 {
		t.Fatalf("blanket discount not overwritten: %d", detail.BlanketDiscount.Percentage)
	}
	var count int64
	if err := db.Model(&models.BlanketDiscount{}).Where("package_id = ?", pkg.ID).Count(&count).Error; err != nil {
		t.Fatalf("count blanket discounts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 blanket discount row, got %d", count)
	}
}

func TestRemoveSpecificDiscount(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)
	pkg, err := svc.CreateDraft(1)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := svc.SetDiscounts(SetDiscountsInput{
		PackageID:         pkg.ID,
		BusinessID:        1,
		BlanketPercentage: 10,
		Specific:          &SpecificDiscountInput{Title: "قهوه", Percentage: 25},
	}); err != nil {
		t.Fatalf("set discounts failed: %v", err)
	}

	detail, err := svc.RemoveSpecificDiscount(pkg.ID, 1)
	if err != nil {
		t.Fatalf("remove specific discount failed: %v", err)
	}
	if detail.SpecificDiscount != nil {
		t.Fatalf("specific discount should be gone, got %+v", detail.SpecificDiscount)
	}
	if detail.BlanketDiscount == nil {
		t.Fatal("blanket discount must survive removal")
	}
}

func TestSetEliteGiftTargetRules(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)
	pkg, err := svc.CreateDraft(1)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}

	amount := models.NewMoneyFromInt(500000)
	count := 10

	if _, err := svc.SetEliteGift(SetEliteGiftInput{PackageID: pkg.ID, BusinessID: 1, Gift: "هدیه"}); !errors.Is(err, ErrEliteGiftTargetRequired) {
		t.Fatalf("expected ErrEliteGiftTargetRequired got %v", err)
	}
	if _, err := svc.SetEliteGift(SetEliteGiftInput{
		PackageID: pkg.ID, BusinessID: 1, Gift: "هدیه",
		TargetAmount: &amount, TargetCount: &count,
	}); !errors.Is(err, ErrEliteGiftTargetConflict) {
		t.Fatalf("expected ErrEliteGiftTargetConflict got %v", err)
	}

	detail, err := svc.SetEliteGift(SetEliteGiftInput{PackageID: pkg.ID, BusinessID: 1, Gift: "هدیه", TargetAmount: &amount})
	if err != nil {
		t.Fatalf("set elite gift failed: %v", err)
	}
	if detail.EliteGift == nil || detail.EliteGift.TargetAmount == nil || detail.EliteGift.TargetCount != nil {
		t.Fatalf("unexpected elite gift: %+v", detail.EliteGift)
	}

	// 切换为次数门槛时金额门槛被清空
	detail, err = svc.SetEliteGift(SetEliteGiftInput{PackageID: pkg.ID, BusinessID: 1, Gift: "هدیه", TargetCount: &count})
	if err != nil {
		t.Fatalf("switch elite gift target failed: %v", err)
	}
	if detail.EliteGift.TargetCount == nil || *detail.EliteGift.TargetCount != count {
		t.Fatalf("target count not set: %+v", detail.EliteGift)
	}
	if detail.EliteGift.TargetAmount != nil {
		t.Fatalf("target amount should be cleared, got %v", detail.EliteGift.TargetAmount)
	}
	var gifts int64
	if err := db.Model(&models.EliteGift{}).Where("package_id = ?", pkg.ID).Count(&gifts).Error; err != nil {
		t.Fatalf("count elite gifts failed: %v", err)
	}
	if gifts != 1 {
		t.Fatalf("expected 1 elite gift row, got %d", gifts)
	}
}

func TestSetVipExperiencesValidation(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)
	pkg, err := svc.CreateDraft(1)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	vipID, plusID := seedVipCategories(t, db)

	if _, err := svc.SetVipExperiences(SetVipExperiencesInput{PackageID: pkg.ID, BusinessID: 1}); !errors.Is(err, ErrVipSelectionEmpty) {
		t.Fatalf("expected ErrVipSelectionEmpty got %v", err)
	}
	if _, err := svc.SetVipExperiences(SetVipExperiencesInput{
		PackageID: pkg.ID, BusinessID: 1, CategoryIDs: []uint{vipID, 999},
	}); !errors.Is(err, ErrVipCategoryNotFound) {
		t.Fatalf("expected ErrVipCategoryNotFound got %v", err)
	}

	detail, err := svc.SetVipExperiences(SetVipExperiencesInput{
		PackageID: pkg.ID, BusinessID: 1, CategoryIDs: []uint{vipID, plusID, vipID},
	})
	if err != nil {
		t.Fatalf("set vip experiences failed: %v", err)
	}
	if len(detail.VipSelections) != 2 {
		t.Fatalf("expected deduplicated selections, got %d", len(detail.VipSelections))
	}

	// 整体替换
	detail, err = svc.SetVipExperiences(SetVipExperiencesInput{
		PackageID: pkg.ID, BusinessID: 1, CategoryIDs: []uint{plusID},
	})
	if err != nil {
		t.Fatalf("replace vip experiences failed: %v", err)
	}
	if len(detail.VipSelections) != 1 || detail.VipSelections[0].CategoryID != plusID {
		t.Fatalf("selections not replaced: %+v", detail.VipSelections)
	}
}

func TestFinalizeRules(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)

	pkg, err := svc.CreateDraft(1)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := svc.Finalize(FinalizeInput{PackageID: pkg.ID, BusinessID: 1, DurationMonths: 3, Agree: false}); !errors.Is(err, ErrAgreementRequired) {
		t.Fatalf("expected ErrAgreementRequired got %v", err)
	}
	if _, err := svc.Finalize(FinalizeInput{PackageID: pkg.ID, BusinessID: 1, DurationMonths: 4, Agree: true}); !errors.Is(err, ErrPackageDurationInvalid) {
		t.Fatalf("expected ErrPackageDurationInvalid got %v", err)
	}
	if _, err := svc.Finalize(FinalizeInput{PackageID: pkg.ID, BusinessID: 1, DurationMonths: 3, Agree: true}); !errors.Is(err, ErrPackageIncomplete) {
		t.Fatalf("expected ErrPackageIncomplete got %v", err)
	}

	if _, err := svc.SetDiscounts(SetDiscountsInput{PackageID: pkg.ID, BusinessID: 1, BlanketPercentage: 10}); err != nil {
		t.Fatalf("set discounts failed: %v", err)
	}
	visits := 3
	if _, err := svc.SetEliteGift(SetEliteGiftInput{PackageID: pkg.ID, BusinessID: 1, Gift: "هدیه", TargetCount: &visits}); err != nil {
		t.Fatalf("set elite gift failed: %v", err)
	}
	_, plusID := seedVipCategories(t, db)
	if _, err := svc.SetVipExperiences(SetVipExperiencesInput{PackageID: pkg.ID, BusinessID: 1, CategoryIDs: []uint{plusID}}); err != nil {
		t.Fatalf("set vip experiences failed: %v", err)
	}

	// 只有 VIP+ 档选配，缺少 VIP 档
	if _, err := svc.Finalize(FinalizeInput{PackageID: pkg.ID, BusinessID: 1, DurationMonths: 3, Agree: true}); !errors.Is(err, ErrVipSelectionRequired) {
		t.Fatalf("expected ErrVipSelectionRequired got %v", err)
	}

	var vipCat models.VipExperienceCategory
	if err := db.Where("vip_type = ?", constants.VipTypeVip).First(&vipCat).Error; err != nil {
		t.Fatalf("load vip category failed: %v", err)
	}
	if _, err := svc.SetVipExperiences(SetVipExperiencesInput{PackageID: pkg.ID, BusinessID: 1, CategoryIDs: []uint{vipCat.ID, plusID}}); err != nil {
		t.Fatalf("set vip experiences failed: %v", err)
	}

	final, err := svc.Finalize(FinalizeInput{PackageID: pkg.ID, BusinessID: 1, DurationMonths: 6, Agree: true})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if final.Status != constants.PackageStatusPending || !final.IsComplete || final.IsActive {
		t.Fatalf("unexpected finalized state: status=%s complete=%v active=%v", final.Status, final.IsComplete, final.IsActive)
	}
	if final.StartDate == nil || final.EndDate == nil {
		t.Fatal("finalize must set start and end dates")
	}
	wantEnd := final.StartDate.AddDate(0, 0, 6*constants.PackageDurationDays)
	if !final.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end date %v, got %v", wantEnd, final.EndDate)
	}

	// pending 后不可再编辑
	if _, err := svc.SetDiscounts(SetDiscountsInput{PackageID: pkg.ID, BusinessID: 1, BlanketPercentage: 50}); !errors.Is(err, ErrPackageNotDraft) {
		t.Fatalf("expected ErrPackageNotDraft got %v", err)
	}
}

func TestGetDetailChecksOwnership(t *testing.T) {
	svc, db := setupPackageBuilderTest(t)
	seedBuilderBusiness(t, db, 1)
	seedBuilderBusiness(t, db, 2)

	pkg, err := svc.CreateDraft(1)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if _, err := svc.GetDetail(pkg.ID, 2); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("expected ErrPackageNotFound for foreign business, got %v", err)
	}
	got, err := svc.GetDetail(pkg.ID, 1)
	if err != nil {
		t.Fatalf("get detail failed: %v", err)
	}
	if got.ID != pkg.ID {
		t.Fatalf("unexpected package %d", got.ID)
	}
}
