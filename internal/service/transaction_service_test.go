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

func setupTransactionServiceTest(t *testing.T) (*TransactionService, *LoyaltyService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:transaction_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.Transaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	loyaltySvc := NewLoyaltyService(
		repository.NewLoyaltyRepository(db),
		repository.NewPackageRepository(db),
	)
	txnSvc := NewTransactionService(
		repository.NewTransactionRepository(db),
		repository.NewPackageRepository(db),
		repository.NewBusinessRepository(db),
		loyaltySvc,
	)
	return txnSvc, loyaltySvc, db
}

// seedTransactionBusiness 商家档案 + 生效套餐（全场 20%、专项 50%、金额门槛赠礼）
func seedTransactionBusiness(t *testing.T, db *gorm.DB, businessID uint) *models.Package {
	t.Helper()
	user := models.User{
		Phone:        fmt.Sprintf("0935%07d", businessID),
		Username:     fmt.Sprintf("txn_biz_%d", businessID),
		PasswordHash: "hash",
		Role:         constants.RoleBusiness,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	profile := models.BusinessProfile{
		ID:         businessID,
		UserID:     user.ID,
		Name:       fmt.Sprintf("رستوران %d", businessID),
		UniqueCode: fmt.Sprintf("TXN%04d", businessID),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create business profile failed: %v", err)
	}

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
	if err := db.Create(&models.BlanketDiscount{PackageID: pkg.ID, Percentage: 20}).Error; err != nil {
		t.Fatalf("create blanket discount failed: %v", err)
	}
	if err := db.Create(&models.SpecificDiscount{PackageID: pkg.ID, Title: "کباب", Percentage: 50}).Error; err != nil {
		t.Fatalf("create specific discount failed: %v", err)
	}
	giftTarget := models.NewMoneyFromInt(200000)
	if err := db.Create(&models.EliteGift{PackageID: pkg.ID, Gift: "هدیه", TargetAmount: &giftTarget}).Error; err != nil {
		t.Fatalf("create elite gift failed: %v", err)
	}
	return &pkg
}

func TestCreateTransactionFreezesDiscountMath(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	pkg := seedTransactionBusiness(t, db, 1)

	txn, err := svc.Create(CreateTransactionInput{
		CustomerID:     7,
		BusinessID:     1,
		OriginalAmount: models.NewMoneyFromInt(100000),
	})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	if txn.PackageID != pkg.ID {
		t.Fatalf("transaction not pinned to active package: %d", txn.PackageID)
	}
	if txn.Status != constants.TransactionStatusPending {
		t.Fatalf("expected pending status, got %s", txn.Status)
	}
	// 100000 × 20% = 20000 折扣，应付 80000
	if got := txn.DiscountAllAmount.String(); got != "20000" {
		t.Fatalf("unexpected blanket discount amount %s", got)
	}
	if got := txn.FinalAmount.String(); got != "80000" {
		t.Fatalf("unexpected final amount %s", got)
	}

	// 创建时自动建立忠诚度账户
	var loyalty models.CustomerLoyalty
	if err := db.Where("customer_id = ? AND business_id = ?", uint(7), uint(1)).
		First(&loyalty).Error; err != nil {
		t.Fatalf("loyalty account not created: %v", err)
	}
	if loyalty.Points != 0 {
		t.Fatalf("points must not accrue before approval, got %d", loyalty.Points)
	}
}

func TestCreateTransactionWithSpecialDiscount(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	seedTransactionBusiness(t, db, 1)

	txn, err := svc.Create(CreateTransactionInput{
		CustomerID:                    7,
		BusinessID:                    1,
		OriginalAmount:                models.NewMoneyFromInt(100000),
		HasSpecialDiscount:            true,
		SpecialDiscountOriginalAmount: models.NewMoneyFromInt(60000),
	})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	// 全场部分：100000 − 20000 = 80000
	// 专项部分：60000 − 30000 = 30000
	if got := txn.SpecialDiscountAmount.String(); got != "30000" {
		t.Fatalf("unexpected special discount amount %s", got)
	}
	if got := txn.FinalAmount.String(); got != "110000" {
		t.Fatalf("unexpected final amount %s", got)
	}
}

func TestCreateTransactionGuards(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	seedTransactionBusiness(t, db, 1)

	if _, err := svc.Create(CreateTransactionInput{CustomerID: 0, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(1000)}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound got %v", err)
	}
	if _, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 404, OriginalAmount: models.NewMoneyFromInt(1000)}); !errors.Is(err, ErrBusinessNotFound) {
		t.Fatalf("expected ErrBusinessNotFound got %v", err)
	}
	if _, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 1}); !errors.Is(err, ErrTransactionAmountInvalid) {
		t.Fatalf("expected ErrTransactionAmountInvalid got %v", err)
	}
	if _, err := svc.Create(CreateTransactionInput{
		CustomerID:         7,
		BusinessID:         1,
		OriginalAmount:     models.NewMoneyFromInt(1000),
		HasSpecialDiscount: true,
	}); !errors.Is(err, ErrTransactionAmountInvalid) {
		t.Fatalf("expected ErrTransactionAmountInvalid for empty special amount, got %v", err)
	}

	// 商家无生效套餐
	if err := models.DB.Model(&models.Package{}).Where("business_id = ?", uint(1)).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate package failed: %v", err)
	}
	if _, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(1000)}); !errors.Is(err, ErrNoActivePackage) {
		t.Fatalf("expected ErrNoActivePackage got %v", err)
	}
}

func TestApproveCreditsPointsOnce(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	seedTransactionBusiness(t, db, 1)

	// 应付 80000 → 8 积分
	txn, err := svc.Create(CreateTransactionInput{
		CustomerID:     7,
		BusinessID:     1,
		OriginalAmount: models.NewMoneyFromInt(100000),
	})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}

	approved, err := svc.Approve(txn.ID, 1)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.TransactionStatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if approved.PointsEarned != 8 {
		t.Fatalf("expected 8 points, got %d", approved.PointsEarned)
	}
	if approved.ApprovedAt == nil {
		t.Fatal("approved_at must be set")
	}

	var loyalty models.CustomerLoyalty
	if err := db.Where("customer_id = ? AND business_id = ?", uint(7), uint(1)).
		First(&loyalty).Error; err != nil {
		t.Fatalf("load loyalty failed: %v", err)
	}
	if loyalty.Points != 8 || loyalty.VisitCount != 1 {
		t.Fatalf("unexpected loyalty state: points=%d visits=%d", loyalty.Points, loyalty.VisitCount)
	}
	if got := loyalty.TotalSpent.String(); got != "80000" {
		t.Fatalf("unexpected total spent %s", got)
	}

	// 重复核销不再记分
	if _, err := svc.Approve(txn.ID, 1); err != nil {
		t.Fatalf("re-approve failed: %v", err)
	}
	if err := db.Where("customer_id = ? AND business_id = ?", uint(7), uint(1)).
		First(&loyalty).Error; err != nil {
		t.Fatalf("reload loyalty failed: %v", err)
	}
	if loyalty.Points != 8 || loyalty.VisitCount != 1 {
		t.Fatalf("idempotent approve double-credited: points=%d visits=%d", loyalty.Points, loyalty.VisitCount)
	}
}

func TestApproveMarksEliteGiftTarget(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	seedTransactionBusiness(t, db, 1)

	// 门槛 200000：两笔应付 80000 + 160000 跨过门槛
	first, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(100000)})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	if _, err := svc.Approve(first.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	var loyalty models.CustomerLoyalty
	if err := db.Where("customer_id = ? AND business_id = ?", uint(7), uint(1)).First(&loyalty).Error; err != nil {
		t.Fatalf("load loyalty failed: %v", err)
	}
	if loyalty.EliteGiftTargetReached {
		t.Fatal("target must not be reached at 80000 spent")
	}

	second, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(200000)})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	if _, err := svc.Approve(second.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := db.Where("customer_id = ? AND business_id = ?", uint(7), uint(1)).First(&loyalty).Error; err != nil {
		t.Fatalf("reload loyalty failed: %v", err)
	}
	if !loyalty.EliteGiftTargetReached {
		t.Fatalf("target should be reached at %s spent", loyalty.TotalSpent.String())
	}
}

func TestApproveChecksOwnership(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	seedTransactionBusiness(t, db, 1)
	seedTransactionBusiness(t, db, 2)

	txn, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(50000)})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	if _, err := svc.Approve(txn.ID, 2); !errors.Is(err, ErrTransactionNotOwner) {
		t.Fatalf("expected ErrTransactionNotOwner got %v", err)
	}
	if _, err := svc.Approve(404, 1); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound got %v", err)
	}
	if _, err := svc.GetByID(txn.ID, 2); !errors.Is(err, ErrTransactionNotOwner) {
		t.Fatalf("expected ErrTransactionNotOwner on get, got %v", err)
	}
}

func TestRejectLeavesLoyaltyUntouched(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	seedTransactionBusiness(t, db, 1)

	txn, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(50000)})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	rejected, err := svc.Reject(txn.ID, 1)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.TransactionStatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}

	var loyalty models.CustomerLoyalty
	if err := db.Where("customer_id = ? AND business_id = ?", uint(7), uint(1)).First(&loyalty).Error; err != nil {
		t.Fatalf("load loyalty failed: %v", err)
	}
	if loyalty.Points != 0 || loyalty.VisitCount != 0 {
		t.Fatalf("rejected transaction must not credit: points=%d visits=%d", loyalty.Points, loyalty.VisitCount)
	}

	// 已核销交易不可驳回
	approvedTxn, err := svc.Create(CreateTransactionInput{CustomerID: 7, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(50000)})
	if err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	if _, err := svc.Approve(approvedTxn.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.Reject(approvedTxn.ID, 1); !errors.Is(err, ErrTransactionAlreadyApproved) {
		t.Fatalf("expected ErrTransactionAlreadyApproved got %v", err)
	}
	var stored models.Transaction
	if err := db.First(&stored, approvedTxn.ID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if stored.Status != constants.TransactionStatusApproved {
		t.Fatalf("failed reject must leave state unchanged, got %s", stored.Status)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	svc, _, db := setupTransactionServiceTest(t)
	seedTransactionBusiness(t, db, 1)

	for _, customerID := range []uint{7, 8, 7} {
		if _, err := svc.Create(CreateTransactionInput{CustomerID: customerID, BusinessID: 1, OriginalAmount: models.NewMoneyFromInt(50000)}); err != nil {
			t.Fatalf("create transaction failed: %v", err)
		}
	}

	items, total, err := svc.List(repository.TransactionListFilter{BusinessID: 1, CustomerID: 7, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 transactions for customer 7, got total=%d len=%d", total, len(items))
	}

	items, total, err = svc.List(repository.TransactionListFilter{BusinessID: 1, Status: constants.TransactionStatusPending, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("status list failed: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 pending transactions, got total=%d len=%d", total, len(items))
	}
}
