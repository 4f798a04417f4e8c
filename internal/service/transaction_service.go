package service

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService 消费交易服务
//
// 创建时按商家生效套餐一次性计算并冻结折扣与应付金额；
// 核销（approve）时一次性记入积分，重复核销为空操作。
type TransactionService struct {
	transactionRepo repository.TransactionRepository
	packageRepo     repository.PackageRepository
	businessRepo    repository.BusinessRepository
	loyaltySvc      *LoyaltyService
}

// NewTransactionService 创建交易服务
func NewTransactionService(
	transactionRepo repository.TransactionRepository,
	packageRepo repository.PackageRepository,
	businessRepo repository.BusinessRepository,
	loyaltySvc *LoyaltyService,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		packageRepo:     packageRepo,
		businessRepo:    businessRepo,
		loyaltySvc:      loyaltySvc,
	}
}

// CreateTransactionInput 创建交易输入
type CreateTransactionInput struct {
	CustomerID                    uint
	BusinessID                    uint
	OriginalAmount                models.Money
	HasSpecialDiscount            bool
	SpecialDiscountOriginalAmount models.Money
}

// Create 创建交易并冻结折扣计算结果
func (s *TransactionService) Create(input CreateTransactionInput) (*models.Transaction, error) {
	if input.CustomerID == 0 {
		return nil, ErrUserNotFound
	}
	business, err := s.businessRepo.GetByID(input.BusinessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, ErrBusinessNotFound
	}
	if input.OriginalAmount.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrTransactionAmountInvalid
	}
	if input.HasSpecialDiscount && input.SpecialDiscountOriginalAmount.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrTransactionAmountInvalid
	}

	active, err := s.packageRepo.GetActiveByBusiness(business.ID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActivePackage
	}
	detail, err := s.packageRepo.GetByIDWithDetails(active.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrNoActivePackage
	}

	txn := &models.Transaction{
		CustomerID:                    input.CustomerID,
		BusinessID:                    business.ID,
		PackageID:                     detail.ID,
		Status:                        constants.TransactionStatusPending,
		OriginalAmount:                input.OriginalAmount,
		HasSpecialDiscount:            input.HasSpecialDiscount,
		SpecialDiscountOriginalAmount: input.SpecialDiscountOriginalAmount,
	}
	freezeTransactionMath(txn, detail)

	// 首次交互时建立忠诚度账户
	if _, err := s.loyaltySvc.GetOrCreate(input.CustomerID, business.ID); err != nil {
		return nil, err
	}
	if err := s.transactionRepo.Create(txn); err != nil {
		return nil, err
	}
	logger.Infow("transaction_created",
		"transaction_id", txn.ID,
		"customer_id", txn.CustomerID,
		"business_id", txn.BusinessID,
		"package_id", txn.PackageID,
		"final_amount", txn.FinalAmount.String())
	return txn, nil
}

// Approve 核销交易：仅首次核销计算并记入积分，再次调用为空操作
func (s *TransactionService) Approve(transactionID, businessID uint) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	if businessID != 0 && txn.BusinessID != businessID {
		return nil, ErrTransactionNotOwner
	}
	if txn.Status == constants.TransactionStatusApproved {
		return txn, nil
	}

	points := calculatePoints(txn.FinalAmount)
	detail, err := s.packageRepo.GetByIDWithDetails(txn.PackageID)
	if err != nil {
		return nil, err
	}
	var gift *models.EliteGift
	if detail != nil {
		gift = detail.EliteGift
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.transactionRepo.WithTx(tx)
		txn.Status = constants.TransactionStatusApproved
		txn.PointsEarned = points
		txn.ApprovedAt = &now
		if err := repo.Update(txn); err != nil {
			return err
		}
		return s.loyaltySvc.CreditTx(tx, txn.CustomerID, txn.BusinessID, points, txn.FinalAmount, gift)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("transaction_approved",
		"transaction_id", txn.ID,
		"customer_id", txn.CustomerID,
		"business_id", txn.BusinessID,
		"points_earned", points)
	return txn, nil
}

// Reject 驳回交易，不影响积分
func (s *TransactionService) Reject(transactionID, businessID uint) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	if businessID != 0 && txn.BusinessID != businessID {
		return nil, ErrTransactionNotOwner
	}
	if txn.Status == constants.TransactionStatusApproved {
		return nil, ErrTransactionAlreadyApproved
	}
	txn.Status = constants.TransactionStatusRejected
	if err := s.transactionRepo.Update(txn); err != nil {
		return nil, err
	}
	logger.Infow("transaction_rejected", "transaction_id", txn.ID, "business_id", txn.BusinessID)
	return txn, nil
}

// GetByID 查询交易（businessID 非零时校验归属）
func (s *TransactionService) GetByID(transactionID, businessID uint) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	if businessID != 0 && txn.BusinessID != businessID {
		return nil, ErrTransactionNotOwner
	}
	return txn, nil
}

// List 查询交易列表
func (s *TransactionService) List(filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	return s.transactionRepo.List(filter)
}

// freezeTransactionMath 创建时一次性计算折扣与应付金额
//
// 全场折扣金额 = 原始金额 × 全场折扣% ；
// 专项折扣金额 = 专项部分原始金额 × 专项折扣% （仅在专项标记开启且套餐配置了专项折扣时）；
// 应付 = (原始 - 全场折扣) + (专项原始 - 专项折扣)，下限 0。
func freezeTransactionMath(txn *models.Transaction, pkg *models.Package) {
	hundred := decimal.NewFromInt(100)

	discountAll := decimal.Zero
	if pkg.BlanketDiscount != nil {
		pct := decimal.NewFromInt(int64(pkg.BlanketDiscount.Percentage))
		discountAll = txn.OriginalAmount.Decimal.Mul(pct).Div(hundred).Round(0)
	}

	specialDiscount := decimal.Zero
	if txn.HasSpecialDiscount && pkg.SpecificDiscount != nil {
		pct := decimal.NewFromInt(int64(pkg.SpecificDiscount.Percentage))
		specialDiscount = txn.SpecialDiscountOriginalAmount.Decimal.Mul(pct).Div(hundred).Round(0)
	}

	final := txn.OriginalAmount.Decimal.Sub(discountAll)
	if txn.HasSpecialDiscount {
		final = final.Add(txn.SpecialDiscountOriginalAmount.Decimal.Sub(specialDiscount))
	}
	if final.LessThan(decimal.Zero) {
		final = decimal.Zero
	}

	txn.DiscountAllAmount = models.NewMoneyFromDecimal(discountAll)
	txn.SpecialDiscountAmount = models.NewMoneyFromDecimal(specialDiscount)
	txn.FinalAmount = models.NewMoneyFromDecimal(final)
}

// calculatePoints 每满 10000 托曼记 1 积分，向下取整
func calculatePoints(final models.Money) int64 {
	unit := decimal.NewFromInt(constants.PointsPerAmountUnit)
	return final.Decimal.Div(unit).Floor().IntPart()
}
