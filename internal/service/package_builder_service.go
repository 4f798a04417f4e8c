package service

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"
)

// PackageBuilderService 套餐草稿构建服务
//
// 商家在 draft 状态下逐步配置折扣、精英赠礼与 VIP 体验，
// 每次保存后重新计算 is_complete，最终 Finalize 提交审核。
type PackageBuilderService struct {
	packageRepo repository.PackageRepository
	catalogRepo repository.CatalogRepository
}

// NewPackageBuilderService 创建套餐构建服务
func NewPackageBuilderService(
	packageRepo repository.PackageRepository,
	catalogRepo repository.CatalogRepository,
) *PackageBuilderService {
	return &PackageBuilderService{
		packageRepo: packageRepo,
		catalogRepo: catalogRepo,
	}
}

// SetDiscountsInput 设置折扣输入
type SetDiscountsInput struct {
	PackageID         uint
	BusinessID        uint
	BlanketPercentage int
	Specific          *SpecificDiscountInput
}

// SpecificDiscountInput 专项折扣输入
type SpecificDiscountInput struct {
	Title       string
	Description string
	Percentage  int
}

// SetEliteGiftInput 设置精英赠礼输入
type SetEliteGiftInput struct {
	PackageID    uint
	BusinessID   uint
	Gift         string
	TargetAmount *models.Money
	TargetCount  *int
}

// SetVipExperiencesInput 设置 VIP 体验选配输入
type SetVipExperiencesInput struct {
	PackageID   uint
	BusinessID  uint
	CategoryIDs []uint
}

// FinalizeInput 提交审核输入
type FinalizeInput struct {
	PackageID      uint
	BusinessID     uint
	DurationMonths int
	Agree          bool
}

// CreateDraft 创建草稿套餐
//
// 创建前置校验：不存在未完成草稿；不存在已提交待审的完整套餐；
// 当前生效套餐剩余天数不超过交接窗口（恰好等于窗口天数允许）。
func (s *PackageBuilderService) CreateDraft(businessID uint) (*models.Package, error) {
	if businessID == 0 {
		return nil, ErrBusinessNotFound
	}

	draft, err := s.packageRepo.GetDraftByBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		return nil, ErrPackageDraftExists
	}

	pending, err := s.packageRepo.GetPendingCompleteByBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrPackagePendingExists
	}

	active, err := s.packageRepo.GetActiveByBusiness(businessID)
	if err != nil {
		return nil, err
	}
	if active != nil && active.DaysRemaining(time.Now()) > constants.PackageHandoffWindowDays {
		return nil, ErrPackageActiveTooLong
	}

	pkg := &models.Package{
		BusinessID: businessID,
		Status:     constants.PackageStatusDraft,
	}
	if err := s.packageRepo.Create(pkg); err != nil {
		return nil, err
	}
	logger.Infow("package_draft_created", "package_id", pkg.ID, "business_id", businessID)
	return pkg, nil
}

// SetDiscounts 设置全场折扣与可选的专项折扣
func (s *PackageBuilderService) SetDiscounts(input SetDiscountsInput) (*models.Package, error) {
	pkg, err := s.getEditableDraft(input.PackageID, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if input.BlanketPercentage < 1 || input.BlanketPercentage > 100 {
		return nil, ErrDiscountPercentageInvalid
	}
	if input.Specific != nil {
		if input.Specific.Percentage < 1 || input.Specific.Percentage > 100 {
			return nil, ErrDiscountPercentageInvalid
		}
		if input.Specific.Percentage <= input.BlanketPercentage {
			return nil, ErrSpecificNotExceedBlanket
		}
	}

	blanket := &models.BlanketDiscount{
		PackageID:  pkg.ID,
		Percentage: input.BlanketPercentage,
	}
	if err := s.packageRepo.UpsertBlanketDiscount(blanket); err != nil {
		return nil, err
	}
	if input.Specific != nil {
		specific := &models.SpecificDiscount{
			PackageID:   pkg.ID,
			Title:       input.Specific.Title,
			Description: input.Specific.Description,
			Percentage:  input.Specific.Percentage,
		}
		if err := s.packageRepo.UpsertSpecificDiscount(specific); err != nil {
			return nil, err
		}
	}
	return s.refreshCompletion(pkg.ID)
}

// RemoveSpecificDiscount 移除专项折扣（显式操作，不随 SetDiscounts 隐式删除）
func (s *PackageBuilderService) RemoveSpecificDiscount(packageID, businessID uint) (*models.Package, error) {
	pkg, err := s.getEditableDraft(packageID, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.packageRepo.DeleteSpecificDiscount(pkg.ID); err != nil {
		return nil, err
	}
	return s.refreshCompletion(pkg.ID)
}

// SetEliteGift 设置精英赠礼；金额门槛与次数门槛二选一，设置其一清空另一项
func (s *PackageBuilderService) SetEliteGift(input SetEliteGiftInput) (*models.Package, error) {
	pkg, err := s.getEditableDraft(input.PackageID, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if input.Gift == "" {
		return nil, ErrEliteGiftTargetRequired
	}
	if input.TargetAmount == nil && input.TargetCount == nil {
		return nil, ErrEliteGiftTargetRequired
	}
	if input.TargetAmount != nil && input.TargetCount != nil {
		return nil, ErrEliteGiftTargetConflict
	}

	gift := &models.EliteGift{
		PackageID: pkg.ID,
		Gift:      input.Gift,
	}
	if input.TargetAmount != nil {
		gift.TargetAmount = input.TargetAmount
		gift.TargetCount = nil
	} else {
		gift.TargetCount = input.TargetCount
		gift.TargetAmount = nil
	}
	if err := s.packageRepo.UpsertEliteGift(gift); err != nil {
		return nil, err
	}
	return s.refreshCompletion(pkg.ID)
}

// SetVipExperiences 整体替换套餐的 VIP 体验选配
func (s *PackageBuilderService) SetVipExperiences(input SetVipExperiencesInput) (*models.Package, error) {
	pkg, err := s.getEditableDraft(input.PackageID, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if len(input.CategoryIDs) == 0 {
		return nil, ErrVipSelectionEmpty
	}
	categories, err := s.catalogRepo.ListVipCategoriesByIDs(input.CategoryIDs)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(uniqueIDs(input.CategoryIDs)) {
		return nil, ErrVipCategoryNotFound
	}
	if err := s.packageRepo.ReplaceVipSelections(pkg.ID, uniqueIDs(input.CategoryIDs)); err != nil {
		return nil, err
	}
	return s.refreshCompletion(pkg.ID)
}

// Finalize 提交审核
//
// 要求明确同意条款，时长限定 3/6/9/12 个月，按 30 天/月计算有效期，
// 且选配中至少包含一项 VIP 档体验。成功后套餐进入 pending 状态。
func (s *PackageBuilderService) Finalize(input FinalizeInput) (*models.Package, error) {
	pkg, err := s.getEditableDraft(input.PackageID, input.BusinessID)
	if err != nil {
		return nil, err
	}
	if !input.Agree {
		return nil, ErrAgreementRequired
	}
	if !validDurationMonths(input.DurationMonths) {
		return nil, ErrPackageDurationInvalid
	}

	detail, err := s.packageRepo.GetByIDWithDetails(pkg.ID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrPackageNotFound
	}
	if detail.BlanketDiscount == nil || detail.EliteGift == nil || len(detail.VipSelections) == 0 {
		return nil, ErrPackageIncomplete
	}
	hasVipTier := false
	for _, sel := range detail.VipSelections {
		if sel.Category != nil && sel.Category.VipType == constants.VipTypeVip {
			hasVipTier = true
			break
		}
	}
	if !hasVipTier {
		return nil, ErrVipSelectionRequired
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, input.DurationMonths*constants.PackageDurationDays)

	detail.StartDate = &start
	detail.EndDate = &end
	detail.IsComplete = true
	detail.IsActive = false
	detail.Status = constants.PackageStatusPending
	if err := s.packageRepo.Update(detail); err != nil {
		return nil, err
	}
	logger.Infow("package_finalized",
		"package_id", detail.ID,
		"business_id", detail.BusinessID,
		"duration_months", input.DurationMonths,
		"start_date", start.Format("2006-01-02"),
		"end_date", end.Format("2006-01-02"))
	return detail, nil
}

// GetDetail 获取套餐及其子要素（校验归属）
func (s *PackageBuilderService) GetDetail(packageID, businessID uint) (*models.Package, error) {
	pkg, err := s.packageRepo.GetByIDWithDetails(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil || (businessID != 0 && pkg.BusinessID != businessID) {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

// ListByBusiness 商家套餐列表
func (s *PackageBuilderService) ListByBusiness(businessID uint, page, pageSize int) ([]models.Package, int64, error) {
	return s.packageRepo.List(repository.PackageListFilter{
		BusinessID:  businessID,
		Page:        page,
		PageSize:    pageSize,
		WithDetails: true,
	})
}

// ListActive 当前生效套餐的公开列表
func (s *PackageBuilderService) ListActive(page, pageSize int) ([]models.Package, int64, error) {
	active := true
	return s.packageRepo.List(repository.PackageListFilter{
		IsActive:    &active,
		Page:        page,
		PageSize:    pageSize,
		WithDetails: true,
	})
}

// getEditableDraft 获取可编辑的草稿套餐并校验归属
func (s *PackageBuilderService) getEditableDraft(packageID, businessID uint) (*models.Package, error) {
	if packageID == 0 {
		return nil, ErrPackageNotFound
	}
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil || (businessID != 0 && pkg.BusinessID != businessID) {
		return nil, ErrPackageNotFound
	}
	if pkg.Status != constants.PackageStatusDraft {
		return nil, ErrPackageNotDraft
	}
	return pkg, nil
}

// refreshCompletion 重新计算并持久化 is_complete
func (s *PackageBuilderService) refreshCompletion(packageID uint) (*models.Package, error) {
	detail, err := s.packageRepo.GetByIDWithDetails(packageID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrPackageNotFound
	}
	complete := detail.BlanketDiscount != nil &&
		detail.EliteGift != nil &&
		len(detail.VipSelections) > 0 &&
		detail.StartDate != nil && detail.EndDate != nil
	if detail.IsComplete != complete {
		detail.IsComplete = complete
		if err := s.packageRepo.Update(detail); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func validDurationMonths(months int) bool {
	for _, m := range constants.PackageDurationMonths {
		if months == m {
			return true
		}
	}
	return false
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
