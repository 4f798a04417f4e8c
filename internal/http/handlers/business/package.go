package business

import (
	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePackageDraft 创建草稿套餐
func (h *Handler) CreatePackageDraft(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}

	pkg, err := h.PackageBuilderService.CreateDraft(profile.ID)
	if err != nil {
		respondServiceError(c, err, packageErrorRules, "failed to create draft")
		return
	}
	response.Success(c, pkg)
}

// ListPackages 当前商家的套餐列表
func (h *Handler) ListPackages(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}

	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	packages, total, err := h.PackageBuilderService.ListByBusiness(profile.ID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list packages", err)
		return
	}
	response.SuccessWithPage(c, packages, buildPagination(page, pageSize, total))
}

// GetPackage 套餐详情（含各组成要素）
func (h *Handler) GetPackage(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.PackageBuilderService.GetDetail(packageID, profile.ID)
	if err != nil {
		respondServiceError(c, err, packageErrorRules, "failed to load package")
		return
	}
	response.Success(c, pkg)
}

// SetDiscountsRequest 设置折扣请求
type SetDiscountsRequest struct {
	BlanketPercentage int                      `json:"blanket_percentage" binding:"required"`
	Specific          *SpecificDiscountRequest `json:"specific"`
}

// SpecificDiscountRequest 专项折扣请求
type SpecificDiscountRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Percentage  int    `json:"percentage" binding:"required"`
}

// SetPackageDiscounts 设置套餐折扣（普惠折扣必填，可附带专项折扣）
func (h *Handler) SetPackageDiscounts(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	input := service.SetDiscountsInput{
		PackageID:         packageID,
		BusinessID:        profile.ID,
		BlanketPercentage: req.BlanketPercentage,
	}
	if req.Specific != nil {
		input.Specific = &service.SpecificDiscountInput{
			Title:       req.Specific.Title,
			Description: req.Specific.Description,
			Percentage:  req.Specific.Percentage,
		}
	}

	pkg, err := h.PackageBuilderService.SetDiscounts(input)
	if err != nil {
		respondServiceError(c, err, packageErrorRules, "failed to set discounts")
		return
	}
	response.Success(c, pkg)
}

// RemoveSpecificDiscount 移除专项折扣
func (h *Handler) RemoveSpecificDiscount(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.PackageBuilderService.RemoveSpecificDiscount(packageID, profile.ID)
	if err != nil {
		respondServiceError(c, err, packageErrorRules, "failed to remove specific discount")
		return
	}
	response.Success(c, pkg)
}

// SetEliteGiftRequest 设置精英赠礼请求
type SetEliteGiftRequest struct {
	Gift         string        `json:"gift" binding:"required"`
	TargetAmount *models.Money `json:"target_amount"`
	TargetCount  *int          `json:"target_count"`
}

// SetPackageEliteGift 设置精英赠礼（金额目标与次数目标二选一）
func (h *Handler) SetPackageEliteGift(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetEliteGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pkg, err := h.PackageBuilderService.SetEliteGift(service.SetEliteGiftInput{
		PackageID:    packageID,
		BusinessID:   profile.ID,
		Gift:         req.Gift,
		TargetAmount: req.TargetAmount,
		TargetCount:  req.TargetCount,
	})
	if err != nil {
		respondServiceError(c, err, packageErrorRules, "failed to set elite gift")
		return
	}
	response.Success(c, pkg)
}

// SetVipExperiencesRequest 设置 VIP 体验选配请求
type SetVipExperiencesRequest struct {
	CategoryIDs []uint `json:"category_ids" binding:"required"`
}

// SetPackageVipExperiences 设置套餐的 VIP 体验选配
func (h *Handler) SetPackageVipExperiences(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req SetVipExperiencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pkg, err := h.PackageBuilderService.SetVipExperiences(service.SetVipExperiencesInput{
		PackageID:   packageID,
		BusinessID:  profile.ID,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		respondServiceError(c, err, packageErrorRules, "failed to set vip experiences")
		return
	}
	response.Success(c, pkg)
}

// FinalizePackageRequest 提交审核请求
type FinalizePackageRequest struct {
	DurationMonths int  `json:"duration_months" binding:"required"`
	Agree          bool `json:"agree"`
}

// FinalizePackage 提交套餐审核
func (h *Handler) FinalizePackage(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	packageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req FinalizePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pkg, err := h.PackageBuilderService.Finalize(service.FinalizeInput{
		PackageID:      packageID,
		BusinessID:     profile.ID,
		DurationMonths: req.DurationMonths,
		Agree:          req.Agree,
	})
	if err != nil {
		respondServiceError(c, err, packageErrorRules, "failed to finalize package")
		return
	}
	response.SuccessWithMsg(c, "package submitted for review", pkg)
}

// GetVipCategories 可供选配的 VIP 体验类目
func (h *Handler) GetVipCategories(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 50))
	filter := repository.VipExperienceCategoryListFilter{
		Page:       page,
		PageSize:   pageSize,
		VipType:    c.Query("vip_type"),
		CategoryID: uint(queryInt(c, "category_id", 0)),
	}

	categories, total, err := h.CatalogService.ListVipCategories(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list vip categories", err)
		return
	}
	response.SuccessWithPage(c, categories, buildPagination(page, pageSize, total))
}
