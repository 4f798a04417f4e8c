package public

import (
	"strconv"
	"strings"

	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/repository"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// GetBusinessStorefront 顾客按商家编码查看门店页（套餐 + 自己的忠诚度）
func (h *Handler) GetBusinessStorefront(c *gin.Context) {
	customerID, ok := getUserID(c)
	if !ok {
		return
	}

	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		badRequest(c, nil)
		return
	}

	storefront, err := h.BusinessService.GetStorefrontByCode(code, customerID)
	if err != nil {
		respondAuthError(c, err, loyaltyErrorRules, "failed to load business")
		return
	}
	response.Success(c, storefront)
}

// GetMyLoyalties 顾客名下所有忠诚度账户
func (h *Handler) GetMyLoyalties(c *gin.Context) {
	customerID, ok := getUserID(c)
	if !ok {
		return
	}

	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.LoyaltyListFilter{
		CustomerID: customerID,
		VipStatus:  c.Query("vip_status"),
		Page:       page,
		PageSize:   pageSize,
	}

	loyalties, total, err := h.LoyaltyService.ListByBusiness(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load loyalty accounts", err)
		return
	}
	response.SuccessWithPage(c, loyalties, buildPagination(page, pageSize, total))
}

// GetEliteGiftStatus 查询顾客在某商家的精英礼遇进度
func (h *Handler) GetEliteGiftStatus(c *gin.Context) {
	customerID, ok := getUserID(c)
	if !ok {
		return
	}

	businessID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || businessID == 0 {
		badRequest(c, err)
		return
	}

	eligibility, err := h.LoyaltyService.CheckEliteGift(customerID, uint(businessID))
	if err != nil {
		respondAuthError(c, err, loyaltyErrorRules, "failed to check elite gift")
		return
	}
	response.Success(c, eligibility)
}

// UseEliteGift 兑换精英礼遇，兑换前要求顾客资料完整
func (h *Handler) UseEliteGift(c *gin.Context) {
	customerID, ok := getUserID(c)
	if !ok {
		return
	}

	businessID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || businessID == 0 {
		badRequest(c, err)
		return
	}

	user, err := h.UserRepo.GetByID(customerID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load user", err)
		return
	}
	if user == nil {
		respondAuthError(c, service.ErrUserNotFound, authCommonErrorRules, "user not found")
		return
	}

	profile, err := h.CustomerRepo.GetByUserID(customerID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load profile", err)
		return
	}
	if profile == nil {
		respondAuthError(c, service.ErrProfileMissing, loyaltyErrorRules, "profile not created")
		return
	}
	if !profile.IsComplete(user) {
		respondAuthError(c, service.ErrProfileIncomplete, loyaltyErrorRules, "customer profile incomplete")
		return
	}

	loyalty, err := h.LoyaltyService.UseEliteGift(customerID, uint(businessID))
	if err != nil {
		respondAuthError(c, err, loyaltyErrorRules, "failed to use elite gift")
		return
	}
	response.SuccessWithMsg(c, "elite gift used", loyalty)
}
