package business

import (
	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListLoyalties 当前商家名下顾客的忠诚度账户
func (h *Handler) ListLoyalties(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}

	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.LoyaltyListFilter{
		BusinessID: profile.ID,
		VipStatus:  c.Query("vip_status"),
		Page:       page,
		PageSize:   pageSize,
	}

	loyalties, total, err := h.LoyaltyService.ListByBusiness(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list loyalty accounts", err)
		return
	}
	response.SuccessWithPage(c, loyalties, buildPagination(page, pageSize, total))
}
