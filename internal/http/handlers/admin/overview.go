package admin

import (
	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/repository"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

var transactionAdminErrorRules = []mappedHandlerError{
	{target: service.ErrTransactionNotFound, code: response.CodeNotFound, msg: "transaction not found"},
}

// ListTransactions 全平台交易列表（运营/财务视图）
func (h *Handler) ListTransactions(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	from, to := parseDateRangeQuery(c)

	filter := repository.TransactionListFilter{
		Page:        page,
		PageSize:    pageSize,
		BusinessID:  uint(queryInt(c, "business_id", 0)),
		CustomerID:  uint(queryInt(c, "customer_id", 0)),
		PackageID:   uint(queryInt(c, "package_id", 0)),
		Status:      c.Query("status"),
		CreatedFrom: from,
		CreatedTo:   to,
	}

	items, total, err := h.TransactionService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load transactions", err)
		return
	}
	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}

// GetTransaction 交易详情（不限商家归属）
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.TransactionService.GetByID(id, 0)
	if err != nil {
		respondServiceError(c, err, transactionAdminErrorRules, "failed to load transaction")
		return
	}
	response.Success(c, txn)
}

// ListLoyalties 全平台忠诚度账户列表
func (h *Handler) ListLoyalties(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))

	filter := repository.LoyaltyListFilter{
		Page:       page,
		PageSize:   pageSize,
		BusinessID: uint(queryInt(c, "business_id", 0)),
		CustomerID: uint(queryInt(c, "customer_id", 0)),
		VipStatus:  c.Query("vip_status"),
	}

	items, total, err := h.LoyaltyService.ListByBusiness(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load loyalties", err)
		return
	}
	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}
