package business

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTransactionRequest 录单请求，顾客以手机号定位
type CreateTransactionRequest struct {
	CustomerPhone                 string        `json:"customer_phone" binding:"required"`
	OriginalAmount                models.Money  `json:"original_amount" binding:"required"`
	HasSpecialDiscount            bool          `json:"has_special_discount"`
	SpecialDiscountOriginalAmount *models.Money `json:"special_discount_original_amount"`
}

// CreateTransaction 商家录入一笔交易，折扣与积分按当前生效套餐冻结
func (h *Handler) CreateTransaction(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	phone, err := service.NormalizePhone(req.CustomerPhone)
	if err != nil {
		respondServiceError(c, err, transactionErrorRules, "invalid customer phone")
		return
	}
	customer, err := h.UserRepo.GetByPhone(phone)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load customer", err)
		return
	}
	if customer == nil {
		respondServiceError(c, service.ErrUserNotFound, transactionErrorRules, "customer not found")
		return
	}
	if customer.Role != constants.RoleCustomer {
		respondServiceError(c, service.ErrCustomerOnly, transactionErrorRules, "target user is not a customer")
		return
	}

	input := service.CreateTransactionInput{
		CustomerID:         customer.ID,
		BusinessID:         profile.ID,
		OriginalAmount:     req.OriginalAmount,
		HasSpecialDiscount: req.HasSpecialDiscount,
	}
	if req.SpecialDiscountOriginalAmount != nil {
		input.SpecialDiscountOriginalAmount = *req.SpecialDiscountOriginalAmount
	}

	txn, err := h.TransactionService.Create(input)
	if err != nil {
		respondServiceError(c, err, transactionErrorRules, "failed to create transaction")
		return
	}
	response.Success(c, txn)
}

// ApproveTransaction 核销交易，首次核销时记入积分
func (h *Handler) ApproveTransaction(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.TransactionService.Approve(transactionID, profile.ID)
	if err != nil {
		respondServiceError(c, err, transactionErrorRules, "failed to approve transaction")
		return
	}
	response.SuccessWithMsg(c, "transaction approved", txn)
}

// RejectTransaction 驳回交易
func (h *Handler) RejectTransaction(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.TransactionService.Reject(transactionID, profile.ID)
	if err != nil {
		respondServiceError(c, err, transactionErrorRules, "failed to reject transaction")
		return
	}
	response.SuccessWithMsg(c, "transaction rejected", txn)
}

// GetTransaction 查询单笔交易
func (h *Handler) GetTransaction(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	txn, err := h.TransactionService.GetByID(transactionID, profile.ID)
	if err != nil {
		respondServiceError(c, err, transactionErrorRules, "failed to load transaction")
		return
	}
	response.Success(c, txn)
}

// ListTransactions 当前商家的交易列表
func (h *Handler) ListTransactions(c *gin.Context) {
	profile, ok := h.resolveProfile(c)
	if !ok {
		return
	}

	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.TransactionListFilter{
		BusinessID: profile.ID,
		CustomerID: uint(queryInt(c, "customer_id", 0)),
		Status:     c.Query("status"),
		Page:       page,
		PageSize:   pageSize,
	}
	if from := c.Query("created_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := c.Query("created_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.AddDate(0, 0, 1)
			filter.CreatedTo = &end
		}
	}

	transactions, total, err := h.TransactionService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list transactions", err)
		return
	}
	response.SuccessWithPage(c, transactions, buildPagination(page, pageSize, total))
}
