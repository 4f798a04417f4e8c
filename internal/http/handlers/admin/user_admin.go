package admin

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/cache"
	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/repository"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// ListUsers 平台用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
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

	users, total, err := h.UserRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list users", err)
		return
	}
	response.SuccessWithPage(c, users, buildPagination(page, pageSize, total))
}

// GetUser 用户详情
func (h *Handler) GetUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.UserRepo.GetByID(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load user", err)
		return
	}
	if user == nil {
		respondServiceError(c, service.ErrUserNotFound, userAdminErrorRules, "user not found")
		return
	}
	response.Success(c, user)
}

// BatchUpdateUserStatusRequest 批量调整用户状态请求
type BatchUpdateUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// BatchUpdateUserStatus 批量启用/停用用户，并同步失效认证缓存
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req BatchUpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if len(req.UserIDs) == 0 {
		badRequest(c, nil)
		return
	}
	if req.Status != constants.UserStatusActive && req.Status != constants.UserStatusDisabled {
		respondError(c, response.CodeBadRequest, "status must be active or disabled", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus(req.UserIDs, req.Status); err != nil {
		respondError(c, response.CodeInternal, "failed to update user status", err)
		return
	}
	for _, id := range req.UserIDs {
		if err := cache.DelUserAuthState(c.Request.Context(), id); err != nil {
			logger.SW("request_id", c.GetString("request_id")).Warnw("auth_state_invalidate_failed",
				"user_id", id,
				"error", err)
		}
	}

	h.recordAudit(c, "user-batch-status", c.Request.URL.Path, models.JSON{
		"user_ids": req.UserIDs,
		"status":   req.Status,
	})
	response.SuccessWithMsg(c, "user status updated", gin.H{"updated": len(req.UserIDs)})
}
