package admin

import (
	"time"

	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/gin-gonic/gin"
)

func parseDateRangeQuery(c *gin.Context) (*time.Time, *time.Time) {
	var from, to *time.Time
	if raw := c.Query("created_from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			end := t.AddDate(0, 0, 1)
			to = &end
		}
	}
	return from, to
}

// ListUserLoginLogs 用户登录日志列表
func (h *Handler) ListUserLoginLogs(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	from, to := parseDateRangeQuery(c)

	filter := repository.UserLoginLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      uint(queryInt(c, "user_id", 0)),
		Phone:       c.Query("phone"),
		Status:      c.Query("status"),
		FailReason:  c.Query("fail_reason"),
		ClientIP:    c.Query("client_ip"),
		CreatedFrom: from,
		CreatedTo:   to,
	}

	logs, total, err := h.UserLoginLogService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list login logs", err)
		return
	}
	response.SuccessWithPage(c, logs, buildPagination(page, pageSize, total))
}

// ListAuthzAuditLogs 员工操作审计日志列表
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	from, to := parseDateRangeQuery(c)

	filter := repository.AuthzAuditLogListFilter{
		Page:           page,
		PageSize:       pageSize,
		OperatorUserID: uint(queryInt(c, "operator_user_id", 0)),
		Action:         c.Query("action"),
		Object:         c.Query("object"),
		Method:         c.Query("method"),
		CreatedFrom:    from,
		CreatedTo:      to,
	}

	logs, total, err := h.AuthzAuditService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list audit logs", err)
		return
	}
	response.SuccessWithPage(c, logs, buildPagination(page, pageSize, total))
}
