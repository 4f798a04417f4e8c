package admin

import (
	"strconv"

	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, "user_id")
}

func respondError(c *gin.Context, code int, msg string, err error) {
	shared.RespondError(c, code, msg, err)
}

func badRequest(c *gin.Context, err error) {
	respondError(c, response.CodeBadRequest, "bad request", err)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, err)
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	totalPage := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPage++
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: int64(totalPage),
	}
}

// recordAudit 记录员工变更操作，失败只记日志不阻断请求。
func (h *Handler) recordAudit(c *gin.Context, action, object string, detail models.JSON) {
	operatorID, _ := shared.GetContextUintQuiet(c, "user_id")

	input := service.AuthzAuditRecordInput{
		OperatorUserID: operatorID,
		OperatorRole:   c.GetString("user_role"),
		Action:         action,
		Object:         object,
		Method:         c.Request.Method,
		RequestID:      c.GetString("request_id"),
		Detail:         detail,
	}
	if operatorID != 0 {
		if operator, err := h.UserRepo.GetByID(operatorID); err == nil && operator != nil {
			input.OperatorUsername = operator.Username
		}
	}

	if err := h.AuthzAuditService.Record(input); err != nil {
		logger.SW("request_id", c.GetString("request_id")).Warnw("authz_audit_record_failed",
			"action", action,
			"object", object,
			"error", err)
	}
}
