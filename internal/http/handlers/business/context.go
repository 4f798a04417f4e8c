package business

import (
	"strconv"

	"github.com/rajabpour4097/faydo/internal/http/handlers/shared"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/models"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, "user_id")
}

// resolveProfile 将登录用户解析为商家档案，后续操作一律以档案 ID 为准。
func (h *Handler) resolveProfile(c *gin.Context) (*models.BusinessProfile, bool) {
	userID, ok := getUserID(c)
	if !ok {
		return nil, false
	}

	profile, err := h.BusinessService.GetByUserID(userID)
	if err != nil {
		respondServiceError(c, err, profileErrorRules, "failed to load business profile")
		return nil, false
	}
	return profile, true
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
