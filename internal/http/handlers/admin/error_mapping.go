package admin

import (
	"errors"

	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondServiceError(c *gin.Context, err error, rules []mappedHandlerError, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, fallbackMsg, err)
}

var packageReviewErrorRules = []mappedHandlerError{
	{target: service.ErrPackageNotFound, code: response.CodeNotFound, msg: "package not found"},
	{target: service.ErrPackageNotPending, code: response.CodeBadRequest, msg: "package is not pending review"},
	{target: service.ErrPackageIncomplete, code: response.CodeBadRequest, msg: "package is missing required components"},
}

var catalogAdminErrorRules = []mappedHandlerError{
	{target: service.ErrCategoryNotFound, code: response.CodeNotFound, msg: "service category not found"},
	{target: service.ErrVipCategoryNotFound, code: response.CodeNotFound, msg: "vip experience category not found"},
	{target: service.ErrCategoryNameRequired, code: response.CodeBadRequest, msg: "name is required"},
	{target: service.ErrVipTypeInvalid, code: response.CodeBadRequest, msg: "vip type must be VIP or VIP+"},
}

var userAdminErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "user not found"},
}
