package public

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

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var authCommonErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidPhone, code: response.CodeBadRequest, msg: "phone number invalid"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "user not found"},
	{target: service.ErrUserDisabled, code: response.CodeUnauthorized, msg: "user disabled"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, msg: "invalid credentials"},
	{target: service.ErrOTPInvalid, code: response.CodeBadRequest, msg: "verification code invalid"},
	{target: service.ErrOTPExpired, code: response.CodeBadRequest, msg: "verification code expired"},
	{target: service.ErrOTPTooManyAttempts, code: response.CodeBadRequest, msg: "too many verification attempts"},
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrPhoneTaken, code: response.CodeBadRequest, msg: "phone already registered"},
	{target: service.ErrUsernameTaken, code: response.CodeBadRequest, msg: "username already taken"},
	{target: service.ErrPermissionDenied, code: response.CodeBadRequest, msg: "role not allowed"},
}

var loyaltyErrorRules = []mappedHandlerError{
	{target: service.ErrBusinessNotFound, code: response.CodeNotFound, msg: "business not found"},
	{target: service.ErrNoActivePackage, code: response.CodeBadRequest, msg: "business has no active package"},
	{target: service.ErrEliteGiftNotConfigured, code: response.CodeBadRequest, msg: "no elite gift configured"},
	{target: service.ErrEliteGiftTargetNotReached, code: response.CodeBadRequest, msg: "target not reached"},
	{target: service.ErrEliteGiftAlreadyUsed, code: response.CodeBadRequest, msg: "already used"},
	{target: service.ErrProfileIncomplete, code: response.CodeBadRequest, msg: "profile incomplete"},
	{target: service.ErrCustomerOnly, code: response.CodeForbidden, msg: "customers only"},
	{target: service.ErrProfileMissing, code: response.CodeNotFound, msg: "profile not found"},
	{target: service.ErrCityNotFound, code: response.CodeBadRequest, msg: "city not found"},
}

func respondAuthError(c *gin.Context, err error, rules []mappedHandlerError, fallbackMsg string) {
	merged := make([]mappedHandlerError, 0, len(authCommonErrorRules)+len(rules))
	merged = append(merged, authCommonErrorRules...)
	merged = append(merged, rules...)
	respondWithMappedError(c, err, merged, response.CodeInternal, fallbackMsg)
}
