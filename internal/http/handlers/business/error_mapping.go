package business

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

var profileErrorRules = []mappedHandlerError{
	{target: service.ErrBusinessNotFound, code: response.CodeNotFound, msg: "business profile not found"},
	{target: service.ErrCategoryNotFound, code: response.CodeBadRequest, msg: "service category not found"},
	{target: service.ErrCityNotFound, code: response.CodeBadRequest, msg: "city not found"},
}

var packageErrorRules = []mappedHandlerError{
	{target: service.ErrBusinessNotFound, code: response.CodeNotFound, msg: "business profile not found"},
	{target: service.ErrPackageNotFound, code: response.CodeNotFound, msg: "package not found"},
	{target: service.ErrPackageNotDraft, code: response.CodeBadRequest, msg: "package is not editable"},
	{target: service.ErrPackageIncomplete, code: response.CodeBadRequest, msg: "package is missing required components"},
	{target: service.ErrPackageDraftExists, code: response.CodeBadRequest, msg: "an unfinished draft already exists"},
	{target: service.ErrPackagePendingExists, code: response.CodeBadRequest, msg: "a package is already awaiting review"},
	{target: service.ErrPackageActiveTooLong, code: response.CodeBadRequest, msg: "active package has too many days remaining"},
	{target: service.ErrPackageDurationInvalid, code: response.CodeBadRequest, msg: "duration must be 3, 6, 9 or 12 months"},
	{target: service.ErrAgreementRequired, code: response.CodeBadRequest, msg: "terms agreement is required"},
	{target: service.ErrDiscountPercentageInvalid, code: response.CodeBadRequest, msg: "discount percentage out of range"},
	{target: service.ErrSpecificNotExceedBlanket, code: response.CodeBadRequest, msg: "specific discount must exceed blanket discount"},
	{target: service.ErrEliteGiftTargetRequired, code: response.CodeBadRequest, msg: "elite gift requires an amount or count target"},
	{target: service.ErrEliteGiftTargetConflict, code: response.CodeBadRequest, msg: "elite gift target must be amount or count, not both"},
	{target: service.ErrVipSelectionEmpty, code: response.CodeBadRequest, msg: "select at least one vip experience"},
	{target: service.ErrVipCategoryNotFound, code: response.CodeBadRequest, msg: "vip experience category not found"},
	{target: service.ErrVipSelectionRequired, code: response.CodeBadRequest, msg: "at least one vip-tier experience is required"},
}

var transactionErrorRules = []mappedHandlerError{
	{target: service.ErrBusinessNotFound, code: response.CodeNotFound, msg: "business profile not found"},
	{target: service.ErrTransactionNotFound, code: response.CodeNotFound, msg: "transaction not found"},
	{target: service.ErrTransactionNotOwner, code: response.CodeForbidden, msg: "transaction does not belong to this business"},
	{target: service.ErrTransactionAlreadyApproved, code: response.CodeConflict, msg: "approved transaction cannot be rejected"},
	{target: service.ErrTransactionAmountInvalid, code: response.CodeBadRequest, msg: "amount must be positive"},
	{target: service.ErrNoActivePackage, code: response.CodeBadRequest, msg: "business has no active package"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, msg: "customer not found"},
	{target: service.ErrCustomerOnly, code: response.CodeBadRequest, msg: "target user is not a customer"},
}
