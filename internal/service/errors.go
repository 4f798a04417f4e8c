package service

import "errors"

// 用户与认证相关错误
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrUserDisabled       = errors.New("user disabled")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
)

// 短信验证码相关错误
var (
	ErrOTPSendTooFrequent = errors.New("otp requested too frequently")
	ErrOTPInvalid         = errors.New("otp code invalid")
	ErrOTPExpired         = errors.New("otp code expired")
	ErrOTPTooManyAttempts = errors.New("otp verify attempts exceeded")
	ErrSMSDeliveryFailed  = errors.New("sms delivery failed")
)

// 档案相关错误
var (
	ErrBusinessNotFound  = errors.New("business profile not found")
	ErrCustomerOnly      = errors.New("operation allowed for customers only")
	ErrProfileMissing    = errors.New("profile not created")
	ErrProfileIncomplete = errors.New("customer profile incomplete")
	ErrCityNotFound      = errors.New("city not found")
	ErrCategoryNotFound  = errors.New("service category not found")
)

// 分类管理相关错误
var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrVipTypeInvalid       = errors.New("vip type must be VIP or VIP+")
)

// 套餐构建相关错误
var (
	ErrPackageNotFound           = errors.New("package not found")
	ErrPackageNotDraft           = errors.New("package is not editable in current status")
	ErrPackageNotPending         = errors.New("package is not pending review")
	ErrPackageIncomplete         = errors.New("package is missing required components")
	ErrPackageDraftExists        = errors.New("an unfinished draft package already exists")
	ErrPackagePendingExists      = errors.New("a submitted package is already awaiting review")
	ErrPackageActiveTooLong      = errors.New("active package has more than 10 days remaining")
	ErrPackageDurationInvalid    = errors.New("package duration must be 3, 6, 9 or 12 months")
	ErrAgreementRequired         = errors.New("terms agreement is required to finalize")
	ErrDiscountPercentageInvalid = errors.New("discount percentage out of range")
	ErrSpecificNotExceedBlanket  = errors.New("specific discount must exceed blanket discount")
	ErrEliteGiftTargetRequired   = errors.New("elite gift requires an amount or count target")
	ErrEliteGiftTargetConflict   = errors.New("elite gift target must be amount or count, not both")
	ErrVipSelectionEmpty         = errors.New("at least one vip experience must be selected")
	ErrVipCategoryNotFound       = errors.New("vip experience category not found")
	ErrVipSelectionRequired      = errors.New("at least one vip-tier experience is required to finalize")
)

// 忠诚度相关错误
var (
	ErrLoyaltyNotFound           = errors.New("loyalty account not found")
	ErrNegativePoints            = errors.New("points amount must not be negative")
	ErrEliteGiftNotConfigured    = errors.New("active package has no elite gift")
	ErrEliteGiftTargetNotReached = errors.New("target not reached")
	ErrEliteGiftAlreadyUsed      = errors.New("already used")
)

// 交易相关错误
var (
	ErrTransactionNotFound        = errors.New("transaction not found")
	ErrTransactionAmountInvalid   = errors.New("transaction amount must be positive")
	ErrTransactionNotOwner        = errors.New("transaction does not belong to this business")
	ErrTransactionAlreadyApproved = errors.New("approved transaction cannot be rejected")
	ErrNoActivePackage            = errors.New("business has no active package")
)
