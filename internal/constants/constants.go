package constants

// 套餐状态常量
const (
	PackageStatusDraft    = "draft"
	PackageStatusPending  = "pending"
	PackageStatusApproved = "approved"
	PackageStatusRejected = "rejected"
	PackageStatusCanceled = "canceled"
	PackageStatusExpired  = "expired"
)

// 套餐时长常量（单位：月，按 30 天计）
const (
	PackageDurationDays = 30
)

// 允许的套餐时长（月）
var PackageDurationMonths = []int{3, 6, 9, 12}

// 套餐交接窗口：已激活套餐剩余天数不超过该值时允许创建新草稿
const (
	PackageHandoffWindowDays = 10
)

// 交易状态常量
const (
	TransactionStatusPending  = "pending"
	TransactionStatusApproved = "approved"
	TransactionStatusRejected = "rejected"
)

// 积分规则：每满该金额（托曼）记 1 积分
const (
	PointsPerAmountUnit = 10000
)

// VIP 等级常量
const (
	VipStatusNone = "none"
	VipStatusVip  = "vip"
	VipStatusPlus = "vip_plus"
)

// VIP 等级积分阈值
const (
	VipThreshold     = 3000
	VipPlusThreshold = 7000
)

// VIP 体验类型常量
const (
	VipTypeVip  = "VIP"
	VipTypePlus = "VIP+"
)

// 用户角色常量
const (
	RoleCustomer         = "customer"
	RoleBusiness         = "business"
	RoleAdmin            = "admin"
	RoleITManager        = "it_manager"
	RoleProjectManager   = "project_manager"
	RoleSupporter        = "supporter"
	RoleFinancialManager = "financial_manager"
)

// 平台员工角色，可进入管理端（具体权限由 RBAC 策略决定）
var StaffRoles = []string{RoleAdmin, RoleITManager, RoleProjectManager, RoleSupporter, RoleFinancialManager}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 性别常量
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志失败原因常量
const (
	LoginLogFailReasonBadRequest          = "bad_request"
	LoginLogFailReasonCaptchaRequired     = "captcha_required"
	LoginLogFailReasonCaptchaInvalid      = "captcha_invalid"
	LoginLogFailReasonCaptchaVerifyFailed = "captcha_verify_failed"
	LoginLogFailReasonInvalidPhone        = "invalid_phone"
	LoginLogFailReasonInvalidCredentials  = "invalid_credentials"
	LoginLogFailReasonOTPInvalid          = "otp_invalid"
	LoginLogFailReasonOTPExpired          = "otp_expired"
	LoginLogFailReasonUserDisabled        = "user_disabled"
	LoginLogFailReasonInternalError       = "internal_error"
)

// 登录日志来源常量
const (
	LoginLogSourcePassword = "password"
	LoginLogSourceOTP      = "otp"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin      = "login"
	CaptchaSceneOTPRequest = "otp_request"
)

// 短信验证码用途常量
const (
	OTPPurposeLogin    = "login"
	OTPPurposeRegister = "register"
)

// 队列常量
const (
	QueueDefault       = "default"
	TaskOTPSMSDeliver  = "otp:sms_deliver"
	TaskPackageExpire  = "package:expire_notice"
	TaskLoyaltyRecheck = "loyalty:vip_recheck"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "fd"
)

// 商家唯一码长度（二维码扫码入口）
const (
	BusinessCodeLength = 8
)
