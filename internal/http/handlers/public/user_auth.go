package public

import (
	"errors"
	"strings"
	"time"

	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/service"

	"github.com/gin-gonic/gin"
)

// CaptchaPayloadRequest 验证码请求载荷
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

func (r CaptchaPayloadRequest) toServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:   strings.TrimSpace(r.CaptchaID),
		CaptchaCode: strings.TrimSpace(r.CaptchaCode),
	}
}

func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	if err := h.CaptchaService.Verify(scene, payload.toServicePayload()); err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			respondError(c, response.CodeBadRequest, "captcha required", nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			respondError(c, response.CodeBadRequest, "captcha invalid", nil)
		default:
			respondError(c, response.CodeInternal, "captcha verify failed", err)
		}
		return false
	}
	return true
}

// RequestOTPRequest 请求短信验证码
type RequestOTPRequest struct {
	Phone          string                `json:"phone" binding:"required"`
	Purpose        string                `json:"purpose" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// RequestOTP 发送短信验证码
func (h *Handler) RequestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if !h.verifyCaptcha(c, constants.CaptchaSceneOTPRequest, req.CaptchaPayload) {
		return
	}

	purpose := strings.ToLower(strings.TrimSpace(req.Purpose))
	if err := h.UserAuthService.RequestOTP(c.Request.Context(), req.Phone, purpose); err != nil {
		switch {
		case errors.Is(err, service.ErrOTPSendTooFrequent):
			respondError(c, response.CodeTooManyRequests, "verification code requested too frequently", nil)
		case errors.Is(err, service.ErrSMSDeliveryFailed):
			respondError(c, response.CodeInternal, "sms delivery failed", err)
		default:
			respondAuthError(c, err, nil, "send verification code failed")
		}
		return
	}

	response.Success(c, gin.H{"sent": true})
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Phone        string `json:"phone" binding:"required"`
	Username     string `json:"username"`
	Password     string `json:"password" binding:"required"`
	Role         string `json:"role" binding:"required"`
	OTPCode      string `json:"otp_code" binding:"required"`
	BusinessName string `json:"business_name"`
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Phone:        req.Phone,
		Username:     req.Username,
		Password:     req.Password,
		Role:         strings.ToLower(strings.TrimSpace(req.Role)),
		OTPCode:      req.OTPCode,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			respondError(c, response.CodeBadRequest, "password too weak", nil)
			return
		}
		respondAuthError(c, err, registerErrorRules, "register failed")
		return
	}

	response.Success(c, gin.H{
		"user":       userView(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// LoginRequest 密码登录请求
type LoginRequest struct {
	Phone          string                `json:"phone" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// Login 手机号密码登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if !h.verifyCaptcha(c, constants.CaptchaSceneLogin, req.CaptchaPayload) {
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Phone, req.Password)
	h.recordLogin(c, user, req.Phone, constants.LoginLogSourcePassword, err)
	if err != nil {
		respondAuthError(c, err, nil, "login failed")
		return
	}

	response.Success(c, gin.H{
		"user":       userView(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// LoginWithOTPRequest 验证码登录请求
type LoginWithOTPRequest struct {
	Phone   string `json:"phone" binding:"required"`
	OTPCode string `json:"otp_code" binding:"required"`
}

// LoginWithOTP 手机号验证码登录
func (h *Handler) LoginWithOTP(c *gin.Context) {
	var req LoginWithOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.LoginWithOTP(req.Phone, req.OTPCode)
	h.recordLogin(c, user, req.Phone, constants.LoginLogSourceOTP, err)
	if err != nil {
		respondAuthError(c, err, nil, "login failed")
		return
	}

	response.Success(c, gin.H{
		"user":       userView(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(userID)
	if err != nil || user == nil {
		respondError(c, response.CodeNotFound, "user not found", err)
		return
	}
	response.Success(c, userView(user))
}

// GetMyLoginLogs 查询自己的登录日志
func (h *Handler) GetMyLoginLogs(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := paginationQuery(c)
	items, total, err := h.UserLoginLogService.ListByUser(userID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "list login logs failed", err)
		return
	}
	response.SuccessWithPage(c, items, buildPagination(page, pageSize, total))
}

// UpdateCustomerProfileRequest 顾客档案更新请求
type UpdateCustomerProfileRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Gender    string  `json:"gender"`
	BirthDate *string `json:"birth_date"` // YYYY-MM-DD
	CityID    *uint   `json:"city_id"`
	Address   string  `json:"address"`
}

// UpdateCustomerProfile 更新顾客档案
func (h *Handler) UpdateCustomerProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateCustomerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	input := service.UpdateCustomerProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    strings.ToLower(strings.TrimSpace(req.Gender)),
		CityID:    req.CityID,
		Address:   req.Address,
	}
	if req.BirthDate != nil && strings.TrimSpace(*req.BirthDate) != "" {
		birthDate, err := time.Parse("2006-01-02", strings.TrimSpace(*req.BirthDate))
		if err != nil {
			respondError(c, response.CodeBadRequest, "birth date invalid", nil)
			return
		}
		input.BirthDate = &birthDate
	}

	profile, err := h.BusinessService.UpdateCustomerProfile(userID, input)
	if err != nil {
		respondWithMappedError(c, err, loyaltyErrorRules, response.CodeInternal, "update profile failed")
		return
	}
	response.Success(c, profile)
}

func (h *Handler) recordLogin(c *gin.Context, user *models.User, phone, source string, loginErr error) {
	if h.UserLoginLogService == nil {
		return
	}
	input := service.RecordUserLoginInput{
		Phone:       phone,
		ClientIP:    c.ClientIP(),
		UserAgent:   c.GetHeader("User-Agent"),
		LoginSource: source,
		RequestID:   c.GetString("request_id"),
	}
	if loginErr == nil {
		input.Status = constants.LoginLogStatusSuccess
		if user != nil {
			input.UserID = user.ID
		}
	} else {
		input.Status = constants.LoginLogStatusFailed
		input.FailReason = loginFailReason(loginErr)
	}
	if err := h.UserLoginLogService.Record(input); err != nil {
		_ = err
	}
}

func loginFailReason(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidPhone):
		return constants.LoginLogFailReasonInvalidPhone
	case errors.Is(err, service.ErrInvalidCredentials):
		return constants.LoginLogFailReasonInvalidCredentials
	case errors.Is(err, service.ErrUserDisabled):
		return constants.LoginLogFailReasonUserDisabled
	case errors.Is(err, service.ErrOTPInvalid):
		return constants.LoginLogFailReasonOTPInvalid
	case errors.Is(err, service.ErrOTPExpired):
		return constants.LoginLogFailReasonOTPExpired
	default:
		return constants.LoginLogFailReasonInternalError
	}
}

func paginationQuery(c *gin.Context) (int, int) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	return page, pageSize
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	totalPage := int64(0)
	if pageSize > 0 {
		totalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

func userView(user *models.User) gin.H {
	if user == nil {
		return gin.H{}
	}
	return gin.H{
		"id":                user.ID,
		"phone":             user.Phone,
		"username":          user.Username,
		"first_name":        user.FirstName,
		"last_name":         user.LastName,
		"role":              user.Role,
		"status":            user.Status,
		"phone_verified_at": user.PhoneVerifiedAt,
		"last_login_at":     user.LastLoginAt,
	}
}
