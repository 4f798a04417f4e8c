package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/rajabpour4097/faydo/internal/cache"
	"github.com/rajabpour4097/faydo/internal/config"
	"github.com/rajabpour4097/faydo/internal/constants"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/queue"
	"github.com/rajabpour4097/faydo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var phonePattern = regexp.MustCompile(`^09\d{9}$`)

// UserAuthService 用户认证服务
//
// 支持手机号 + 密码登录与短信验证码登录两条通路；
// 验证码状态存于 Redis，短信投递走异步队列。
type UserAuthService struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	businessRepo repository.BusinessRepository
	customerRepo repository.CustomerRepository
	queueClient  *queue.Client
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	businessRepo repository.BusinessRepository,
	customerRepo repository.CustomerRepository,
	queueClient *queue.Client,
) *UserAuthService {
	return &UserAuthService{
		cfg:          cfg,
		userRepo:     userRepo,
		businessRepo: businessRepo,
		customerRepo: customerRepo,
		queueClient:  queueClient,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID uint   `json:"user_id"`
	Phone  string `json:"phone"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	hours := s.cfg.JWT.ExpireHours
	if hours <= 0 {
		hours = 24
	}
	expiresAt := time.Now().Add(time.Duration(hours) * time.Hour)
	claims := UserJWTClaims{
		UserID: user.ID,
		Phone:  user.Phone,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// RegisterInput 注册输入
type RegisterInput struct {
	Phone        string
	Username     string
	Password     string
	Role         string // customer 或 business
	OTPCode      string
	BusinessName string // role=business 时必填
}

// Register 注册用户：校验短信验证码后创建用户与对应档案
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if input.Role != constants.RoleCustomer && input.Role != constants.RoleBusiness {
		return nil, "", time.Time{}, ErrPermissionDenied
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrPhoneTaken
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = phone
	}
	if byName, err := s.userRepo.GetByUsername(username); err != nil {
		return nil, "", time.Time{}, err
	} else if byName != nil {
		return nil, "", time.Time{}, ErrUsernameTaken
	}

	if err := s.verifyOTP(phone, constants.OTPPurposeRegister, input.OTPCode); err != nil {
		return nil, "", time.Time{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user := &models.User{
		Phone:           phone,
		Username:        username,
		PasswordHash:    string(hashed),
		Role:            input.Role,
		Status:          constants.UserStatusActive,
		PhoneVerifiedAt: &now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}
		switch input.Role {
		case constants.RoleBusiness:
			name := strings.TrimSpace(input.BusinessName)
			if name == "" {
				name = username
			}
			code, err := generateBusinessCode()
			if err != nil {
				return err
			}
			return s.businessRepo.WithTx(tx).Create(&models.BusinessProfile{
				UserID:     user.ID,
				Name:       name,
				UniqueCode: code,
			})
		default:
			return s.customerRepo.WithTx(tx).Create(&models.CustomerProfile{UserID: user.ID})
		}
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("user_registered", "user_id", user.ID, "role", user.Role)
	return user, token, expiresAt, nil
}

// Login 手机号 + 密码登录
func (s *UserAuthService) Login(phone, password string) (*models.User, string, time.Time, error) {
	normalized, err := normalizePhone(phone)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByPhone(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

// RequestOTP 请求发送短信验证码
func (s *UserAuthService) RequestOTP(ctx context.Context, phone, purpose string) error {
	normalized, err := normalizePhone(phone)
	if err != nil {
		return err
	}
	if purpose != constants.OTPPurposeLogin && purpose != constants.OTPPurposeRegister {
		return ErrOTPInvalid
	}
	if purpose == constants.OTPPurposeLogin {
		user, err := s.userRepo.GetByPhone(normalized)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
	}

	otpCfg := s.cfg.SMS.OTP
	existing, hit, err := cache.GetOTPState(ctx, normalized, purpose)
	if err != nil {
		return err
	}
	if hit && existing != nil {
		interval := time.Duration(resolveOTPSendInterval(otpCfg)) * time.Second
		if time.Since(time.Unix(existing.SentAt, 0)) < interval {
			return ErrOTPSendTooFrequent
		}
	}

	code, err := randomNumericCode(resolveOTPCodeLength(otpCfg))
	if err != nil {
		return err
	}
	state := &cache.OTPState{
		Phone:   normalized,
		Purpose: purpose,
		Code:    code,
		SentAt:  time.Now().Unix(),
	}
	ttl := time.Duration(resolveOTPExpireMinutes(otpCfg)) * time.Minute
	if err := cache.SetOTPState(ctx, state, ttl); err != nil {
		return err
	}

	if err := s.queueClient.EnqueueOTPSMSDeliver(queue.OTPSMSDeliverPayload{
		Phone:   normalized,
		Code:    code,
		Purpose: purpose,
	}); err != nil {
		logger.Errorw("otp_enqueue_failed", "phone", normalized, "error", err)
		return ErrSMSDeliveryFailed
	}
	logger.Infow("otp_requested", "phone", normalized, "purpose", purpose)
	return nil
}

// LoginWithOTP 短信验证码登录
func (s *UserAuthService) LoginWithOTP(phone, code string) (*models.User, string, time.Time, error) {
	normalized, err := normalizePhone(phone)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByPhone(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrUserNotFound
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if err := s.verifyOTP(normalized, constants.OTPPurposeLogin, code); err != nil {
		return nil, "", time.Time{}, err
	}
	if user.PhoneVerifiedAt == nil {
		now := time.Now()
		user.PhoneVerifiedAt = &now
	}
	return s.issueToken(user)
}

// GetUserByID 获取用户信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	return s.userRepo.GetByID(id)
}

func (s *UserAuthService) issueToken(user *models.User) (*models.User, string, time.Time, error) {
	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

func (s *UserAuthService) verifyOTP(phone, purpose, code string) error {
	ctx := context.Background()
	state, hit, err := cache.GetOTPState(ctx, phone, purpose)
	if err != nil {
		return err
	}
	if !hit || state == nil {
		return ErrOTPExpired
	}
	otpCfg := s.cfg.SMS.OTP
	maxAttempts := otpCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if state.AttemptCount >= maxAttempts {
		_ = cache.DelOTPState(ctx, phone, purpose)
		return ErrOTPTooManyAttempts
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(code) != state.Code {
		ttl := time.Duration(resolveOTPExpireMinutes(otpCfg)) * time.Minute
		_ = cache.IncrOTPAttempt(ctx, state, ttl)
		return ErrOTPInvalid
	}
	return cache.DelOTPState(ctx, phone, purpose)
}

func normalizePhone(phone string) (string, error) {
	trimmed := strings.TrimSpace(phone)
	if !phonePattern.MatchString(trimmed) {
		return "", ErrInvalidPhone
	}
	return trimmed, nil
}

// NormalizePhone 统一手机号格式
func NormalizePhone(phone string) (string, error) {
	return normalizePhone(phone)
}

func resolveOTPExpireMinutes(cfg config.OTPConfig) int {
	if cfg.ExpireMinutes <= 0 {
		return 5
	}
	return cfg.ExpireMinutes
}

func resolveOTPSendInterval(cfg config.OTPConfig) int {
	if cfg.SendIntervalSeconds <= 0 {
		return 90
	}
	return cfg.SendIntervalSeconds
}

func resolveOTPCodeLength(cfg config.OTPConfig) int {
	if cfg.Length < 4 || cfg.Length > 10 {
		return 5
	}
	return cfg.Length
}

func randomNumericCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String(), nil
}

// generateBusinessCode 生成商家扫码唯一码（数字串）
func generateBusinessCode() (string, error) {
	return randomNumericCode(constants.BusinessCodeLength)
}
