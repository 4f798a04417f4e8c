package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rajabpour4097/faydo/internal/authz"
	"github.com/rajabpour4097/faydo/internal/cache"
	"github.com/rajabpour4097/faydo/internal/config"
	"github.com/rajabpour4097/faydo/internal/constants"
	adminhandlers "github.com/rajabpour4097/faydo/internal/http/handlers/admin"
	businesshandlers "github.com/rajabpour4097/faydo/internal/http/handlers/business"
	publichandlers "github.com/rajabpour4097/faydo/internal/http/handlers/public"
	"github.com/rajabpour4097/faydo/internal/http/response"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按顾客端/商家端/管理端分组）
	publicHandler := publichandlers.New(c)
	businessHandler := businesshandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fd"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	otpRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:otp", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many verification code requests",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/provinces", publicHandler.GetProvinces)
			public.GET("/provinces/:id/cities", publicHandler.GetCities)
			public.GET("/service-categories", publicHandler.GetServiceCategories)
			public.GET("/businesses", publicHandler.GetBusinesses)
			public.GET("/packages", publicHandler.GetActivePackages)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/otp/request", RateLimitMiddleware(redisClient, otpRule, KeyByIPAndJSONField("phone")), publicHandler.RequestOTP)
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("phone")), publicHandler.Login)
			auth.POST("/otp/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("phone")), publicHandler.LoginWithOTP)
		}

		// 已登录用户通用接口
		me := apiV1.Group("")
		me.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			me.GET("/me", publicHandler.GetCurrentUser)
			me.GET("/me/login-logs", publicHandler.GetMyLoginLogs)
		}

		// 顾客端接口
		customer := apiV1.Group("/customer")
		customer.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), RequireRole(constants.RoleCustomer))
		{
			customer.PUT("/profile", publicHandler.UpdateCustomerProfile)
			customer.GET("/businesses/:code", publicHandler.GetBusinessStorefront)
			customer.GET("/loyalties", publicHandler.GetMyLoyalties)
			customer.GET("/loyalties/by-business/:id/elite-gift", publicHandler.GetEliteGiftStatus)
			customer.POST("/loyalties/by-business/:id/elite-gift/use", publicHandler.UseEliteGift)
		}

		// 商家端接口
		business := apiV1.Group("/business")
		business.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), RequireRole(constants.RoleBusiness))
		{
			business.GET("/profile", businessHandler.GetProfile)
			business.PUT("/profile", businessHandler.UpdateProfile)

			// 套餐构建
			business.POST("/packages", businessHandler.CreatePackageDraft)
			business.GET("/packages", businessHandler.ListPackages)
			business.GET("/packages/:id", businessHandler.GetPackage)
			business.PUT("/packages/:id/discounts", businessHandler.SetPackageDiscounts)
			business.DELETE("/packages/:id/discounts/specific", businessHandler.RemoveSpecificDiscount)
			business.PUT("/packages/:id/elite-gift", businessHandler.SetPackageEliteGift)
			business.PUT("/packages/:id/vip-experiences", businessHandler.SetPackageVipExperiences)
			business.POST("/packages/:id/finalize", businessHandler.FinalizePackage)
			business.GET("/vip-categories", businessHandler.GetVipCategories)

			// 交易
			business.POST("/transactions", businessHandler.CreateTransaction)
			business.GET("/transactions", businessHandler.ListTransactions)
			business.GET("/transactions/:id", businessHandler.GetTransaction)
			business.POST("/transactions/:id/approve", businessHandler.ApproveTransaction)
			business.POST("/transactions/:id/reject", businessHandler.RejectTransaction)

			// 顾客忠诚度
			business.GET("/loyalties", businessHandler.ListLoyalties)
		}

		// 管理端接口
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo), RequireStaff(), StaffRBACMiddleware(c.AuthzService))
		{
			// 套餐审核与调度
			admin.GET("/packages/pending", adminHandler.ListPendingPackages)
			admin.GET("/packages/:id", adminHandler.GetPackageDetail)
			admin.POST("/packages/:id/approve", adminHandler.ApprovePackage)
			admin.POST("/packages/:id/reject", adminHandler.RejectPackage)
			admin.POST("/packages/:id/activate", adminHandler.ActivatePackage)
			admin.POST("/packages/:id/deactivate", adminHandler.DeactivatePackage)
			admin.POST("/packages/reconcile", adminHandler.ReconcilePackages)

			// 分类管理
			admin.GET("/service-categories", adminHandler.ListServiceCategories)
			admin.POST("/service-categories", adminHandler.CreateServiceCategory)
			admin.PUT("/service-categories/:id", adminHandler.UpdateServiceCategory)
			admin.DELETE("/service-categories/:id", adminHandler.DeleteServiceCategory)
			admin.GET("/vip-categories", adminHandler.ListVipCategories)
			admin.POST("/vip-categories", adminHandler.CreateVipCategory)
			admin.PUT("/vip-categories/:id", adminHandler.UpdateVipCategory)
			admin.DELETE("/vip-categories/:id", adminHandler.DeleteVipCategory)

			// 用户管理
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/batch-status", adminHandler.BatchUpdateUserStatus)
			admin.GET("/user-login-logs", adminHandler.ListUserLoginLogs)

			// 运营视图
			admin.GET("/transactions", adminHandler.ListTransactions)
			admin.GET("/transactions/:id", adminHandler.GetTransaction)
			admin.GET("/loyalties", adminHandler.ListLoyalties)

			// 权限管理
			admin.GET("/authz/me", adminHandler.GetAuthzMe)
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/authz/staff/:id/roles", adminHandler.GetAuthzStaffRoles)
			admin.PUT("/authz/staff/:id/roles", adminHandler.SetAuthzStaffRoles)
			admin.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
