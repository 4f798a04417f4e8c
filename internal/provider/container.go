package provider

import (
	"github.com/rajabpour4097/faydo/internal/authz"
	"github.com/rajabpour4097/faydo/internal/cache"
	"github.com/rajabpour4097/faydo/internal/config"
	"github.com/rajabpour4097/faydo/internal/logger"
	"github.com/rajabpour4097/faydo/internal/models"
	"github.com/rajabpour4097/faydo/internal/queue"
	"github.com/rajabpour4097/faydo/internal/repository"
	"github.com/rajabpour4097/faydo/internal/service"
	"github.com/rajabpour4097/faydo/internal/sms"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	SMSSender   sms.Sender

	// Repositories
	UserRepo          repository.UserRepository
	BusinessRepo      repository.BusinessRepository
	CustomerRepo      repository.CustomerRepository
	CatalogRepo       repository.CatalogRepository
	PackageRepo       repository.PackageRepository
	LoyaltyRepo       repository.LoyaltyRepository
	TransactionRepo   repository.TransactionRepository
	UserLoginLogRepo  repository.UserLoginLogRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository

	// Services
	AuthzService            *authz.Service
	UserAuthService         *service.UserAuthService
	CaptchaService          *service.CaptchaService
	BusinessService         *service.BusinessService
	CatalogService          *service.CatalogService
	PackageBuilderService   *service.PackageBuilderService
	PackageLifecycleService *service.PackageLifecycleService
	PackageSchedulerService *service.PackageSchedulerService
	LoyaltyService          *service.LoyaltyService
	TransactionService      *service.TransactionService
	UserLoginLogService     *service.UserLoginLogService
	AuthzAuditService       *service.AuthzAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化短信发送器
	c.initSMSSender()

	// 2. 初始化 Repositories
	c.initRepositories()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initSMSSender() {
	if !c.Config.SMS.Enabled {
		c.SMSSender = sms.NoopSender{}
		return
	}
	c.SMSSender = sms.NewMelipayamakClient(c.Config.SMS)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.BusinessRepo = repository.NewBusinessRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.CatalogRepo = repository.NewCatalogRepository(db)
	c.PackageRepo = repository.NewPackageRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.BusinessRepo, c.CustomerRepo, c.QueueClient)
	c.CatalogService = service.NewCatalogService(c.CatalogRepo)
	c.LoyaltyService = service.NewLoyaltyService(c.LoyaltyRepo, c.PackageRepo)
	c.BusinessService = service.NewBusinessService(c.BusinessRepo, c.CustomerRepo, c.UserRepo, c.CatalogRepo, c.PackageRepo, c.LoyaltyService)
	c.PackageBuilderService = service.NewPackageBuilderService(c.PackageRepo, c.CatalogRepo)
	c.PackageLifecycleService = service.NewPackageLifecycleService(c.PackageRepo, c.QueueClient)
	c.PackageSchedulerService = service.NewPackageSchedulerService(c.PackageRepo)
	c.TransactionService = service.NewTransactionService(c.TransactionRepo, c.PackageRepo, c.BusinessRepo, c.LoyaltyService)
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
}
