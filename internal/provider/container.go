package provider

import (
	"github.com/TanvirSEF/tracking-be/internal/cache"
	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/logger"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/queue"
	"github.com/TanvirSEF/tracking-be/internal/repository"
	"github.com/TanvirSEF/tracking-be/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo            repository.UserRepository
	EmailVerifyCodeRepo repository.EmailVerifyCodeRepository
	RequestRepo         repository.AffiliateRequestRepository
	AffiliateRepo       repository.AffiliateRepository
	ReferralRepo        repository.ReferralRepository
	TicketRepo          repository.TicketRepository

	// Services
	AuthService         *service.AuthService
	VerificationService *service.VerificationService
	RequestService      *service.RequestService
	AffiliateService    *service.AffiliateService
	ReferralService     *service.ReferralService
	TicketService       *service.TicketService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.EmailVerifyCodeRepo = repository.NewEmailVerifyCodeRepository(db)
	c.RequestRepo = repository.NewAffiliateRequestRepository(db)
	c.AffiliateRepo = repository.NewAffiliateRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.TicketRepo = repository.NewTicketRepository(db)
}

func (c *Container) initServices() {
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.VerificationService = service.NewVerificationService(c.Config, c.EmailVerifyCodeRepo, c.EmailService, c.QueueClient)
	c.AffiliateService = service.NewAffiliateService(c.Config, c.AffiliateRepo, c.UserRepo, c.ReferralRepo)
	c.ReferralService = service.NewReferralService(c.AffiliateRepo, c.ReferralRepo)
	c.TicketService = service.NewTicketService(c.TicketRepo, c.AffiliateRepo, c.UserRepo)
	c.RequestService = service.NewRequestService(
		c.Config,
		c.RequestRepo,
		c.UserRepo,
		c.AffiliateRepo,
		c.AuthService,
		c.VerificationService,
		c.EmailService,
		c.QueueClient,
	)
}
