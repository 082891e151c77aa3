package router

import (
	"fmt"
	"strings"

	"github.com/TanvirSEF/tracking-be/internal/cache"
	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/constants"
	adminhandlers "github.com/TanvirSEF/tracking-be/internal/http/handlers/admin"
	publichandlers "github.com/TanvirSEF/tracking-be/internal/http/handlers/public"
	"github.com/TanvirSEF/tracking-be/internal/logger"
	"github.com/TanvirSEF/tracking-be/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	sendCodeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:send_code", redisPrefix),
		WindowSeconds: cfg.Email.VerifyCode.SendIntervalSeconds,
		MaxRequests:   1,
		Message:       "verify code requested too frequently",
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
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
			public.GET("/links/:unique_link", publicHandler.ResolveReferralLink)
			public.POST("/links/:unique_link/referrals", publicHandler.RecordReferral)
		}

		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/send-verify-code", RateLimitMiddleware(redisClient, sendCodeRule, KeyByIPAndJSONField("email")), publicHandler.SendVerifyCode)
			auth.POST("/verify-code", publicHandler.VerifyCode)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 入驻申请（经由注册链接码）
		apiV1.POST("/register/:link_code", publicHandler.SubmitRequest)

		// 推广用户接口（需鉴权）
		me := apiV1.Group("/me")
		me.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		me.Use(RequireRole(constants.UserRoleAffiliate, constants.UserRoleAdmin))
		{
			me.GET("/profile", publicHandler.GetAffiliateProfile)
			me.GET("/referrals", publicHandler.GetMyReferrals)

			me.POST("/tickets", publicHandler.CreateTicket)
			me.GET("/tickets", publicHandler.GetMyTickets)
			me.GET("/tickets/:id", publicHandler.GetMyTicket)
			me.POST("/tickets/:id/replies", publicHandler.ReplyMyTicket)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		admin.Use(RequireRole(constants.UserRoleAdmin))
		{
			admin.GET("/requests", adminHandler.GetRequests)
			admin.GET("/requests/:id", adminHandler.GetRequest)
			admin.POST("/requests/:id/review", adminHandler.ReviewRequest)

			admin.GET("/affiliates", adminHandler.GetAffiliates)
			admin.PUT("/affiliates/:id/status", adminHandler.UpdateAffiliateStatus)

			admin.GET("/referrals", adminHandler.GetReferrals)

			admin.GET("/tickets", adminHandler.GetTickets)
			admin.GET("/tickets/stats", adminHandler.GetTicketStats)
			admin.GET("/tickets/:id", adminHandler.GetTicket)
			admin.POST("/tickets/:id/replies", adminHandler.ReplyTicket)
			admin.PATCH("/tickets/:id", adminHandler.UpdateTicket)

			admin.GET("/registration-link", adminHandler.GetRegistrationLink)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
