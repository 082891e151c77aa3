package main

import (
	"time"

	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/logger"
	"github.com/TanvirSEF/tracking-be/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("affiliate123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}
	now := time.Now()

	// 演示推广用户（已批准）
	demoEmail := "affiliate@example.com"
	var existingUser models.User
	if err := models.DB.Where("email = ?", demoEmail).First(&existingUser).Error; err != nil {
		user := models.User{
			Email:        demoEmail,
			PasswordHash: string(hash),
			Name:         "Demo Affiliate",
			Role:         constants.UserRoleAffiliate,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Fatalf("Failed to create demo user: %v", err)
		}

		reviewedAt := now
		request := models.AffiliateRequest{
			Name:          "Demo Affiliate",
			Email:         demoEmail,
			PasswordHash:  string(hash),
			Location:      "Singapore",
			Language:      "en",
			EmailVerified: true,
			Status:        constants.RequestStatusApproved,
			ReviewedAt:    &reviewedAt,
		}
		if err := models.DB.Create(&request).Error; err != nil {
			stdLog.Fatalf("Failed to create demo request: %v", err)
		}

		affiliate := models.Affiliate{
			UserID:     user.ID,
			RequestID:  request.ID,
			UniqueLink: "demo1234567890abcdef",
			Name:       request.Name,
			Email:      request.Email,
			Location:   request.Location,
			Language:   request.Language,
			Status:     constants.AffiliateStatusActive,
		}
		if err := models.DB.Create(&affiliate).Error; err != nil {
			stdLog.Fatalf("Failed to create demo affiliate: %v", err)
		}

		referrals := []models.Referral{
			{AffiliateID: affiliate.ID, UniqueLink: affiliate.UniqueLink, Name: "Alice Tan", Email: "alice@example.com", Phone: "+65 8000 0001"},
			{AffiliateID: affiliate.ID, UniqueLink: affiliate.UniqueLink, Name: "Bob Lee", Email: "bob@example.com", Phone: "+65 8000 0002"},
		}
		for i := range referrals {
			if err := models.DB.Create(&referrals[i]).Error; err != nil {
				stdLog.Printf("Failed to create demo referral: %v", err)
			}
		}
		stdLog.Printf("Created demo affiliate: %s (link %s)", demoEmail, affiliate.UniqueLink)
	} else {
		stdLog.Printf("Demo affiliate already exists: %s", demoEmail)
	}

	// 待审批申请
	pendingEmail := "pending@example.com"
	var existingRequest models.AffiliateRequest
	if err := models.DB.Where("email = ? AND status = ?", pendingEmail, constants.RequestStatusPending).First(&existingRequest).Error; err != nil {
		pending := models.AffiliateRequest{
			Name:          "Pending Applicant",
			Email:         pendingEmail,
			PasswordHash:  string(hash),
			Location:      "Malaysia",
			Language:      "en",
			EmailVerified: true,
			Status:        constants.RequestStatusPending,
		}
		if err := models.DB.Create(&pending).Error; err != nil {
			stdLog.Printf("Failed to create pending request: %v", err)
		} else {
			stdLog.Printf("Created pending request: %s", pendingEmail)
		}
	} else {
		stdLog.Printf("Pending request already exists: %s", pendingEmail)
	}

	stdLog.Printf("Seed completed")
}
