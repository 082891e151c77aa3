package service

import (
	"context"
	"strings"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/cache"
	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/logger"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"
)

// AffiliateService 推广用户业务服务
type AffiliateService struct {
	cfg          *config.Config
	repo         repository.AffiliateRepository
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
}

// NewAffiliateService 创建推广用户服务
func NewAffiliateService(
	cfg *config.Config,
	repo repository.AffiliateRepository,
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
) *AffiliateService {
	return &AffiliateService{
		cfg:          cfg,
		repo:         repo,
		userRepo:     userRepo,
		referralRepo: referralRepo,
	}
}

// AffiliateProfile 推广用户档案视图
type AffiliateProfile struct {
	Affiliate     models.Affiliate `json:"affiliate"`
	ReferralURL   string           `json:"referral_url"`
	ReferralCount int64            `json:"referral_count"`
}

// GetProfileByUserID 获取推广用户自己的档案
func (s *AffiliateService) GetProfileByUserID(userID uint) (*AffiliateProfile, error) {
	affiliate, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}
	count, err := s.referralRepo.CountByAffiliate(affiliate.ID)
	if err != nil {
		return nil, err
	}
	return &AffiliateProfile{
		Affiliate:     *affiliate,
		ReferralURL:   s.BuildReferralURL(affiliate.UniqueLink),
		ReferralCount: count,
	}, nil
}

// List 推广用户列表
func (s *AffiliateService) List(filter repository.AffiliateListFilter) ([]models.Affiliate, int64, error) {
	return s.repo.List(filter)
}

// UpdateStatus 管理端启用/停用推广用户
// 停用同时禁用登录账号并失效已签发 Token；唯一链接码保留，不回收复用
func (s *AffiliateService) UpdateStatus(affiliateID uint, rawStatus string) (*models.Affiliate, error) {
	status := strings.ToLower(strings.TrimSpace(rawStatus))
	if status != constants.AffiliateStatusActive && status != constants.AffiliateStatusDisabled {
		return nil, ErrInvalidAffiliateStatus
	}

	affiliate, err := s.repo.GetByID(affiliateID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(affiliate.ID, status, now); err != nil {
		return nil, err
	}

	userStatus := constants.UserStatusActive
	if status == constants.AffiliateStatusDisabled {
		userStatus = constants.UserStatusDisabled
	}
	if err := s.userRepo.UpdateStatus(affiliate.UserID, userStatus); err != nil {
		return nil, err
	}
	// 鉴权快照立即失效，禁用在下一次请求即生效
	if err := cache.DelUserAuthState(context.Background(), affiliate.UserID); err != nil {
		logger.Warnw("affiliate_auth_state_evict_failed", "user_id", affiliate.UserID, "error", err)
	}

	affiliate.Status = status
	affiliate.UpdatedAt = now
	return affiliate, nil
}

// RegistrationLinkInfo 注册链接信息
type RegistrationLinkInfo struct {
	LinkCode string `json:"link_code"`
	URL      string `json:"url"`
}

// GetRegistrationLink 获取入驻注册链接
func (s *AffiliateService) GetRegistrationLink() (*RegistrationLinkInfo, error) {
	code := strings.TrimSpace(s.cfg.Affiliate.RegistrationLink)
	if code == "" {
		return nil, ErrNotFound
	}
	return &RegistrationLinkInfo{
		LinkCode: code,
		URL:      s.baseURL() + "/register/" + code,
	}, nil
}

// BuildReferralURL 构建完整推广链接
func (s *AffiliateService) BuildReferralURL(uniqueLink string) string {
	return s.baseURL() + "/ref/" + uniqueLink
}

func (s *AffiliateService) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.cfg.Affiliate.BaseURL), "/")
}
