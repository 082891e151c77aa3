package service

import (
	"strings"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"
)

// ReferralService 引荐记录服务
type ReferralService struct {
	affiliateRepo repository.AffiliateRepository
	referralRepo  repository.ReferralRepository

	now func() time.Time
}

// NewReferralService 创建引荐记录服务
func NewReferralService(affiliateRepo repository.AffiliateRepository, referralRepo repository.ReferralRepository) *ReferralService {
	return &ReferralService{
		affiliateRepo: affiliateRepo,
		referralRepo:  referralRepo,
		now:           time.Now,
	}
}

// ResolveLink 按推广链接码解析归属推广用户
func (s *ReferralService) ResolveLink(uniqueLink string) (*models.Affiliate, error) {
	affiliate, err := s.affiliateRepo.GetByUniqueLink(strings.TrimSpace(uniqueLink))
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}
	return affiliate, nil
}

// RecordReferralInput 引荐记录输入
type RecordReferralInput struct {
	Name  string
	Email string
	Phone string
}

// Record 追加引荐记录
// 只追加存档，不做去重，不触发任何后续流转
func (s *ReferralService) Record(uniqueLink string, input RecordReferralInput) (*models.Referral, error) {
	affiliate, err := s.ResolveLink(uniqueLink)
	if err != nil {
		return nil, err
	}
	if affiliate.Status == constants.AffiliateStatusDisabled {
		return nil, ErrAffiliateDisabled
	}

	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	referral := &models.Referral{
		AffiliateID: affiliate.ID,
		UniqueLink:  affiliate.UniqueLink,
		Name:        strings.TrimSpace(input.Name),
		Email:       normalized,
		Phone:       strings.TrimSpace(input.Phone),
		CreatedAt:   s.now(),
	}
	if err := s.referralRepo.Create(referral); err != nil {
		return nil, err
	}
	return referral, nil
}

// List 引荐记录列表
func (s *ReferralService) List(filter repository.ReferralListFilter) ([]models.Referral, int64, error) {
	return s.referralRepo.List(filter)
}

// ListForUser 推广用户查看自己名下的引荐记录
func (s *ReferralService) ListForUser(userID uint, page, pageSize int) ([]models.Referral, int64, error) {
	affiliate, err := s.affiliateRepo.GetByUserID(userID)
	if err != nil {
		return nil, 0, err
	}
	if affiliate == nil {
		return nil, 0, ErrNotFound
	}
	return s.referralRepo.List(repository.ReferralListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: affiliate.ID,
	})
}
