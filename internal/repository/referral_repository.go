package repository

import (
	"github.com/TanvirSEF/tracking-be/internal/models"

	"gorm.io/gorm"
)

// ReferralRepository 引荐记录数据访问接口
type ReferralRepository interface {
	Create(referral *models.Referral) error
	CountByAffiliate(affiliateID uint) (int64, error)
	List(filter ReferralListFilter) ([]models.Referral, int64, error)
}

// GormReferralRepository GORM 实现
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建引荐记录仓库
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// Create 追加引荐记录
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

// CountByAffiliate 统计推广用户名下引荐数量
func (r *GormReferralRepository) CountByAffiliate(affiliateID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Referral{}).
		Where("affiliate_id = ?", affiliateID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List 引荐记录列表
func (r *GormReferralRepository) List(filter ReferralListFilter) ([]models.Referral, int64, error) {
	query := r.db.Model(&models.Referral{})

	if filter.AffiliateID > 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.Keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"email", "name"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Keyword+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var referrals []models.Referral
	if err := query.Order("id DESC").Find(&referrals).Error; err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}
