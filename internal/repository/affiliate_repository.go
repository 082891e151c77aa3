package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/models"

	"gorm.io/gorm"
)

// AffiliateRepository 推广用户数据访问接口
type AffiliateRepository interface {
	WithTx(tx *gorm.DB) AffiliateRepository

	Create(affiliate *models.Affiliate) error
	GetByID(id uint) (*models.Affiliate, error)
	GetByUserID(userID uint) (*models.Affiliate, error)
	GetByRequestID(requestID uint) (*models.Affiliate, error)
	GetByUniqueLink(link string) (*models.Affiliate, error)
	UpdateStatus(id uint, status string, updatedAt time.Time) error
	List(filter AffiliateListFilter) ([]models.Affiliate, int64, error)
}

// GormAffiliateRepository GORM 实现
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository 创建推广用户仓库
func NewAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAffiliateRepository) WithTx(tx *gorm.DB) AffiliateRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateRepository{db: tx}
}

// Create 创建推广档案
func (r *GormAffiliateRepository) Create(affiliate *models.Affiliate) error {
	return r.db.Create(affiliate).Error
}

// GetByID 按ID获取推广档案
func (r *GormAffiliateRepository) GetByID(id uint) (*models.Affiliate, error) {
	if id == 0 {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Preload("User").First(&affiliate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByUserID 按用户ID获取推广档案
func (r *GormAffiliateRepository) GetByUserID(userID uint) (*models.Affiliate, error) {
	if userID == 0 {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByRequestID 按来源申请ID获取推广档案
func (r *GormAffiliateRepository) GetByRequestID(requestID uint) (*models.Affiliate, error) {
	if requestID == 0 {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("request_id = ?", requestID).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByUniqueLink 按推广链接码获取推广档案
func (r *GormAffiliateRepository) GetByUniqueLink(link string) (*models.Affiliate, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("unique_link = ?", link).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// UpdateStatus 更新推广档案状态
func (r *GormAffiliateRepository) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     strings.TrimSpace(status),
			"updated_at": updatedAt,
		}).Error
}

// List 推广档案列表
func (r *GormAffiliateRepository) List(filter AffiliateListFilter) ([]models.Affiliate, int64, error) {
	query := r.db.Model(&models.Affiliate{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"email", "name", "unique_link"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Keyword+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var affiliates []models.Affiliate
	if err := query.Order("id DESC").Find(&affiliates).Error; err != nil {
		return nil, 0, err
	}
	return affiliates, total, nil
}
