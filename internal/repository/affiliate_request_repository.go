package repository

import (
	"errors"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/models"

	"gorm.io/gorm"
)

// AffiliateRequestRepository 入驻申请数据访问接口
type AffiliateRequestRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AffiliateRequestRepository

	Create(request *models.AffiliateRequest) error
	GetByID(id uint) (*models.AffiliateRequest, error)
	ExistsByEmailInStatuses(email string, statuses []string) (bool, error)
	MarkReviewed(id uint, status, reason string, reviewerID uint, reviewedAt time.Time) (bool, error)
	List(filter AffiliateRequestListFilter) ([]models.AffiliateRequest, int64, error)
}

// GormAffiliateRequestRepository GORM 实现
type GormAffiliateRequestRepository struct {
	db *gorm.DB
}

// NewAffiliateRequestRepository 创建入驻申请仓库
func NewAffiliateRequestRepository(db *gorm.DB) *GormAffiliateRequestRepository {
	return &GormAffiliateRequestRepository{db: db}
}

// Transaction 执行事务
func (r *GormAffiliateRequestRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormAffiliateRequestRepository) WithTx(tx *gorm.DB) AffiliateRequestRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateRequestRepository{db: tx}
}

// Create 创建申请
func (r *GormAffiliateRequestRepository) Create(request *models.AffiliateRequest) error {
	return r.db.Create(request).Error
}

// GetByID 按ID获取申请
func (r *GormAffiliateRequestRepository) GetByID(id uint) (*models.AffiliateRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var request models.AffiliateRequest
	if err := r.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// ExistsByEmailInStatuses 判断邮箱是否已有处于指定状态的申请
func (r *GormAffiliateRequestRepository) ExistsByEmailInStatuses(email string, statuses []string) (bool, error) {
	if len(statuses) == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.AffiliateRequest{}).
		Where("email = ? AND status IN ?", email, statuses).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkReviewed 条件更新申请状态，仅在待审批时生效；返回是否抢到审批权
func (r *GormAffiliateRequestRepository) MarkReviewed(id uint, status, reason string, reviewerID uint, reviewedAt time.Time) (bool, error) {
	result := r.db.Model(&models.AffiliateRequest{}).
		Where("id = ? AND status = ?", id, constants.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"reject_reason": reason,
			"reviewed_at":   reviewedAt,
			"reviewed_by":   reviewerID,
			"updated_at":    reviewedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 申请列表
func (r *GormAffiliateRequestRepository) List(filter AffiliateRequestListFilter) ([]models.AffiliateRequest, int64, error) {
	query := r.db.Model(&models.AffiliateRequest{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var requests []models.AffiliateRequest
	if err := query.Order("id DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
