package repository

import (
	"errors"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/models"

	"gorm.io/gorm"
)

// EmailVerifyCodeRepository 邮箱验证码数据访问接口
type EmailVerifyCodeRepository interface {
	Create(code *models.EmailVerifyCode) error
	GetLatest(email, purpose string) (*models.EmailVerifyCode, error)
	GetActive(email, purpose string) (*models.EmailVerifyCode, error)
	GetLatestVerified(email, purpose string) (*models.EmailVerifyCode, error)
	ConsumeActive(email, purpose string, consumedAt time.Time) error
	MarkVerified(id uint, verifiedAt time.Time) error
	IncrementAttempt(id uint, maxAttempts int) (bool, error)
	PurgeExpired(before time.Time) (int64, error)
}

// GormEmailVerifyCodeRepository GORM 实现
type GormEmailVerifyCodeRepository struct {
	db *gorm.DB
}

// NewEmailVerifyCodeRepository 创建邮箱验证码仓库
func NewEmailVerifyCodeRepository(db *gorm.DB) *GormEmailVerifyCodeRepository {
	return &GormEmailVerifyCodeRepository{db: db}
}

// Create 创建验证码记录
func (r *GormEmailVerifyCodeRepository) Create(code *models.EmailVerifyCode) error {
	return r.db.Create(code).Error
}

// GetLatest 获取最新验证码记录（含已失效记录）
func (r *GormEmailVerifyCodeRepository) GetLatest(email, purpose string) (*models.EmailVerifyCode, error) {
	var record models.EmailVerifyCode
	if err := r.db.Where("email = ? AND purpose = ?", email, purpose).
		Order("sent_at desc, id desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetActive 获取当前有效验证码记录（未被消费）
func (r *GormEmailVerifyCodeRepository) GetActive(email, purpose string) (*models.EmailVerifyCode, error) {
	var record models.EmailVerifyCode
	if err := r.db.Where("email = ? AND purpose = ? AND consumed_at IS NULL", email, purpose).
		Order("sent_at desc, id desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetLatestVerified 获取最近一条验证成功记录
func (r *GormEmailVerifyCodeRepository) GetLatestVerified(email, purpose string) (*models.EmailVerifyCode, error) {
	var record models.EmailVerifyCode
	if err := r.db.Where("email = ? AND purpose = ? AND verified_at IS NOT NULL", email, purpose).
		Order("verified_at desc, id desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ConsumeActive 将当前有效验证码全部置为失效（记录保留用于审计）
func (r *GormEmailVerifyCodeRepository) ConsumeActive(email, purpose string, consumedAt time.Time) error {
	return r.db.Model(&models.EmailVerifyCode{}).
		Where("email = ? AND purpose = ? AND consumed_at IS NULL", email, purpose).
		Update("consumed_at", consumedAt).Error
}

// MarkVerified 标记验证码验证成功并同时失效
func (r *GormEmailVerifyCodeRepository) MarkVerified(id uint, verifiedAt time.Time) error {
	return r.db.Model(&models.EmailVerifyCode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verified_at": verifiedAt,
			"consumed_at": verifiedAt,
		}).Error
}

// IncrementAttempt 原子递增验证次数，超出上限时返回 false 且不递增
func (r *GormEmailVerifyCodeRepository) IncrementAttempt(id uint, maxAttempts int) (bool, error) {
	result := r.db.Model(&models.EmailVerifyCode{}).
		Where("id = ? AND attempt_count < ?", id, maxAttempts).
		UpdateColumn("attempt_count", gorm.Expr("attempt_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// PurgeExpired 清理过期且从未验证成功的记录
func (r *GormEmailVerifyCodeRepository) PurgeExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ? AND verified_at IS NULL", before).
		Delete(&models.EmailVerifyCode{})
	return result.RowsAffected, result.Error
}
