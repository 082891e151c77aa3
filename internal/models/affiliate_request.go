package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateRequest 推广用户入驻申请
type AffiliateRequest struct {
	ID            uint           `gorm:"primarykey" json:"id"`                          // 主键
	Name          string         `gorm:"not null" json:"name"`                          // 申请人姓名
	Email         string         `gorm:"index;not null" json:"email"`                   // 邮箱
	PasswordHash  string         `gorm:"not null" json:"-"`                             // 密码哈希（审批通过后转入用户表）
	Location      string         `gorm:"default:''" json:"location"`                    // 所在地区
	Language      string         `gorm:"default:''" json:"language"`                    // 语言
	OnemoveLink   string         `gorm:"default:''" json:"onemove_link"`                // OneMove 主页链接
	PuprimeLink   string         `gorm:"default:''" json:"puprime_link"`                // PU Prime 主页链接
	EmailVerified bool           `gorm:"not null;default:false" json:"email_verified"`  // 提交时邮箱已验证
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"` // 状态（pending/approved/rejected）
	RejectReason  string         `gorm:"default:''" json:"reject_reason"`               // 拒绝原因
	ReviewedAt    *time.Time     `gorm:"index" json:"reviewed_at"`                      // 审批时间
	ReviewedBy    *uint          `gorm:"index" json:"reviewed_by"`                      // 审批人ID
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (AffiliateRequest) TableName() string {
	return "affiliate_requests"
}
