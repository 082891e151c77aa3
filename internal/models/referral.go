package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral 推广引荐记录（只追加，不参与任何流转）
type Referral struct {
	ID          uint           `gorm:"primarykey" json:"id"`                           // 主键
	AffiliateID uint           `gorm:"not null;index" json:"affiliate_id"`             // 归属推广用户ID
	UniqueLink  string         `gorm:"type:varchar(32);index" json:"unique_link"`      // 引荐时使用的链接码（冗余存档）
	Name        string         `gorm:"not null" json:"name"`                           // 被引荐人姓名
	Email       string         `gorm:"index;not null" json:"email"`                    // 被引荐人邮箱
	Phone       string         `gorm:"default:''" json:"phone"`                        // 被引荐人电话
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 推广用户信息
}

// TableName 指定表名
func (Referral) TableName() string {
	return "referrals"
}
