package models

import (
	"time"

	"gorm.io/gorm"
)

// Affiliate 推广用户档案（审批通过后创建，唯一推广链接终身不变）
type Affiliate struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // 主键
	UserID      uint           `gorm:"not null;uniqueIndex" json:"user_id"`                      // 用户ID
	RequestID   uint           `gorm:"not null;uniqueIndex" json:"request_id"`                   // 来源申请ID
	UniqueLink  string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"unique_link"` // 唯一推广链接码
	Name        string         `gorm:"not null" json:"name"`                                     // 姓名
	Email       string         `gorm:"index;not null" json:"email"`                              // 邮箱
	Location    string         `gorm:"default:''" json:"location"`                               // 所在地区
	Language    string         `gorm:"default:''" json:"language"`                               // 语言
	OnemoveLink string         `gorm:"default:''" json:"onemove_link"`                           // OneMove 主页链接
	PuprimeLink string         `gorm:"default:''" json:"puprime_link"`                           // PU Prime 主页链接
	Status      string         `gorm:"type:varchar(20);not null;index" json:"status"`            // 状态
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 用户信息
}

// TableName 指定表名
func (Affiliate) TableName() string {
	return "affiliates"
}
