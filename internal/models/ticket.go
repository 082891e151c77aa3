package models

import (
	"time"

	"gorm.io/gorm"
)

// Ticket 推广用户工单（推广用户发起，管理端应答）
type Ticket struct {
	ID          uint           `gorm:"primarykey" json:"id"`                          // 主键
	AffiliateID uint           `gorm:"not null;index" json:"affiliate_id"`            // 发起人推广档案ID
	Subject     string         `gorm:"not null" json:"subject"`                       // 主题
	Message     string         `gorm:"type:text;not null" json:"message"`             // 初始描述
	Priority    string         `gorm:"type:varchar(20);not null;index" json:"priority"` // 优先级
	Status      string         `gorm:"type:varchar(20);not null;index" json:"status"` // 状态
	LastReplyAt *time.Time     `gorm:"index" json:"last_reply_at"`                    // 最后回复时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间

	Affiliate Affiliate     `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 发起人信息
	Replies   []TicketReply `gorm:"foreignKey:TicketID" json:"replies,omitempty"`      // 回复列表
}

// TableName 指定表名
func (Ticket) TableName() string {
	return "tickets"
}

// TicketReply 工单回复
type TicketReply struct {
	ID         uint           `gorm:"primarykey" json:"id"`                             // 主键
	TicketID   uint           `gorm:"not null;index" json:"ticket_id"`                  // 工单ID
	SenderID   uint           `gorm:"not null" json:"sender_id"`                        // 发送人用户ID
	SenderName string         `gorm:"default:''" json:"sender_name"`                    // 发送人名称
	SenderRole string         `gorm:"type:varchar(20);not null" json:"sender_role"`     // 发送人角色
	Message    string         `gorm:"type:text;not null" json:"message"`                // 回复内容
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                          // 创建时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间
}

// TableName 指定表名
func (TicketReply) TableName() string {
	return "ticket_replies"
}
