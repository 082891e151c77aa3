package repository

import (
	"errors"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/models"

	"gorm.io/gorm"
)

// TicketRepository 工单数据访问接口
type TicketRepository interface {
	Create(ticket *models.Ticket) error
	GetByID(id uint) (*models.Ticket, error)
	GetByIDWithReplies(id uint) (*models.Ticket, error)
	AddReply(reply *models.TicketReply) error
	UpdateOnReply(id uint, status string, repliedAt time.Time) error
	UpdateStatusPriority(id uint, status, priority string, updatedAt time.Time) error
	CountReplies(ticketID uint) (int64, error)
	CountByStatus() (map[string]int64, error)
	List(filter TicketListFilter) ([]models.Ticket, int64, error)
}

// GormTicketRepository GORM 实现
type GormTicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository 创建工单仓库
func NewTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Create 创建工单
func (r *GormTicketRepository) Create(ticket *models.Ticket) error {
	return r.db.Create(ticket).Error
}

// GetByID 按ID获取工单
func (r *GormTicketRepository) GetByID(id uint) (*models.Ticket, error) {
	if id == 0 {
		return nil, nil
	}
	var ticket models.Ticket
	if err := r.db.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

// GetByIDWithReplies 按ID获取工单及全部回复
func (r *GormTicketRepository) GetByIDWithReplies(id uint) (*models.Ticket, error) {
	if id == 0 {
		return nil, nil
	}
	var ticket models.Ticket
	err := r.db.Preload("Replies", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

// AddReply 追加工单回复
func (r *GormTicketRepository) AddReply(reply *models.TicketReply) error {
	return r.db.Create(reply).Error
}

// UpdateOnReply 回复后刷新工单状态与最后回复时间
func (r *GormTicketRepository) UpdateOnReply(id uint, status string, repliedAt time.Time) error {
	updates := map[string]interface{}{
		"last_reply_at": repliedAt,
		"updated_at":    repliedAt,
	}
	if status != "" {
		updates["status"] = status
	}
	return r.db.Model(&models.Ticket{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatusPriority 管理端更新工单状态/优先级
func (r *GormTicketRepository) UpdateStatusPriority(id uint, status, priority string, updatedAt time.Time) error {
	updates := map[string]interface{}{
		"updated_at": updatedAt,
	}
	if status != "" {
		updates["status"] = status
	}
	if priority != "" {
		updates["priority"] = priority
	}
	return r.db.Model(&models.Ticket{}).Where("id = ?", id).Updates(updates).Error
}

// CountReplies 统计工单回复数
func (r *GormTicketRepository) CountReplies(ticketID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TicketReply{}).Where("ticket_id = ?", ticketID).Count(&count).Error
	return count, err
}

// CountByStatus 按状态统计工单数
func (r *GormTicketRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.Model(&models.Ticket{}).
		Select("status, count(*) as total").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int64, len(rows))
	for _, item := range rows {
		stats[item.Status] = item.Total
	}
	return stats, nil
}

// List 工单列表
func (r *GormTicketRepository) List(filter TicketListFilter) ([]models.Ticket, int64, error) {
	query := r.db.Model(&models.Ticket{})

	if filter.AffiliateID > 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Keyword != "" {
		condition, argCount := buildKeywordLikeCondition(r.db, []string{"subject", "message"})
		query = query.Where(condition, repeatLikeArgs("%"+filter.Keyword+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var tickets []models.Ticket
	if err := query.Order("id DESC").Find(&tickets).Error; err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}
