package service

import (
	"strings"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"
)

// TicketService 工单业务服务
// 推广用户向管理端提交工单，管理端回复并推进状态
type TicketService struct {
	repo          repository.TicketRepository
	affiliateRepo repository.AffiliateRepository
	userRepo      repository.UserRepository
}

// NewTicketService 创建工单服务
func NewTicketService(
	repo repository.TicketRepository,
	affiliateRepo repository.AffiliateRepository,
	userRepo repository.UserRepository,
) *TicketService {
	return &TicketService{repo: repo, affiliateRepo: affiliateRepo, userRepo: userRepo}
}

// CreateTicketInput 创建工单入参
type CreateTicketInput struct {
	Subject  string
	Message  string
	Priority string
}

// TicketStats 工单状态统计
type TicketStats struct {
	Total   int64 `json:"total"`
	Open    int64 `json:"open"`
	Ongoing int64 `json:"ongoing"`
	Closed  int64 `json:"closed"`
}

func validTicketStatus(status string) bool {
	switch status {
	case constants.TicketStatusOpen, constants.TicketStatusOngoing, constants.TicketStatusClosed:
		return true
	}
	return false
}

func validTicketPriority(priority string) bool {
	switch priority {
	case constants.TicketPriorityAverage, constants.TicketPriorityMedium, constants.TicketPriorityHigh:
		return true
	}
	return false
}

func (s *TicketService) affiliateByUserID(userID uint) (*models.Affiliate, error) {
	affiliate, err := s.affiliateRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}
	return affiliate, nil
}

// Create 推广用户创建工单，初始状态 open
func (s *TicketService) Create(userID uint, input CreateTicketInput) (*models.Ticket, error) {
	affiliate, err := s.affiliateByUserID(userID)
	if err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)
	if subject == "" || message == "" {
		return nil, ErrInvalidInput
	}
	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = constants.TicketPriorityAverage
	}
	if !validTicketPriority(priority) {
		return nil, ErrInvalidTicketPriority
	}

	ticket := &models.Ticket{
		AffiliateID: affiliate.ID,
		Subject:     subject,
		Message:     message,
		Priority:    priority,
		Status:      constants.TicketStatusOpen,
	}
	if err := s.repo.Create(ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListForUser 推广用户自己的工单列表
func (s *TicketService) ListForUser(userID uint, page, pageSize int, status string) ([]models.Ticket, int64, error) {
	affiliate, err := s.affiliateByUserID(userID)
	if err != nil {
		return nil, 0, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !validTicketStatus(status) {
		return nil, 0, ErrInvalidTicketStatus
	}
	return s.repo.List(repository.TicketListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: affiliate.ID,
		Status:      status,
	})
}

// GetForUser 推广用户查看自己的工单详情（含回复）
func (s *TicketService) GetForUser(userID, ticketID uint) (*models.Ticket, error) {
	affiliate, err := s.affiliateByUserID(userID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.repo.GetByIDWithReplies(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.AffiliateID != affiliate.ID {
		return nil, ErrTicketAccessDenied
	}
	return ticket, nil
}

// ReplyForUser 推广用户在自己的工单下回复
func (s *TicketService) ReplyForUser(userID, ticketID uint, message string) (*models.TicketReply, error) {
	affiliate, err := s.affiliateByUserID(userID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.AffiliateID != affiliate.ID {
		return nil, ErrTicketAccessDenied
	}
	name, err := s.senderName(userID)
	if err != nil {
		return nil, err
	}
	return s.appendReply(ticket, userID, name, constants.TicketSenderAffiliate, message, "")
}

// GetForAdmin 管理端查看工单详情（含回复）
func (s *TicketService) GetForAdmin(ticketID uint) (*models.Ticket, error) {
	ticket, err := s.repo.GetByIDWithReplies(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

// List 管理端工单列表
func (s *TicketService) List(filter repository.TicketListFilter) ([]models.Ticket, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !validTicketStatus(filter.Status) {
		return nil, 0, ErrInvalidTicketStatus
	}
	filter.Priority = strings.ToLower(strings.TrimSpace(filter.Priority))
	if filter.Priority != "" && !validTicketPriority(filter.Priority) {
		return nil, 0, ErrInvalidTicketPriority
	}
	return s.repo.List(filter)
}

// ReplyForAdmin 管理端回复工单，open 工单转入 ongoing
func (s *TicketService) ReplyForAdmin(ticketID, adminID uint, message string) (*models.TicketReply, error) {
	ticket, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	nextStatus := ""
	if ticket.Status == constants.TicketStatusOpen {
		nextStatus = constants.TicketStatusOngoing
	}
	name, err := s.senderName(adminID)
	if err != nil {
		return nil, err
	}
	return s.appendReply(ticket, adminID, name, constants.TicketSenderAdmin, message, nextStatus)
}

// UpdateTicketInput 管理端更新工单入参，空字段保持原值
type UpdateTicketInput struct {
	Status   string
	Priority string
}

// Update 管理端更新工单状态/优先级
func (s *TicketService) Update(ticketID uint, input UpdateTicketInput) (*models.Ticket, error) {
	ticket, err := s.repo.GetByID(ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status != "" && !validTicketStatus(status) {
		return nil, ErrInvalidTicketStatus
	}
	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	if priority != "" && !validTicketPriority(priority) {
		return nil, ErrInvalidTicketPriority
	}
	if status == "" && priority == "" {
		return ticket, nil
	}

	now := time.Now()
	if err := s.repo.UpdateStatusPriority(ticket.ID, status, priority, now); err != nil {
		return nil, err
	}
	if status != "" {
		ticket.Status = status
	}
	if priority != "" {
		ticket.Priority = priority
	}
	ticket.UpdatedAt = now
	return ticket, nil
}

// Stats 管理端工单状态统计
func (s *TicketService) Stats() (*TicketStats, error) {
	counts, err := s.repo.CountByStatus()
	if err != nil {
		return nil, err
	}
	stats := &TicketStats{
		Open:    counts[constants.TicketStatusOpen],
		Ongoing: counts[constants.TicketStatusOngoing],
		Closed:  counts[constants.TicketStatusClosed],
	}
	stats.Total = stats.Open + stats.Ongoing + stats.Closed
	return stats, nil
}

func (s *TicketService) senderName(userID uint) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.Name, nil
}

// appendReply 追加回复并刷新工单；已关闭工单拒绝回复
func (s *TicketService) appendReply(ticket *models.Ticket, senderID uint, senderName, senderRole, message, nextStatus string) (*models.TicketReply, error) {
	if ticket.Status == constants.TicketStatusClosed {
		return nil, ErrTicketClosed
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrInvalidInput
	}

	reply := &models.TicketReply{
		TicketID:   ticket.ID,
		SenderID:   senderID,
		SenderName: strings.TrimSpace(senderName),
		SenderRole: senderRole,
		Message:    message,
	}
	if err := s.repo.AddReply(reply); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOnReply(ticket.ID, nextStatus, time.Now()); err != nil {
		return nil, err
	}
	return reply, nil
}
