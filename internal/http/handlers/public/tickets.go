package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/TanvirSEF/tracking-be/internal/http/response"
	"github.com/TanvirSEF/tracking-be/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTicketRequest 创建工单请求
type CreateTicketRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Priority string `json:"priority"`
}

// CreateTicket 推广用户创建工单
func (h *Handler) CreateTicket(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	ticket, err := h.TicketService.Create(userID, service.CreateTicketInput{
		Subject:  req.Subject,
		Message:  req.Message,
		Priority: req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "affiliate profile not found", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "subject and message are required", nil)
		case errors.Is(err, service.ErrInvalidTicketPriority):
			respondError(c, response.CodeBadRequest, "invalid ticket priority", nil)
		default:
			respondError(c, response.CodeInternal, "create ticket failed", err)
		}
		return
	}

	response.Success(c, ticket)
}

// GetMyTickets 推广用户查看自己的工单列表
func (h *Handler) GetMyTickets(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.TicketService.ListForUser(userID, page, pageSize, strings.TrimSpace(c.Query("status")))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "affiliate profile not found", nil)
		case errors.Is(err, service.ErrInvalidTicketStatus):
			respondError(c, response.CodeBadRequest, "invalid ticket status", nil)
		default:
			respondError(c, response.CodeInternal, "list tickets failed", err)
		}
		return
	}

	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetMyTicket 推广用户查看自己的工单详情
func (h *Handler) GetMyTicket(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid ticket id", nil)
		return
	}

	ticket, err := h.TicketService.GetForUser(userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "affiliate profile not found", nil)
		case errors.Is(err, service.ErrTicketNotFound):
			respondError(c, response.CodeNotFound, "ticket not found", nil)
		case errors.Is(err, service.ErrTicketAccessDenied):
			respondError(c, response.CodeForbidden, "ticket access denied", nil)
		default:
			respondError(c, response.CodeInternal, "get ticket failed", err)
		}
		return
	}

	response.Success(c, ticket)
}

// ReplyTicketRequest 工单回复请求
type ReplyTicketRequest struct {
	Message string `json:"message" binding:"required"`
}

// ReplyMyTicket 推广用户回复自己的工单
func (h *Handler) ReplyMyTicket(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid ticket id", nil)
		return
	}

	var req ReplyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	reply, err := h.TicketService.ReplyForUser(userID, uint(id), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "affiliate profile not found", nil)
		case errors.Is(err, service.ErrTicketNotFound):
			respondError(c, response.CodeNotFound, "ticket not found", nil)
		case errors.Is(err, service.ErrTicketAccessDenied):
			respondError(c, response.CodeForbidden, "ticket access denied", nil)
		case errors.Is(err, service.ErrTicketClosed):
			respondError(c, response.CodeBadRequest, "ticket already closed", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "message is required", nil)
		default:
			respondError(c, response.CodeInternal, "reply ticket failed", err)
		}
		return
	}

	response.Success(c, reply)
}
