package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/TanvirSEF/tracking-be/internal/http/response"
	"github.com/TanvirSEF/tracking-be/internal/repository"
	"github.com/TanvirSEF/tracking-be/internal/service"

	"github.com/gin-gonic/gin"
)

// GetTickets 获取工单列表
func (h *Handler) GetTickets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.TicketService.List(repository.TicketListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Priority: strings.TrimSpace(c.Query("priority")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTicketStatus):
			respondError(c, response.CodeBadRequest, "invalid ticket status", nil)
		case errors.Is(err, service.ErrInvalidTicketPriority):
			respondError(c, response.CodeBadRequest, "invalid ticket priority", nil)
		default:
			respondError(c, response.CodeInternal, "list tickets failed", err)
		}
		return
	}

	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetTicket 获取工单详情（含回复）
func (h *Handler) GetTicket(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid ticket id", nil)
		return
	}

	ticket, err := h.TicketService.GetForAdmin(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			respondError(c, response.CodeNotFound, "ticket not found", nil)
		default:
			respondError(c, response.CodeInternal, "get ticket failed", err)
		}
		return
	}

	response.Success(c, ticket)
}

// ReplyTicketRequest 管理端工单回复请求
type ReplyTicketRequest struct {
	Message string `json:"message" binding:"required"`
}

// ReplyTicket 管理端回复工单
func (h *Handler) ReplyTicket(c *gin.Context) {
	adminID, ok := getAdminID(c)
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

	reply, err := h.TicketService.ReplyForAdmin(uint(id), adminID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			respondError(c, response.CodeNotFound, "ticket not found", nil)
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

// UpdateTicketRequest 管理端更新工单请求
type UpdateTicketRequest struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// UpdateTicket 管理端更新工单状态/优先级
func (h *Handler) UpdateTicket(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid ticket id", nil)
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	ticket, err := h.TicketService.Update(uint(id), service.UpdateTicketInput{
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			respondError(c, response.CodeNotFound, "ticket not found", nil)
		case errors.Is(err, service.ErrInvalidTicketStatus):
			respondError(c, response.CodeBadRequest, "invalid ticket status", nil)
		case errors.Is(err, service.ErrInvalidTicketPriority):
			respondError(c, response.CodeBadRequest, "invalid ticket priority", nil)
		default:
			respondError(c, response.CodeInternal, "update ticket failed", err)
		}
		return
	}

	response.Success(c, ticket)
}

// GetTicketStats 获取工单状态统计
func (h *Handler) GetTicketStats(c *gin.Context) {
	stats, err := h.TicketService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "get ticket stats failed", err)
		return
	}

	response.Success(c, stats)
}
