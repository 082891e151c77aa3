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

// GetRequests 获取入驻申请列表
func (h *Handler) GetRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.RequestService.List(repository.AffiliateRequestListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list requests failed", err)
		return
	}

	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetRequest 获取入驻申请详情
func (h *Handler) GetRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid request id", nil)
		return
	}

	request, err := h.RequestService.GetByID(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "request not found", nil)
		default:
			respondError(c, response.CodeInternal, "get request failed", err)
		}
		return
	}

	response.Success(c, request)
}

// ReviewRequestRequest 审批入驻申请请求
type ReviewRequestRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// ReviewRequest 审批入驻申请
func (h *Handler) ReviewRequest(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid request id", nil)
		return
	}

	var req ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.RequestService.Review(uint(id), req.Approve, req.Reason, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "request not found", nil)
		case errors.Is(err, service.ErrRequestAlreadyReviewed):
			respondError(c, response.CodeBadRequest, "request already reviewed", nil)
		case errors.Is(err, service.ErrLinkAllocationExhausted):
			respondError(c, response.CodeInternal, "unique link allocation failed", err)
		default:
			respondError(c, response.CodeInternal, "review request failed", err)
		}
		return
	}

	requestLog(c).Infow("affiliate_request_reviewed",
		"request_id", result.Request.ID,
		"status", result.Request.Status,
		"reviewer_id", adminID,
	)
	response.Success(c, result)
}
