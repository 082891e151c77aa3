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

// GetAffiliates 获取推广档案列表
func (h *Handler) GetAffiliates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.AffiliateService.List(repository.AffiliateListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list affiliates failed", err)
		return
	}

	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// UpdateAffiliateStatusRequest 更新推广档案状态请求
type UpdateAffiliateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAffiliateStatus 启用/停用推广档案
func (h *Handler) UpdateAffiliateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid affiliate id", nil)
		return
	}

	var req UpdateAffiliateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	affiliate, err := h.AffiliateService.UpdateStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "affiliate not found", nil)
		case errors.Is(err, service.ErrInvalidAffiliateStatus):
			respondError(c, response.CodeBadRequest, "invalid affiliate status", nil)
		default:
			respondError(c, response.CodeInternal, "update affiliate status failed", err)
		}
		return
	}

	response.Success(c, affiliate)
}

// GetRegistrationLink 获取入驻注册链接
func (h *Handler) GetRegistrationLink(c *gin.Context) {
	info, err := h.AffiliateService.GetRegistrationLink()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "registration link not configured", nil)
		default:
			respondError(c, response.CodeInternal, "get registration link failed", err)
		}
		return
	}

	response.Success(c, info)
}
