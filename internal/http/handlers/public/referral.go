package public

import (
	"errors"

	"github.com/TanvirSEF/tracking-be/internal/http/response"
	"github.com/TanvirSEF/tracking-be/internal/service"

	"github.com/gin-gonic/gin"
)

// ResolveReferralLink 解析推广链接码
func (h *Handler) ResolveReferralLink(c *gin.Context) {
	affiliate, err := h.ReferralService.ResolveLink(c.Param("unique_link"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "referral link not found", nil)
		default:
			respondError(c, response.CodeInternal, "resolve referral link failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"affiliate": gin.H{
			"id":          affiliate.ID,
			"name":        affiliate.Name,
			"unique_link": affiliate.UniqueLink,
			"status":      affiliate.Status,
		},
	})
}

// RecordReferralRequest 引荐登记请求
type RecordReferralRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

// RecordReferral 通过推广链接登记引荐信息
func (h *Handler) RecordReferral(c *gin.Context) {
	var req RecordReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	referral, err := h.ReferralService.Record(c.Param("unique_link"), service.RecordReferralInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "referral link not found", nil)
		case errors.Is(err, service.ErrAffiliateDisabled):
			respondError(c, response.CodeForbidden, "referral link disabled", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "email invalid", nil)
		default:
			respondError(c, response.CodeInternal, "record referral failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"referral": gin.H{
			"id":         referral.ID,
			"created_at": referral.CreatedAt,
		},
	})
}
