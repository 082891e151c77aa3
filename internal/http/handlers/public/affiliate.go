package public

import (
	"errors"
	"strconv"

	"github.com/TanvirSEF/tracking-be/internal/http/response"
	"github.com/TanvirSEF/tracking-be/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAffiliateProfile 推广用户查看自己的档案
func (h *Handler) GetAffiliateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	profile, err := h.AffiliateService.GetProfileByUserID(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "affiliate profile not found", nil)
		default:
			respondError(c, response.CodeInternal, "get affiliate profile failed", err)
		}
		return
	}

	response.Success(c, profile)
}

// GetMyReferrals 推广用户查看自己名下的引荐记录
func (h *Handler) GetMyReferrals(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.ReferralService.ListForUser(userID, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "affiliate profile not found", nil)
		default:
			respondError(c, response.CodeInternal, "list referrals failed", err)
		}
		return
	}

	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
