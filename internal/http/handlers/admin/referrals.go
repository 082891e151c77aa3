package admin

import (
	"strconv"
	"strings"

	"github.com/TanvirSEF/tracking-be/internal/http/response"
	"github.com/TanvirSEF/tracking-be/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetReferrals 获取引荐记录列表
func (h *Handler) GetReferrals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	affiliateID, _ := strconv.ParseUint(c.Query("affiliate_id"), 10, 64)

	rows, total, err := h.ReferralService.List(repository.ReferralListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: uint(affiliateID),
		Keyword:     strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "list referrals failed", err)
		return
	}

	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
