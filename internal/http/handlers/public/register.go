package public

import (
	"errors"

	"github.com/TanvirSEF/tracking-be/internal/http/response"
	"github.com/TanvirSEF/tracking-be/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitRequestRequest 入驻申请提交请求
type SubmitRequestRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Location    string `json:"location"`
	Language    string `json:"language"`
	OnemoveLink string `json:"onemove_link"`
	PuprimeLink string `json:"puprime_link"`
}

// SubmitRequest 通过注册链接提交入驻申请
func (h *Handler) SubmitRequest(c *gin.Context) {
	var req SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	request, err := h.RequestService.Submit(service.SubmitRequestInput{
		LinkCode:    c.Param("link_code"),
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Location:    req.Location,
		Language:    req.Language,
		OnemoveLink: req.OnemoveLink,
		PuprimeLink: req.PuprimeLink,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationLinkInvalid):
			respondError(c, response.CodeNotFound, "registration link invalid", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "email invalid", nil)
		case errors.Is(err, service.ErrEmailNotVerified):
			respondError(c, response.CodeBadRequest, "email not verified", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "email already used", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "submit request failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"request": gin.H{
			"id":     request.ID,
			"email":  request.Email,
			"status": request.Status,
		},
	})
}
