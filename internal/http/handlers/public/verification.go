package public

import (
	"errors"
	"strings"

	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/http/response"
	"github.com/TanvirSEF/tracking-be/internal/service"

	"github.com/gin-gonic/gin"
)

// SendVerifyCodeRequest 发送验证码请求
type SendVerifyCodeRequest struct {
	Email          string                `json:"email" binding:"required"`
	Purpose        string                `json:"purpose"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// SendVerifyCode 发送邮箱验证码
func (h *Handler) SendVerifyCode(c *gin.Context) {
	var req SendVerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	purpose := strings.ToLower(strings.TrimSpace(req.Purpose))
	if purpose == "" {
		purpose = constants.VerifyPurposeRegister
	}
	if purpose == constants.VerifyPurposeRegister {
		if !h.verifyCaptchaScene(c, constants.CaptchaSceneRegisterSendCode, req.CaptchaPayload) {
			return
		}
	}

	if err := h.VerificationService.IssueCode(req.Email, purpose); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "email invalid", nil)
		case errors.Is(err, service.ErrInvalidVerifyPurpose):
			respondError(c, response.CodeBadRequest, "verify purpose invalid", nil)
		case errors.Is(err, service.ErrVerifyCodeTooFrequent):
			respondError(c, response.CodeTooManyRequests, "verify code requested too frequently", nil)
		case errors.Is(err, service.ErrEmailRecipientRejected):
			respondError(c, response.CodeBadRequest, "email recipient rejected", nil)
		case errors.Is(err, service.ErrEmailServiceDisabled),
			errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, response.CodeInternal, "email service not configured", err)
		default:
			respondError(c, response.CodeInternal, "send verify code failed", err)
		}
		return
	}

	response.Success(c, gin.H{"sent": true})
}

// VerifyCodeRequest 校验验证码请求
type VerifyCodeRequest struct {
	Email   string `json:"email" binding:"required"`
	Purpose string `json:"purpose"`
	Code    string `json:"code" binding:"required"`
}

// VerifyCode 校验邮箱验证码
func (h *Handler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	purpose := strings.ToLower(strings.TrimSpace(req.Purpose))
	if purpose == "" {
		purpose = constants.VerifyPurposeRegister
	}

	if err := h.VerificationService.VerifyCode(req.Email, purpose, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "email invalid", nil)
		case errors.Is(err, service.ErrInvalidVerifyPurpose):
			respondError(c, response.CodeBadRequest, "verify purpose invalid", nil)
		case errors.Is(err, service.ErrVerifyCodeExpired):
			respondError(c, response.CodeBadRequest, "verify code expired", nil)
		case errors.Is(err, service.ErrVerifyCodeAttemptsExceeded):
			respondError(c, response.CodeBadRequest, "verify code attempts exceeded", nil)
		case errors.Is(err, service.ErrVerifyCodeInvalid):
			respondError(c, response.CodeBadRequest, "verify code invalid", nil)
		default:
			respondError(c, response.CodeInternal, "verify code failed", err)
		}
		return
	}

	response.Success(c, gin.H{"verified": true})
}
