package service

import "errors"

// 业务错误定义，处理层通过 errors.Is 映射为响应码
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("account disabled")
	ErrLoginRateLimited   = errors.New("too many login attempts")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailExists        = errors.New("email already in use")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrWeakPassword       = errors.New("password does not meet policy")

	ErrInvalidVerifyPurpose       = errors.New("unsupported verify purpose")
	ErrVerifyCodeInvalid          = errors.New("verify code invalid")
	ErrVerifyCodeExpired          = errors.New("verify code expired")
	ErrVerifyCodeAttemptsExceeded = errors.New("verify code attempts exceeded")
	ErrVerifyCodeTooFrequent      = errors.New("verify code requested too frequently")

	ErrRegistrationLinkInvalid = errors.New("registration link invalid")
	ErrRequestAlreadyReviewed  = errors.New("request already reviewed")
	ErrLinkAllocationExhausted = errors.New("unique link allocation exhausted")
	ErrAffiliateDisabled       = errors.New("affiliate disabled")
	ErrInvalidAffiliateStatus  = errors.New("invalid affiliate status")

	ErrInvalidInput          = errors.New("invalid input")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketAccessDenied    = errors.New("ticket belongs to another affiliate")
	ErrTicketClosed          = errors.New("ticket closed")
	ErrInvalidTicketStatus   = errors.New("invalid ticket status")
	ErrInvalidTicketPriority = errors.New("invalid ticket priority")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
