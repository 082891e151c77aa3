package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/logger"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/queue"
	"github.com/TanvirSEF/tracking-be/internal/repository"
)

// VerificationService 邮箱验证服务
type VerificationService struct {
	cfg          *config.Config
	codeRepo     repository.EmailVerifyCodeRepository
	emailService *EmailService
	queueClient  *queue.Client

	now func() time.Time
}

// NewVerificationService 创建邮箱验证服务
func NewVerificationService(cfg *config.Config, codeRepo repository.EmailVerifyCodeRepository, emailService *EmailService, queueClient *queue.Client) *VerificationService {
	return &VerificationService{
		cfg:          cfg,
		codeRepo:     codeRepo,
		emailService: emailService,
		queueClient:  queueClient,
		now:          time.Now,
	}
}

// IssueCode 签发验证码并顶替同邮箱同用途的旧码
// 旧码记录保留用于审计，仅标记失效
func (s *VerificationService) IssueCode(email, purpose string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	purpose = strings.ToLower(strings.TrimSpace(purpose))
	if !isVerifyPurposeSupported(purpose) {
		return ErrInvalidVerifyPurpose
	}

	now := s.now()
	latest, err := s.codeRepo.GetLatest(normalized, purpose)
	if err != nil {
		return err
	}
	if latest != nil {
		interval := time.Duration(resolveSendIntervalSeconds(s.cfg.Email.VerifyCode)) * time.Second
		if !latest.SentAt.IsZero() && now.Sub(latest.SentAt) < interval {
			return ErrVerifyCodeTooFrequent
		}
	}

	code, err := randomNumericCode(resolveCodeLength(s.cfg.Email.VerifyCode))
	if err != nil {
		return err
	}

	if err := s.codeRepo.ConsumeActive(normalized, purpose, now); err != nil {
		return err
	}

	record := &models.EmailVerifyCode{
		Email:     normalized,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(time.Duration(resolveExpireMinutes(s.cfg.Email.VerifyCode)) * time.Minute),
		SentAt:    now,
		CreatedAt: now,
	}
	if err := s.codeRepo.Create(record); err != nil {
		return err
	}

	s.dispatchVerifyCodeEmail(normalized, code, purpose)
	return nil
}

// VerifyCode 校验验证码，成功后验证状态持久生效
func (s *VerificationService) VerifyCode(email, purpose, code string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	purpose = strings.ToLower(strings.TrimSpace(purpose))

	record, err := s.codeRepo.GetActive(normalized, purpose)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrVerifyCodeExpired
	}

	now := s.now()
	if record.ExpiresAt.Before(now) {
		return ErrVerifyCodeExpired
	}

	// 计数在比对之前完成，失败和成功的尝试都占用额度
	allowed, err := s.codeRepo.IncrementAttempt(record.ID, resolveMaxAttempts(s.cfg.Email.VerifyCode))
	if err != nil {
		return err
	}
	if !allowed {
		return ErrVerifyCodeAttemptsExceeded
	}

	if strings.TrimSpace(record.Code) != strings.TrimSpace(code) {
		return ErrVerifyCodeInvalid
	}

	return s.codeRepo.MarkVerified(record.ID, now)
}

// IsVerified 判断邮箱在指定用途下是否已验证过
// 验证状态一经确立即持久生效，不随验证码过期回退
func (s *VerificationService) IsVerified(email, purpose string) (bool, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	record, err := s.codeRepo.GetLatestVerified(normalized, strings.ToLower(strings.TrimSpace(purpose)))
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// PurgeExpired 清理过期且从未验证成功的验证码记录
func (s *VerificationService) PurgeExpired() (int64, error) {
	return s.codeRepo.PurgeExpired(s.now())
}

// dispatchVerifyCodeEmail 下发验证码邮件
// 发送失败只记录日志，不回滚签发
func (s *VerificationService) dispatchVerifyCodeEmail(email, code, purpose string) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueVerifyCodeEmail(queue.VerifyCodeEmailPayload{
			Email:   email,
			Code:    code,
			Purpose: purpose,
		})
		if err == nil {
			return
		}
		logger.Warnw("verify_code_email_enqueue_failed", "email", email, "purpose", purpose, "error", err)
	}
	if s.emailService == nil {
		logger.Warnw("verify_code_email_skipped", "email", email, "purpose", purpose, "reason", "email_service_not_configured")
		return
	}
	if err := s.emailService.SendVerifyCode(email, code, purpose); err != nil {
		logger.Warnw("verify_code_email_send_failed", "email", email, "purpose", purpose, "error", err)
	}
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func isVerifyPurposeSupported(purpose string) bool {
	switch strings.ToLower(strings.TrimSpace(purpose)) {
	case constants.VerifyPurposeRegister, constants.VerifyPurposeReset:
		return true
	default:
		return false
	}
}

func resolveExpireMinutes(cfg config.VerifyCodeConfig) int {
	if cfg.ExpireMinutes <= 0 {
		return 1440
	}
	return cfg.ExpireMinutes
}

func resolveSendIntervalSeconds(cfg config.VerifyCodeConfig) int {
	if cfg.SendIntervalSeconds <= 0 {
		return 60
	}
	return cfg.SendIntervalSeconds
}

func resolveMaxAttempts(cfg config.VerifyCodeConfig) int {
	if cfg.MaxAttempts <= 0 {
		return 3
	}
	return cfg.MaxAttempts
}

func resolveCodeLength(cfg config.VerifyCodeConfig) int {
	if cfg.Length < 4 || cfg.Length > 10 {
		return 6
	}
	return cfg.Length
}

func randomNumericCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String(), nil
}
