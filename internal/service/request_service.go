package service

import (
	"strings"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/logger"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/queue"
	"github.com/TanvirSEF/tracking-be/internal/repository"

	"gorm.io/gorm"
)

// RequestService 入驻申请服务
type RequestService struct {
	cfg           *config.Config
	requestRepo   repository.AffiliateRequestRepository
	userRepo      repository.UserRepository
	affiliateRepo repository.AffiliateRepository
	authService   *AuthService
	verification  *VerificationService
	emailService  *EmailService
	queueClient   *queue.Client

	now func() time.Time
}

// NewRequestService 创建入驻申请服务
func NewRequestService(
	cfg *config.Config,
	requestRepo repository.AffiliateRequestRepository,
	userRepo repository.UserRepository,
	affiliateRepo repository.AffiliateRepository,
	authService *AuthService,
	verification *VerificationService,
	emailService *EmailService,
	queueClient *queue.Client,
) *RequestService {
	return &RequestService{
		cfg:           cfg,
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		affiliateRepo: affiliateRepo,
		authService:   authService,
		verification:  verification,
		emailService:  emailService,
		queueClient:   queueClient,
		now:           time.Now,
	}
}

// SubmitRequestInput 提交申请输入
type SubmitRequestInput struct {
	LinkCode    string
	Name        string
	Email       string
	Password    string
	Location    string
	Language    string
	OnemoveLink string
	PuprimeLink string
}

// Submit 提交入驻申请
// 前置条件：注册链接码匹配、邮箱已验证、邮箱未被占用
func (s *RequestService) Submit(input SubmitRequestInput) (*models.AffiliateRequest, error) {
	registrationLink := strings.TrimSpace(s.cfg.Affiliate.RegistrationLink)
	if registrationLink != "" && strings.TrimSpace(input.LinkCode) != registrationLink {
		return nil, ErrRegistrationLinkInvalid
	}

	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	verified, err := s.verification.IsVerified(normalized, constants.VerifyPurposeRegister)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, ErrEmailNotVerified
	}

	exists, err := s.requestRepo.ExistsByEmailInStatuses(normalized, []string{
		constants.RequestStatusPending,
		constants.RequestStatusApproved,
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return nil, ErrEmailExists
	}

	if err := s.authService.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	request := &models.AffiliateRequest{
		Name:          strings.TrimSpace(input.Name),
		Email:         normalized,
		PasswordHash:  hash,
		Location:      strings.TrimSpace(input.Location),
		Language:      strings.TrimSpace(input.Language),
		OnemoveLink:   strings.TrimSpace(input.OnemoveLink),
		PuprimeLink:   strings.TrimSpace(input.PuprimeLink),
		EmailVerified: true,
		Status:        constants.RequestStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.requestRepo.Create(request); err != nil {
		return nil, err
	}
	return request, nil
}

// ReviewResult 审批结果
type ReviewResult struct {
	Request   *models.AffiliateRequest `json:"request"`
	Affiliate *models.Affiliate        `json:"affiliate,omitempty"`
}

// Review 审批申请
// 并发审批同一申请时，条件更新的抢占方生效，落败方收到已审批错误
func (s *RequestService) Review(requestID uint, approve bool, reason string, reviewerID uint) (*ReviewResult, error) {
	request, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	if request.Status != constants.RequestStatusPending {
		return nil, ErrRequestAlreadyReviewed
	}

	if approve {
		return s.approve(request, reviewerID)
	}
	return s.reject(request, reason, reviewerID)
}

func (s *RequestService) approve(request *models.AffiliateRequest, reviewerID uint) (*ReviewResult, error) {
	now := s.now()
	var affiliate *models.Affiliate

	err := s.requestRepo.Transaction(func(tx *gorm.DB) error {
		claimed, err := s.requestRepo.WithTx(tx).MarkReviewed(request.ID, constants.RequestStatusApproved, "", reviewerID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrRequestAlreadyReviewed
		}

		user := &models.User{
			Email:        request.Email,
			PasswordHash: request.PasswordHash,
			Name:         request.Name,
			Role:         constants.UserRoleAffiliate,
			Status:       constants.UserStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.userRepo.WithTx(tx).Create(user); err != nil {
			return err
		}

		affiliate = &models.Affiliate{
			UserID:      user.ID,
			RequestID:   request.ID,
			Name:        request.Name,
			Email:       request.Email,
			Location:    request.Location,
			Language:    request.Language,
			OnemoveLink: request.OnemoveLink,
			PuprimeLink: request.PuprimeLink,
			Status:      constants.AffiliateStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return allocateAffiliate(s.affiliateRepo.WithTx(tx), affiliate, s.cfg.Affiliate.LinkLength)
	})
	if err != nil {
		return nil, err
	}

	request.Status = constants.RequestStatusApproved
	request.ReviewedAt = &now
	request.ReviewedBy = &reviewerID
	s.dispatchDecisionEmail(request, true, "", affiliate.UniqueLink)

	return &ReviewResult{Request: request, Affiliate: affiliate}, nil
}

func (s *RequestService) reject(request *models.AffiliateRequest, reason string, reviewerID uint) (*ReviewResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = constants.RequestRejectReasonDefault
	}

	now := s.now()
	claimed, err := s.requestRepo.MarkReviewed(request.ID, constants.RequestStatusRejected, reason, reviewerID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrRequestAlreadyReviewed
	}

	request.Status = constants.RequestStatusRejected
	request.RejectReason = reason
	request.ReviewedAt = &now
	request.ReviewedBy = &reviewerID
	s.dispatchDecisionEmail(request, false, reason, "")

	return &ReviewResult{Request: request}, nil
}

// GetByID 查询申请详情
func (s *RequestService) GetByID(id uint) (*models.AffiliateRequest, error) {
	request, err := s.requestRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	return request, nil
}

// List 查询申请列表
func (s *RequestService) List(filter repository.AffiliateRequestListFilter) ([]models.AffiliateRequest, int64, error) {
	return s.requestRepo.List(filter)
}

// dispatchDecisionEmail 下发审批结果邮件
// 审批流转在事务提交后已不可逆，邮件失败只记录日志
func (s *RequestService) dispatchDecisionEmail(request *models.AffiliateRequest, approved bool, reason, uniqueLink string) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueRequestDecisionEmail(queue.RequestDecisionEmailPayload{
			Email:      request.Email,
			Name:       request.Name,
			Approved:   approved,
			Reason:     reason,
			UniqueLink: uniqueLink,
		})
		if err == nil {
			return
		}
		logger.Warnw("request_decision_email_enqueue_failed", "request_id", request.ID, "error", err)
	}
	if s.emailService == nil {
		return
	}
	err := s.emailService.SendRequestDecisionEmail(request.Email, RequestDecisionEmailInput{
		Name:       request.Name,
		Approved:   approved,
		Reason:     reason,
		UniqueLink: uniqueLink,
		BaseURL:    s.cfg.Affiliate.BaseURL,
	})
	if err != nil {
		logger.Warnw("request_decision_email_send_failed", "request_id", request.ID, "error", err)
	}
}
