package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRequestServiceTest(t *testing.T) (*RequestService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:request_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.EmailVerifyCode{}, &models.AffiliateRequest{}, &models.Affiliate{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Affiliate.RegistrationLink = "join-code"
	cfg.Affiliate.LinkLength = 20
	cfg.Email.VerifyCode.ExpireMinutes = 1440
	cfg.Email.VerifyCode.MaxAttempts = 3
	cfg.Email.VerifyCode.Length = 6
	cfg.Email.VerifyCode.SendIntervalSeconds = 60

	userRepo := repository.NewUserRepository(db)
	authService := NewAuthService(cfg, userRepo)
	verification := NewVerificationService(cfg, repository.NewEmailVerifyCodeRepository(db), nil, nil)
	svc := NewRequestService(
		cfg,
		repository.NewAffiliateRequestRepository(db),
		userRepo,
		repository.NewAffiliateRepository(db),
		authService,
		verification,
		nil,
		nil,
	)
	return svc, db
}

func verifyEmailForTest(t *testing.T, svc *RequestService, db *gorm.DB, email string) {
	t.Helper()
	if err := svc.verification.IssueCode(email, constants.VerifyPurposeRegister); err != nil {
		t.Fatalf("issue code failed: %v", err)
	}
	var record models.EmailVerifyCode
	if err := db.Where("email = ?", email).Order("id DESC").First(&record).Error; err != nil {
		t.Fatalf("load code failed: %v", err)
	}
	if err := svc.verification.VerifyCode(email, constants.VerifyPurposeRegister, record.Code); err != nil {
		t.Fatalf("verify code failed: %v", err)
	}
}

func submitRequestForTest(t *testing.T, svc *RequestService, db *gorm.DB, email string) *models.AffiliateRequest {
	t.Helper()
	verifyEmailForTest(t, svc, db, email)
	request, err := svc.Submit(SubmitRequestInput{
		LinkCode: "join-code",
		Name:     "Applicant",
		Email:    email,
		Password: "secret-pass-1",
		Location: "Singapore",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return request
}

func TestSubmitRejectsWrongLinkCode(t *testing.T) {
	svc, _ := setupRequestServiceTest(t)
	_, err := svc.Submit(SubmitRequestInput{
		LinkCode: "wrong-code",
		Email:    "user@example.com",
		Password: "secret-pass-1",
	})
	if !errors.Is(err, ErrRegistrationLinkInvalid) {
		t.Fatalf("expected ErrRegistrationLinkInvalid, got %v", err)
	}
}

func TestSubmitRequiresVerifiedEmail(t *testing.T) {
	svc, _ := setupRequestServiceTest(t)
	_, err := svc.Submit(SubmitRequestInput{
		LinkCode: "join-code",
		Email:    "user@example.com",
		Password: "secret-pass-1",
	})
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	svc, db := setupRequestServiceTest(t)
	request := submitRequestForTest(t, svc, db, "user@example.com")

	if request.Status != constants.RequestStatusPending {
		t.Fatalf("status want pending got %s", request.Status)
	}
	if request.PasswordHash == "" || request.PasswordHash == "secret-pass-1" {
		t.Fatalf("password should be stored hashed")
	}
	if !request.EmailVerified {
		t.Fatalf("request should record email verification")
	}
}

func TestSubmitRejectsDuplicatePendingEmail(t *testing.T) {
	svc, db := setupRequestServiceTest(t)
	submitRequestForTest(t, svc, db, "user@example.com")

	_, err := svc.Submit(SubmitRequestInput{
		LinkCode: "join-code",
		Email:    "user@example.com",
		Password: "secret-pass-1",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestSubmitAllowsResubmitAfterRejection(t *testing.T) {
	svc, db := setupRequestServiceTest(t)
	request := submitRequestForTest(t, svc, db, "user@example.com")

	if _, err := svc.Review(request.ID, false, "incomplete details", 1); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if _, err := svc.Submit(SubmitRequestInput{
		LinkCode: "join-code",
		Name:     "Applicant",
		Email:    "user@example.com",
		Password: "secret-pass-1",
	}); err != nil {
		t.Fatalf("resubmit after rejection should pass, got %v", err)
	}
}

func TestReviewApproveCreatesUserAndAffiliate(t *testing.T) {
	svc, db := setupRequestServiceTest(t)
	request := submitRequestForTest(t, svc, db, "user@example.com")

	result, err := svc.Review(request.ID, true, "", 7)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if result.Request.Status != constants.RequestStatusApproved {
		t.Fatalf("request status want approved got %s", result.Request.Status)
	}
	if result.Affiliate == nil {
		t.Fatalf("approve should return affiliate")
	}
	if len(result.Affiliate.UniqueLink) < 16 {
		t.Fatalf("unique link too short: %s", result.Affiliate.UniqueLink)
	}

	var user models.User
	if err := db.Where("email = ?", "user@example.com").First(&user).Error; err != nil {
		t.Fatalf("approved user should exist: %v", err)
	}
	if user.Role != constants.UserRoleAffiliate {
		t.Fatalf("user role want affiliate got %s", user.Role)
	}
	if user.PasswordHash != request.PasswordHash {
		t.Fatalf("user should reuse the hash captured at submission")
	}

	var affiliate models.Affiliate
	if err := db.Where("request_id = ?", request.ID).First(&affiliate).Error; err != nil {
		t.Fatalf("affiliate should exist: %v", err)
	}
	if affiliate.UserID != user.ID {
		t.Fatalf("affiliate should link to created user")
	}
}

func TestReviewRejectDefaultsReason(t *testing.T) {
	svc, db := setupRequestServiceTest(t)
	request := submitRequestForTest(t, svc, db, "user@example.com")

	result, err := svc.Review(request.ID, false, "  ", 7)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if result.Request.RejectReason != constants.RequestRejectReasonDefault {
		t.Fatalf("reject reason want default got %s", result.Request.RejectReason)
	}
	if result.Affiliate != nil {
		t.Fatalf("reject must not create affiliate")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "user@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count users failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("reject must not create user")
	}
}

func TestReviewTwiceReturnsAlreadyReviewed(t *testing.T) {
	svc, db := setupRequestServiceTest(t)
	request := submitRequestForTest(t, svc, db, "user@example.com")

	if _, err := svc.Review(request.ID, true, "", 7); err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if _, err := svc.Review(request.ID, false, "changed my mind", 7); !errors.Is(err, ErrRequestAlreadyReviewed) {
		t.Fatalf("expected ErrRequestAlreadyReviewed, got %v", err)
	}
}

func TestReviewConcurrentApproveSingleWinner(t *testing.T) {
	svc, db := setupRequestServiceTest(t)
	request := submitRequestForTest(t, svc, db, "user@example.com")

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// 并发审批同一申请，条件更新只允许一方抢占
	const reviewers = 4
	results := make(chan error, reviewers)
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(reviewerID uint) {
			defer wg.Done()
			_, err := svc.Review(request.ID, true, "", reviewerID)
			results <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrRequestAlreadyReviewed):
			losses++
		default:
			t.Fatalf("unexpected review error: %v", err)
		}
	}
	if wins != 1 || losses != reviewers-1 {
		t.Fatalf("wins want 1 got %d, losses want %d got %d", wins, reviewers-1, losses)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Where("email = ?", "user@example.com").Count(&userCount).Error; err != nil {
		t.Fatalf("count users failed: %v", err)
	}
	if userCount != 1 {
		t.Fatalf("exactly one user must be created, got %d", userCount)
	}
	var affiliateCount int64
	if err := db.Model(&models.Affiliate{}).Where("request_id = ?", request.ID).Count(&affiliateCount).Error; err != nil {
		t.Fatalf("count affiliates failed: %v", err)
	}
	if affiliateCount != 1 {
		t.Fatalf("exactly one affiliate must be created, got %d", affiliateCount)
	}
}

func TestReviewMissingRequest(t *testing.T) {
	svc, _ := setupRequestServiceTest(t)
	if _, err := svc.Review(999, true, "", 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
