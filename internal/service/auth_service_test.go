package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/config"
	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate user failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-for-auth-service"
	cfg.JWT.ExpireHours = 24
	cfg.Security.LoginRateLimit.WindowSeconds = 900
	cfg.Security.LoginRateLimit.MaxAttempts = 5
	return NewAuthService(cfg, repository.NewUserRepository(db)), db
}

func createUserForTest(t *testing.T, db *gorm.DB, email, password, status string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "测试用户",
		Role:         constants.UserRoleAffiliate,
		Status:       status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createUserForTest(t, db, "login-ok@example.com", "passw0rd", constants.UserStatusActive)

	user, token, expiresAt, err := svc.Login("Login-OK@example.com", "passw0rd")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user == nil || user.Email != "login-ok@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token == "" {
		t.Fatalf("token should not be empty")
	}
	if !expiresAt.After(time.Now().Add(23 * time.Hour)) {
		t.Fatalf("expiresAt too early: %v", expiresAt)
	}
	if user.LastLoginAt == nil {
		t.Fatalf("last login time should be set")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.Role != constants.UserRoleAffiliate {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createUserForTest(t, db, "login-wrong-pass@example.com", "passw0rd", constants.UserStatusActive)

	if _, _, _, err := svc.Login("login-wrong-pass@example.com", "not-the-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	if _, _, _, err := svc.Login("login-nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginMalformedEmail(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	if _, _, _, err := svc.Login("not-an-email", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginDisabledUser(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createUserForTest(t, db, "login-disabled@example.com", "passw0rd", constants.UserStatusDisabled)

	if _, _, _, err := svc.Login("login-disabled@example.com", "passw0rd"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestLoginDisabledUserWrongPassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createUserForTest(t, db, "login-disabled-probe@example.com", "passw0rd", constants.UserStatusDisabled)

	// 错误口令不暴露账号被禁用，且照常占用失败额度
	for i := 0; i < 5; i++ {
		if _, _, _, err := svc.Login("login-disabled-probe@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if _, _, _, err := svc.Login("login-disabled-probe@example.com", "wrong"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
}

func TestLoginRateLimitBlocksBeforeLookup(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createUserForTest(t, db, "login-limited@example.com", "passw0rd", constants.UserStatusActive)

	for i := 0; i < 5; i++ {
		if _, _, _, err := svc.Login("login-limited@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	// 额度耗尽后即使密码正确也被拒绝
	if _, _, _, err := svc.Login("login-limited@example.com", "passw0rd"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
}

func TestLoginUnknownEmailConsumesQuota(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	for i := 0; i < 5; i++ {
		if _, _, _, err := svc.Login("login-ghost@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if _, _, _, err := svc.Login("login-ghost@example.com", "wrong"); !errors.Is(err, ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createUserForTest(t, db, "login-reset@example.com", "passw0rd", constants.UserStatusActive)

	for i := 0; i < 4; i++ {
		if _, _, _, err := svc.Login("login-reset@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
	if _, _, _, err := svc.Login("login-reset@example.com", "passw0rd"); err != nil {
		t.Fatalf("login within quota should succeed: %v", err)
	}
	// 成功登录清零失败计数，后续失败重新累计
	if _, _, _, err := svc.Login("login-reset@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials after reset, got %v", err)
	}
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createUserForTest(t, db, "login-jwt@example.com", "passw0rd", constants.UserStatusActive)

	token, _, err := svc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	other := *svc.cfg
	other.JWT.SecretKey = "a-completely-different-secret"
	otherSvc := NewAuthService(&other, svc.userRepo)
	if _, err := otherSvc.ParseJWT(token); err == nil {
		t.Fatalf("token signed with another secret should be rejected")
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	if err := svc.ValidatePassword("abc"); err != nil {
		t.Fatalf("empty policy should accept any password: %v", err)
	}

	svc.cfg.Security.PasswordPolicy.MinLength = 8
	if err := svc.ValidatePassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ValidatePassword("longenough"); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
}
