package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupVerifyCodeRepoTest(t *testing.T) (*GormEmailVerifyCodeRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:verify_code_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.EmailVerifyCode{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewEmailVerifyCodeRepository(db), db
}

func seedVerifyCode(t *testing.T, repo *GormEmailVerifyCodeRepository, email, code string, sentAt time.Time) *models.EmailVerifyCode {
	t.Helper()
	record := &models.EmailVerifyCode{
		Email:     email,
		Purpose:   "register",
		Code:      code,
		ExpiresAt: sentAt.Add(24 * time.Hour),
		SentAt:    sentAt,
	}
	if err := repo.Create(record); err != nil {
		t.Fatalf("create verify code failed: %v", err)
	}
	return record
}

func TestGetActiveReturnsLatestUnconsumed(t *testing.T) {
	repo, _ := setupVerifyCodeRepoTest(t)
	base := time.Now()
	seedVerifyCode(t, repo, "a@example.com", "111111", base)
	latest := seedVerifyCode(t, repo, "a@example.com", "222222", base.Add(time.Minute))

	record, err := repo.GetActive("a@example.com", "register")
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if record == nil || record.ID != latest.ID {
		t.Fatalf("expected latest record, got %+v", record)
	}
}

func TestConsumeActiveRetainsRows(t *testing.T) {
	repo, db := setupVerifyCodeRepoTest(t)
	base := time.Now()
	seedVerifyCode(t, repo, "b@example.com", "111111", base)
	seedVerifyCode(t, repo, "b@example.com", "222222", base.Add(time.Minute))

	if err := repo.ConsumeActive("b@example.com", "register", base.Add(2*time.Minute)); err != nil {
		t.Fatalf("consume failed: %v", err)
	}

	record, err := repo.GetActive("b@example.com", "register")
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if record != nil {
		t.Fatalf("no active record expected, got %+v", record)
	}

	var total int64
	if err := db.Model(&models.EmailVerifyCode{}).Where("email = ?", "b@example.com").Count(&total).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("consumed rows must be retained, want 2 got %d", total)
	}
}

func TestIncrementAttemptStopsAtBudget(t *testing.T) {
	repo, db := setupVerifyCodeRepoTest(t)
	record := seedVerifyCode(t, repo, "c@example.com", "111111", time.Now())

	for i := 0; i < 3; i++ {
		ok, err := repo.IncrementAttempt(record.ID, 3)
		if err != nil {
			t.Fatalf("increment %d failed: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("increment %d should succeed within budget", i+1)
		}
	}

	ok, err := repo.IncrementAttempt(record.ID, 3)
	if err != nil {
		t.Fatalf("increment over budget failed: %v", err)
	}
	if ok {
		t.Fatalf("increment beyond budget must report false")
	}

	var reloaded models.EmailVerifyCode
	if err := db.First(&reloaded, record.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.AttemptCount != 3 {
		t.Fatalf("attempt count must stay at budget, got %d", reloaded.AttemptCount)
	}
}

func TestMarkVerifiedSetsBothTimestamps(t *testing.T) {
	repo, db := setupVerifyCodeRepoTest(t)
	record := seedVerifyCode(t, repo, "d@example.com", "111111", time.Now())

	verifiedAt := time.Now()
	if err := repo.MarkVerified(record.ID, verifiedAt); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}

	var reloaded models.EmailVerifyCode
	if err := db.First(&reloaded, record.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.VerifiedAt == nil || reloaded.ConsumedAt == nil {
		t.Fatalf("verified and consumed timestamps must both be set: %+v", reloaded)
	}

	verified, err := repo.GetLatestVerified("d@example.com", "register")
	if err != nil {
		t.Fatalf("get latest verified failed: %v", err)
	}
	if verified == nil || verified.ID != record.ID {
		t.Fatalf("expected verified record, got %+v", verified)
	}
}

func TestPurgeExpiredSkipsVerified(t *testing.T) {
	repo, db := setupVerifyCodeRepoTest(t)
	base := time.Now().Add(-48 * time.Hour)
	expired := seedVerifyCode(t, repo, "e@example.com", "111111", base)
	verified := seedVerifyCode(t, repo, "e@example.com", "222222", base.Add(time.Minute))
	if err := repo.MarkVerified(verified.ID, base.Add(2*time.Minute)); err != nil {
		t.Fatalf("mark verified failed: %v", err)
	}
	fresh := seedVerifyCode(t, repo, "e@example.com", "333333", time.Now())

	purged, err := repo.PurgeExpired(time.Now())
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged want 1 got %d", purged)
	}

	var remaining []models.EmailVerifyCode
	if err := db.Where("email = ?", "e@example.com").Find(&remaining).Error; err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining rows want 2 got %d", len(remaining))
	}
	for _, r := range remaining {
		if r.ID == expired.ID {
			t.Fatalf("expired unverified row should have been purged")
		}
		if r.ID != verified.ID && r.ID != fresh.ID {
			t.Fatalf("unexpected surviving row: %+v", r)
		}
	}
}
