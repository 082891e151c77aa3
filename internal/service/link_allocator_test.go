package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/TanvirSEF/tracking-be/internal/constants"
	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupLinkAllocatorTest(t *testing.T) (*repository.GormAffiliateRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:link_allocator_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Affiliate{}); err != nil {
		t.Fatalf("migrate affiliate failed: %v", err)
	}
	return repository.NewAffiliateRepository(db), db
}

func TestGenerateUniqueLinkLengthAndAlphabet(t *testing.T) {
	link, err := generateUniqueLink(20)
	if err != nil {
		t.Fatalf("generate link failed: %v", err)
	}
	if len(link) != 20 {
		t.Fatalf("link length want 20 got %d", len(link))
	}
	for _, r := range link {
		isLower := r >= 'a' && r <= 'z'
		isUpper := r >= 'A' && r <= 'Z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isUpper && !isDigit {
			t.Fatalf("link contains invalid rune %q", r)
		}
	}
}

func TestAllocateAffiliateEnforcesMinLength(t *testing.T) {
	repo, _ := setupLinkAllocatorTest(t)
	affiliate := &models.Affiliate{
		UserID:    1,
		RequestID: 1,
		Email:     "a@example.com",
		Status:    constants.AffiliateStatusActive,
	}
	if err := allocateAffiliate(repo, affiliate, 4); err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if len(affiliate.UniqueLink) != defaultUniqueLinkLength {
		t.Fatalf("short length should fall back to default, got %d", len(affiliate.UniqueLink))
	}
}

func TestAllocateAffiliateConcurrentDistinctLinks(t *testing.T) {
	repo, db := setupLinkAllocatorTest(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// 并发分配依赖唯一索引去重，冲突时换码重试
	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seq uint) {
			defer wg.Done()
			affiliate := &models.Affiliate{
				UserID:    seq,
				RequestID: seq,
				Email:     fmt.Sprintf("worker-%d@example.com", seq),
				Status:    constants.AffiliateStatusActive,
			}
			errs <- allocateAffiliate(repo, affiliate, 20)
		}(uint(i + 1))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent allocate failed: %v", err)
		}
	}

	var affiliates []models.Affiliate
	if err := db.Find(&affiliates).Error; err != nil {
		t.Fatalf("load affiliates failed: %v", err)
	}
	if len(affiliates) != workers {
		t.Fatalf("affiliates want %d got %d", workers, len(affiliates))
	}
	seen := make(map[string]bool, workers)
	for _, a := range affiliates {
		if seen[a.UniqueLink] {
			t.Fatalf("duplicate link allocated: %s", a.UniqueLink)
		}
		seen[a.UniqueLink] = true
	}
}

func TestAllocateAffiliateRetriesOnCollision(t *testing.T) {
	affiliate := &models.Affiliate{UserID: 1, RequestID: 1}
	repo := &collisionAffiliateRepo{failures: 3}
	if err := allocateAffiliate(repo, affiliate, 20); err != nil {
		t.Fatalf("allocate should survive collisions: %v", err)
	}
	if repo.attempts != 4 {
		t.Fatalf("attempts want 4 got %d", repo.attempts)
	}
	if affiliate.UniqueLink == "" {
		t.Fatalf("link should be set after retry")
	}
}

func TestAllocateAffiliateExhaustsRetries(t *testing.T) {
	affiliate := &models.Affiliate{UserID: 1, RequestID: 1}
	repo := &collisionAffiliateRepo{failures: linkAllocateMaxRetry + 1}
	if err := allocateAffiliate(repo, affiliate, 20); !errors.Is(err, ErrLinkAllocationExhausted) {
		t.Fatalf("expected ErrLinkAllocationExhausted, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(errors.New("UNIQUE constraint failed: affiliates.unique_link")) {
		t.Fatalf("sqlite unique violation should match")
	}
	if !isUniqueViolation(errors.New(`duplicate key value violates unique constraint "idx_affiliates_unique_link"`)) {
		t.Fatalf("postgres duplicate key should match")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Fatalf("unrelated error should not match")
	}
	if isUniqueViolation(nil) {
		t.Fatalf("nil should not match")
	}
}

// collisionAffiliateRepo 模拟唯一索引冲突的仓库
type collisionAffiliateRepo struct {
	failures int
	attempts int
}

func (r *collisionAffiliateRepo) WithTx(tx *gorm.DB) repository.AffiliateRepository { return r }

func (r *collisionAffiliateRepo) Create(affiliate *models.Affiliate) error {
	r.attempts++
	if r.attempts <= r.failures {
		return errors.New("UNIQUE constraint failed: affiliates.unique_link")
	}
	affiliate.ID = uint(r.attempts)
	return nil
}

func (r *collisionAffiliateRepo) GetByID(id uint) (*models.Affiliate, error)         { return nil, nil }
func (r *collisionAffiliateRepo) GetByUserID(userID uint) (*models.Affiliate, error) { return nil, nil }
func (r *collisionAffiliateRepo) GetByRequestID(requestID uint) (*models.Affiliate, error) {
	return nil, nil
}
func (r *collisionAffiliateRepo) GetByUniqueLink(link string) (*models.Affiliate, error) {
	return nil, nil
}
func (r *collisionAffiliateRepo) UpdateStatus(id uint, status string, updatedAt time.Time) error {
	return nil
}
func (r *collisionAffiliateRepo) List(filter repository.AffiliateListFilter) ([]models.Affiliate, int64, error) {
	return nil, 0, nil
}
