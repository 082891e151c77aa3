package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/TanvirSEF/tracking-be/internal/models"
	"github.com/TanvirSEF/tracking-be/internal/repository"
)

const (
	defaultUniqueLinkLength = 20
	minUniqueLinkLength     = 16
	linkAllocateMaxRetry    = 8
)

// allocateAffiliate 生成唯一推广链接码并落库
// 唯一性由数据库唯一索引保证：碰撞时换码重试，重试耗尽视为运行环境异常
func allocateAffiliate(repo repository.AffiliateRepository, affiliate *models.Affiliate, linkLength int) error {
	if linkLength < minUniqueLinkLength {
		linkLength = defaultUniqueLinkLength
	}
	for i := 0; i < linkAllocateMaxRetry; i++ {
		link, err := generateUniqueLink(linkLength)
		if err != nil {
			return err
		}
		affiliate.UniqueLink = link
		if err := repo.Create(affiliate); err != nil {
			if isUniqueViolation(err) {
				affiliate.ID = 0
				continue
			}
			return err
		}
		return nil
	}
	return ErrLinkAllocationExhausted
}

func generateUniqueLink(length int) (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	var builder strings.Builder
	builder.Grow(length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
