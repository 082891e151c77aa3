package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// 登录失败计数器
// Redis 可用时用固定窗口计数，不可用时退化为进程内滑动窗口
// 登录成功后调用 ResetLoginAttempts 清零

var (
	localAttemptsMu sync.Mutex
	localAttempts   = map[string][]time.Time{}
)

func loginAttemptsKey(email string) string {
	return fmt.Sprintf("login:attempts:%s", email)
}

// LoginAttemptCount 获取窗口内的失败次数
func LoginAttemptCount(ctx context.Context, email string, window time.Duration) (int, error) {
	if Enabled() {
		val, err := redisClient.Get(ctx, buildKey(loginAttemptsKey(email))).Int()
		if err != nil {
			if err == redis.Nil {
				return 0, nil
			}
			return 0, err
		}
		return val, nil
	}
	return localLoginAttemptCount(email, window), nil
}

// RecordLoginFailure 追加一次失败记录
func RecordLoginFailure(ctx context.Context, email string, window time.Duration) error {
	if Enabled() {
		key := buildKey(loginAttemptsKey(email))
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			return err
		}
		if count == 1 {
			return redisClient.Expire(ctx, key, window).Err()
		}
		return nil
	}
	localAttemptsMu.Lock()
	defer localAttemptsMu.Unlock()
	localAttempts[email] = append(pruneAttempts(localAttempts[email], window), time.Now())
	return nil
}

// ResetLoginAttempts 清空失败记录
func ResetLoginAttempts(ctx context.Context, email string) error {
	if Enabled() {
		return redisClient.Del(ctx, buildKey(loginAttemptsKey(email))).Err()
	}
	localAttemptsMu.Lock()
	defer localAttemptsMu.Unlock()
	delete(localAttempts, email)
	return nil
}

func localLoginAttemptCount(email string, window time.Duration) int {
	localAttemptsMu.Lock()
	defer localAttemptsMu.Unlock()
	pruned := pruneAttempts(localAttempts[email], window)
	if len(pruned) == 0 {
		delete(localAttempts, email)
	} else {
		localAttempts[email] = pruned
	}
	return len(pruned)
}

func pruneAttempts(attempts []time.Time, window time.Duration) []time.Time {
	if len(attempts) == 0 {
		return nil
	}
	cutoff := time.Now().Add(-window)
	kept := attempts[:0]
	for _, at := range attempts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}
