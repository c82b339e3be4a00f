package middleware

import (
	"strings"
	"sync"
	"time"
)

// ==================== LoginLimiter 登录限流器 ====================

// LoginLimiter 按用户名统计连续登录失败次数
// 连续失败达到 maxAttempts 次后锁定 lockout 时长，成功登录后清零
type LoginLimiter struct {
	maxAttempts int
	lockout     time.Duration
	now         func() time.Time

	entries sync.Map // key -> *attemptEntry
}

// attemptEntry 失败记录
type attemptEntry struct {
	mu          sync.Mutex
	failures    int
	lockedUntil time.Time
}

// NewLoginLimiter 创建登录限流器
func NewLoginLimiter(maxAttempts int, lockout time.Duration) *LoginLimiter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &LoginLimiter{
		maxAttempts: maxAttempts,
		lockout:     lockout,
		now:         time.Now,
	}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余锁定时间
}

// LoginKey 用户名不区分大小写
func LoginKey(username string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(username))
}

// Check 检查是否允许尝试登录
func (l *LoginLimiter) Check(key string) CheckResult {
	actual, ok := l.entries.Load(key)
	if !ok {
		return CheckResult{Allowed: true}
	}

	entry := actual.(*attemptEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if remaining := entry.lockedUntil.Sub(l.now()); remaining > 0 {
		return CheckResult{Allowed: false, RetryAfter: remaining}
	}
	return CheckResult{Allowed: true}
}

// Fail 记录一次失败，达到上限时开始锁定
func (l *LoginLimiter) Fail(key string) CheckResult {
	actual, _ := l.entries.LoadOrStore(key, &attemptEntry{})
	entry := actual.(*attemptEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := l.now()
	// 上一轮锁定已过期，重新计数
	if !entry.lockedUntil.IsZero() && !now.Before(entry.lockedUntil) {
		entry.failures = 0
		entry.lockedUntil = time.Time{}
	}

	entry.failures++
	if entry.failures >= l.maxAttempts {
		entry.lockedUntil = now.Add(l.lockout)
		return CheckResult{Allowed: false, RetryAfter: l.lockout}
	}
	return CheckResult{Allowed: true}
}

// Reset 登录成功后清除记录
func (l *LoginLimiter) Reset(key string) {
	l.entries.Delete(key)
}
