package ratelimit

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter 速率限制器接口
type RateLimiter interface {
	Wait(ctx context.Context) error
	Allow() bool
}

// NewTokenBucket 每秒 perSecond 个令牌，桶容量 burst；perSecond <= 0 表示不限速
func NewTokenBucket(perSecond float64, burst int) RateLimiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Manager 按 endpoint 前缀分组限速，最长前缀匹配，未命中走默认桶
type Manager struct {
	mu       sync.RWMutex
	limiters map[string]RateLimiter
	fallback RateLimiter
}

func NewManager(fallback RateLimiter) *Manager {
	if fallback == nil {
		fallback = NewTokenBucket(0, 0)
	}
	return &Manager{limiters: map[string]RateLimiter{}, fallback: fallback}
}

// Set 为 endpoint 前缀注册独立的限速器
func (m *Manager) Set(prefix string, l RateLimiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limiters[prefix] = l
}

func (m *Manager) limiterFor(endpoint string) RateLimiter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best, bestLen := m.fallback, -1
	for prefix, l := range m.limiters {
		if strings.HasPrefix(endpoint, prefix) && len(prefix) > bestLen {
			best, bestLen = l, len(prefix)
		}
	}
	return best
}

// Wait 阻塞直到 endpoint 所属桶放行或 ctx 结束
func (m *Manager) Wait(ctx context.Context, endpoint string) error {
	return m.limiterFor(endpoint).Wait(ctx)
}

func (m *Manager) Allow(endpoint string) bool {
	return m.limiterFor(endpoint).Allow()
}
