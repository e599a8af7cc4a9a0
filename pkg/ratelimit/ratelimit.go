package ratelimit

import (
	"sync"
	"time"

	"skillnet/config"
	"skillnet/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter 按客户端标识限流（令牌桶）
type Limiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// New 创建限流器，perSecond<=0 时不限流
func New(cfg config.RateLimitConfig) *Limiter {
	limit := rate.Limit(cfg.LoginPerSecond)
	if cfg.LoginPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.LoginBurst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limit:   limit,
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Allow 判断该客户端本次请求是否放行
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Cleanup 清理长时间未出现的客户端
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idleTTL)
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Size 当前跟踪的客户端数量
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Middleware gin中间件，按客户端IP限流
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			response.TooManyRequests(c, "too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
