package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"lojaesportiva/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowEntry tracks request counts for one key within a fixed window.
type windowEntry struct {
	count     int
	windowEnd time.Time
}

// WindowLimiter counts requests per client IP in fixed windows.
type WindowLimiter struct {
	limit  int
	window time.Duration
	msg    string
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*windowEntry
}

func NewWindowLimiter(limit int, window time.Duration, msg string) *WindowLimiter {
	return &WindowLimiter{
		limit:   limit,
		window:  window,
		msg:     msg,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// allow records one hit for key and reports whether it is within the limit,
// plus how long until the window resets.
func (l *WindowLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd.Sub(now)
}

// Purge drops expired entries so IPs that never return do not pile up.
func (l *WindowLimiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	purged := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			purged++
		}
	}
	return purged
}

// Middleware rejects requests over the limit with 429 and Retry-After.
func (l *WindowLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, reset := l.allow(c.ClientIP())
		if !ok {
			secs := int(reset.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() *WindowLimiter {
	return NewWindowLimiter(20, time.Minute, "Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// RateLimiter is the general API limiter.
func RateLimiter(limit int, window time.Duration) *WindowLimiter {
	return NewWindowLimiter(limit, window, "Muitas requisições. Tente novamente em instantes.")
}

const purgeInterval = 5 * time.Minute

// RunPurger purges every limiter on a ticker until stop is closed.
func RunPurger(stop <-chan struct{}, limiters ...*WindowLimiter) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			total := 0
			for _, l := range limiters {
				total += l.Purge()
			}
			if total > 0 {
				log.Debug().Int("entries_purged", total).Msg("rate limiter maps purged")
			}
		}
	}
}
