package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"taskManagement/internal/logger"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const rateWindow = time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter - token bucket на каждый IP, rpm запросов в минуту.
// Клиенты без запросов дольше минуты удаляются: их корзина к этому времени снова полная.
type RateLimiter struct {
	rpm int
	now func() time.Time

	mtx      sync.Mutex
	visitors map[string]*visitor
	sweepAt  time.Time
}

type RateLimiterOption func(*RateLimiter)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) RateLimiterOption {
	return func(l *RateLimiter) {
		l.now = now
	}
}

func NewRateLimiter(rpm int, options ...RateLimiterOption) *RateLimiter {
	if rpm < 1 {
		rpm = 1
	}
	l := &RateLimiter{
		rpm:      rpm,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
	for _, opt := range options {
		opt(l)
	}
	l.sweepAt = l.now().Add(rateWindow)
	return l
}

// RateLimit ограничивает число запросов с одного IP в минуту; rpm <= 0 отключает лимит
func RateLimit(rpm int) func(http.Handler) http.Handler {
	if rpm <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return NewRateLimiter(rpm).Middleware
}

// Clients - число отслеживаемых IP
func (l *RateLimiter) Clients() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.visitors)
}

// allow списывает токен; при отказе возвращает время до следующего токена
func (l *RateLimiter) allow(ip string) (bool, int, time.Duration) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if !now.Before(l.sweepAt) {
		l.sweep(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(rateWindow/time.Duration(l.rpm)), l.rpm)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return true, int(math.Max(0, v.limiter.TokensAt(now))), 0
	}

	reservation := v.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return false, 0, delay
}

func (l *RateLimiter) sweep(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) >= rateWindow {
			delete(l.visitors, ip)
		}
	}
	l.sweepAt = now.Add(rateWindow)
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		ok, remaining, retryAfter := l.allow(ip)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			logger.Warn("HTTP: Превышен лимит запросов",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("client_ip", ip),
				zap.Int("retry_after", seconds))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeError(w, r, http.StatusTooManyRequests, "rate_limit_exceeded", "слишком много запросов, попробуйте позже")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
