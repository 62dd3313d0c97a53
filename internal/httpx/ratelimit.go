package httpx

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Counter increments the hit count for key within the current window.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// KeyFunc picks the bucket a request is counted in.
type KeyFunc func(r *http.Request) string

// RateLimit rejects requests once a client exceeds limit hits per window.
// When the counter fails the request is let through. A nil key counts
// requests by their remote address.
func RateLimit(c Counter, limit int, key KeyFunc, logf func(string, ...interface{})) func(http.Handler) http.Handler {
	if key == nil {
		key = RemoteIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, err := c.Incr(r.Context(), key(r))
			if err != nil {
				if logf != nil {
					logf("[%s] rate limiter error: %v", RequestIDFromContext(r.Context()), err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(limit) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type MemoryCounter struct {
	window    time.Duration
	mu        sync.Mutex
	visitors  map[string]*visitor
	nextSweep time.Time
	now       func() time.Time
}

type visitor struct {
	count     int64
	resetTime time.Time
}

func NewMemoryCounter(window time.Duration) *MemoryCounter {
	return &MemoryCounter{window: window, visitors: map[string]*visitor{}, now: time.Now}
}

func (m *MemoryCounter) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.After(m.nextSweep) {
		m.sweep(now)
	}
	v := m.visitors[key]
	if v == nil || now.After(v.resetTime) {
		m.visitors[key] = &visitor{count: 1, resetTime: now.Add(m.window)}
		return 1, nil
	}
	v.count++
	return v.count, nil
}

// sweep drops expired windows. Callers hold m.mu.
func (m *MemoryCounter) sweep(now time.Time) {
	for k, v := range m.visitors {
		if now.After(v.resetTime) {
			delete(m.visitors, k)
		}
	}
	m.nextSweep = now.Add(m.window)
}

// RemoteIP is the address of the peer that opened the connection.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// ParseTrustedProxies accepts plain IPs and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", e)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// ClientIP reads X-Forwarded-For only when the peer is a trusted proxy, and
// then takes the right-most hop that is not itself trusted.
func ClientIP(trusted []*net.IPNet) KeyFunc {
	isTrusted := func(s string) bool {
		ip := net.ParseIP(s)
		if ip == nil {
			return false
		}
		for _, n := range trusted {
			if n.Contains(ip) {
				return true
			}
		}
		return false
	}
	return func(r *http.Request) string {
		peer := RemoteIP(r)
		if len(trusted) == 0 || !isTrusted(peer) {
			return peer
		}
		hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !isTrusted(hop) {
				return hop
			}
		}
		return peer
	}
}
