package server

import (
	"net"
	"sync"
	"time"
)

// RateLimitConfig holds connection rate limiting configuration.
type RateLimitConfig struct {
	MaxConnections int           // Connections allowed per IP per window; 0 disables limiting
	Window         time.Duration // Sliding window length (default: 1 minute)
}

// DefaultRateLimitConfig returns the default rate limiting configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxConnections: 30,
		Window:         time.Minute,
	}
}

// rateLimiter implements a sliding window limit on new connections per IP.
type rateLimiter struct {
	mu     sync.Mutex
	config RateLimitConfig

	// attempts tracks connection timestamps per IP
	attempts map[string][]time.Time

	now func() time.Time
}

// newRateLimiter creates a new rate limiter with the given configuration.
func newRateLimiter(config RateLimitConfig) *rateLimiter {
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	return &rateLimiter{
		config:   config,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// checkResult represents the result of a rate limit check.
type checkResult struct {
	Allowed    bool
	RetryAfter time.Duration // How long until the client can connect again
	Attempts   int           // Connections in the current window, including this one if allowed
}

// check records a connection attempt from ip and reports whether it may proceed.
func (rl *rateLimiter) check(ip string) checkResult {
	if rl.config.MaxConnections <= 0 {
		return checkResult{Allowed: true}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.prune(ip, now.Add(-rl.config.Window))

	if len(valid) >= rl.config.MaxConnections {
		retryAfter := valid[0].Add(rl.config.Window).Sub(now)
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		return checkResult{
			Allowed:    false,
			RetryAfter: retryAfter,
			Attempts:   len(valid),
		}
	}

	rl.attempts[ip] = append(valid, now)
	return checkResult{
		Allowed:  true,
		Attempts: len(valid) + 1,
	}
}

// prune drops timestamps at or before windowStart and returns what is left.
func (rl *rateLimiter) prune(ip string, windowStart time.Time) []time.Time {
	timestamps := rl.attempts[ip]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

// cleanup removes IPs with no attempts inside the window.
// Should be called periodically.
func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Add(-rl.config.Window)
	for ip := range rl.attempts {
		rl.prune(ip, windowStart)
	}
}

// tracked returns the number of IPs with recent attempts.
func (rl *rateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.attempts)
}

// extractIP returns the host part of a remote address.
func extractIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	return hostOnly(addr.String())
}

// hostOnly strips the port from host:port, returning s unchanged when it has none.
func hostOnly(s string) string {
	host, _, err := net.SplitHostPort(s)
	if err != nil {
		return s
	}
	return host
}
