package security

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	consoleerrors "channel-console/internal/common/errors"

	"github.com/gin-gonic/gin"
)

const csrfHeader = "X-CSRF-Token"

// CSRFManager issues tokens that state-changing console requests must echo
// back in the X-CSRF-Token header.
type CSRFManager struct {
	tokens map[string]time.Time
	mutex  sync.RWMutex
	ttl    time.Duration
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCSRFManager issues tokens valid for ttl, 24h when unset.
func NewCSRFManager(ttl time.Duration) *CSRFManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	manager := &CSRFManager{
		tokens: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	go manager.cleanupExpiredTokens()

	return manager
}

// GenerateToken returns a new token, or "" if the random source fails.
func (m *CSRFManager) GenerateToken() string {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return ""
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)

	m.mutex.Lock()
	m.tokens[token] = m.now().Add(m.ttl)
	m.mutex.Unlock()

	return token
}

// ValidateToken reports whether token was issued and has not expired.
// Tokens are reusable until they expire.
func (m *CSRFManager) ValidateToken(token string) bool {
	if token == "" {
		return false
	}

	m.mutex.RLock()
	expiry, exists := m.tokens[token]
	m.mutex.RUnlock()

	if !exists {
		return false
	}

	if m.now().After(expiry) {
		m.mutex.Lock()
		delete(m.tokens, token)
		m.mutex.Unlock()
		return false
	}

	return true
}

// Stop ends the cleanup goroutine.
func (m *CSRFManager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *CSRFManager) cleanupExpiredTokens() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}
		now := m.now()
		m.mutex.Lock()
		for token, expiry := range m.tokens {
			if now.After(expiry) {
				delete(m.tokens, token)
			}
		}
		m.mutex.Unlock()
	}
}

// Middleware rejects unsafe requests without a valid token.
func (m *CSRFManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if !m.ValidateToken(c.GetHeader(csrfHeader)) {
			err := consoleerrors.NewConsoleError(consoleerrors.ErrorTypeValidation, "CSRF_INVALID", "CSRF token invalid or missing")
			c.AbortWithStatusJSON(http.StatusForbidden, consoleerrors.ToHTTPError(err))
			return
		}

		c.Next()
	}
}
