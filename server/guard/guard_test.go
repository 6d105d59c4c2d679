package guard

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"solotto/application"
	"solotto/domain/entities"
	"solotto/domain/testhelpers"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGuardFactory(auditRepo *testhelpers.MockAuditLogRepository, roleRepo *testhelpers.MockAdminRoleRepository) application.UnitOfWorkFactory {
	return &application.FakeUnitOfWorkFactory{New: func() application.UnitOfWork {
		return &application.FakeUnitOfWork{
			AuditLog:   auditRepo,
			AdminRoles: roleRepo,
		}
	}}
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("allows within the limit", func(t *testing.T) {
		limiter := new(testhelpers.MockRateLimiter)
		auditRepo := new(testhelpers.MockAuditLogRepository)
		limiter.On("Allow", mock.Anything, "1.2.3.4").Return(true, false, nil)

		next, called := okHandler()
		handler := RateLimit(limiter, newGuardFactory(auditRepo, nil))(next)

		req := httptest.NewRequest(http.MethodGet, "/api/price", nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
		auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects over the limit", func(t *testing.T) {
		limiter := new(testhelpers.MockRateLimiter)
		auditRepo := new(testhelpers.MockAuditLogRepository)
		limiter.On("Allow", mock.Anything, "wallet-abc").Return(false, false, nil)

		next, called := okHandler()
		handler := RateLimit(limiter, newGuardFactory(auditRepo, nil))(next)

		// The claimed wallet takes precedence over the client IP
		req := httptest.NewRequest(http.MethodPost, "/api/purchases", nil)
		req.Header.Set("X-Wallet", "wallet-abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.False(t, *called)
	})

	t.Run("fails open and audits when the limiter errors", func(t *testing.T) {
		limiter := new(testhelpers.MockRateLimiter)
		auditRepo := new(testhelpers.MockAuditLogRepository)
		limiter.On("Allow", mock.Anything, mock.Anything).Return(false, false, errors.New("redis down"))

		var audited *entities.AuditEntry
		auditRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			audited = args.Get(1).(*entities.AuditEntry)
		}).Return(nil)

		next, called := okHandler()
		handler := RateLimit(limiter, newGuardFactory(auditRepo, nil))(next)

		req := httptest.NewRequest(http.MethodGet, "/api/price", nil)
		req.RemoteAddr = "9.8.7.6:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		// The request goes through, and the outage window is auditable
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
		require.NotNil(t, audited)
		assert.Equal(t, entities.AuditActionRateLimitFailOpen, audited.Action)
		assert.Equal(t, "9.8.7.6", audited.Details["identifier"])
	})

	t.Run("degraded decision from the limiter is audited", func(t *testing.T) {
		limiter := new(testhelpers.MockRateLimiter)
		auditRepo := new(testhelpers.MockAuditLogRepository)
		limiter.On("Allow", mock.Anything, mock.Anything).Return(true, true, nil)
		auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

		next, _ := okHandler()
		handler := RateLimit(limiter, newGuardFactory(auditRepo, nil))(next)

		req := httptest.NewRequest(http.MethodGet, "/api/price", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		auditRepo.AssertExpectations(t)
	})
}

// adminHeaders signs the admin message for a request and sets the auth headers
func adminHeaders(t *testing.T, req *http.Request, priv ed25519.PrivateKey, wallet string, ts time.Time) {
	t.Helper()

	message := AdminMessage(req.Method, req.URL.Path, ts)
	sig := ed25519.Sign(priv, []byte(message))

	req.Header.Set("X-Admin-Wallet", wallet)
	req.Header.Set("X-Admin-Timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("X-Admin-Signature", base58.Encode(sig))
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	wallet := base58.Encode(pub)

	t.Run("accepts a fresh signed request with the admin role", func(t *testing.T) {
		roleRepo := new(testhelpers.MockAdminRoleRepository)
		roleRepo.On("HasRole", mock.Anything, wallet, AdminRole).Return(true, nil)

		var seenWallet string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenWallet = AdminWallet(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		handler := AdminAuth(newGuardFactory(nil, roleRepo))(next)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", nil)
		adminHeaders(t, req, priv, wallet, time.Now())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, wallet, seenWallet)
	})

	t.Run("rejects missing headers", func(t *testing.T) {
		roleRepo := new(testhelpers.MockAdminRoleRepository)
		next, called := okHandler()
		handler := AdminAuth(newGuardFactory(nil, roleRepo))(next)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("rejects a stale timestamp", func(t *testing.T) {
		roleRepo := new(testhelpers.MockAdminRoleRepository)
		next, called := okHandler()
		handler := AdminAuth(newGuardFactory(nil, roleRepo))(next)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", nil)
		adminHeaders(t, req, priv, wallet, time.Now().Add(-6*time.Minute))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("rejects a signature over a different method or path", func(t *testing.T) {
		roleRepo := new(testhelpers.MockAdminRoleRepository)
		next, called := okHandler()
		handler := AdminAuth(newGuardFactory(nil, roleRepo))(next)

		// Signed for a different path
		ts := time.Now()
		message := AdminMessage(http.MethodPost, "/api/admin/referral-codes", ts)
		sig := ed25519.Sign(priv, []byte(message))

		req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", nil)
		req.Header.Set("X-Admin-Wallet", wallet)
		req.Header.Set("X-Admin-Timestamp", fmt.Sprintf("%d", ts.Unix()))
		req.Header.Set("X-Admin-Signature", base58.Encode(sig))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})

	t.Run("rejects a wallet without the admin role", func(t *testing.T) {
		roleRepo := new(testhelpers.MockAdminRoleRepository)
		roleRepo.On("HasRole", mock.Anything, wallet, AdminRole).Return(false, nil)

		next, called := okHandler()
		handler := AdminAuth(newGuardFactory(nil, roleRepo))(next)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", nil)
		adminHeaders(t, req, priv, wallet, time.Now())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, *called)
	})

	t.Run("rejects a signature from a different key", func(t *testing.T) {
		_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		roleRepo := new(testhelpers.MockAdminRoleRepository)
		next, called := okHandler()
		handler := AdminAuth(newGuardFactory(nil, roleRepo))(next)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/draws", nil)
		adminHeaders(t, req, otherPriv, wallet, time.Now())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, *called)
	})
}

func TestAdminMessage(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1_700_000_000, 0)
	assert.Equal(t, "admin:POST:/api/admin/draws:1700000000", AdminMessage("POST", "/api/admin/draws", ts))
}
