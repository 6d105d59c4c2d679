// Package guard implements the admission-control middleware chain: rate
// limiting with audited fail-open, and signature-authenticated admin access
// backed by role grants.
package guard

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"solotto/application"
	"solotto/domain/entities"
	"solotto/domain/interfaces"
	"solotto/domain/utils"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const adminWalletKey contextKey = "admin_wallet"

// AdminRole is the role required for privileged endpoints
const AdminRole = "admin"

// Freshness window for signed admin requests
const (
	adminMessageMaxAge  = 5 * time.Minute
	adminMessageMaxSkew = 30 * time.Second
)

// AdminMessage builds the exact message an admin wallet must sign for a
// privileged request
func AdminMessage(method, path string, ts time.Time) string {
	return fmt.Sprintf("admin:%s:%s:%d", method, path, ts.Unix())
}

// AdminWallet returns the authenticated admin wallet stored by AdminAuth,
// or an empty string
func AdminWallet(ctx context.Context) string {
	wallet, _ := ctx.Value(adminWalletKey).(string)
	return wallet
}

func writeGuardError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// clientIdentifier picks the rate-limit key: the claimed wallet when one is
// offered, the client IP otherwise
func clientIdentifier(r *http.Request) string {
	if wallet := r.Header.Get("X-Wallet"); wallet != "" {
		return wallet
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit enforces the sliding-window limiter on each request. A degraded
// (fail-open) decision lets the request through but is recorded in the audit
// log so outage windows are visible afterwards.
func RateLimit(limiter interfaces.RateLimiter, uowFactory application.UnitOfWorkFactory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := clientIdentifier(r)

			allowed, degraded, err := limiter.Allow(r.Context(), identifier)
			if err != nil {
				log.WithError(err).Error("Rate limiter error, failing open")
				allowed, degraded = true, true
			}

			if degraded {
				auditFailOpen(r.Context(), uowFactory, identifier)
			}

			if !allowed {
				writeGuardError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// auditFailOpen records a degraded admission decision in its own short
// transaction. Best effort: losing the audit entry must not fail the request.
func auditFailOpen(ctx context.Context, uowFactory application.UnitOfWorkFactory, identifier string) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Error("Failed to begin audit transaction for fail-open")
		return
	}
	defer uow.Rollback()

	if err := uow.AuditLogRepository().Append(ctx, &entities.AuditEntry{
		Action:  entities.AuditActionRateLimitFailOpen,
		Details: map[string]any{"identifier": identifier},
	}); err != nil {
		log.WithError(err).Error("Failed to record fail-open audit entry")
		return
	}
	if err := uow.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit fail-open audit entry")
	}
}

// AdminAuth authenticates privileged requests. The caller signs
// AdminMessage(method, path, timestamp) with their wallet key and sends
// wallet, timestamp and signature in headers; the wallet must also hold the
// admin role.
func AdminAuth(uowFactory application.UnitOfWorkFactory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wallet := r.Header.Get("X-Admin-Wallet")
			tsHeader := r.Header.Get("X-Admin-Timestamp")
			sigHeader := r.Header.Get("X-Admin-Signature")
			if wallet == "" || tsHeader == "" || sigHeader == "" {
				writeGuardError(w, http.StatusUnauthorized, "authorization_error", "missing admin auth headers")
				return
			}

			unix, err := strconv.ParseInt(tsHeader, 10, 64)
			if err != nil {
				writeGuardError(w, http.StatusUnauthorized, "authorization_error", "invalid timestamp")
				return
			}
			ts := time.Unix(unix, 0)

			age := time.Since(ts)
			if age > adminMessageMaxAge || age < -adminMessageMaxSkew {
				writeGuardError(w, http.StatusUnauthorized, "authorization_error", "request outside freshness window")
				return
			}

			pubkey, err := utils.DecodeWallet(wallet)
			if err != nil || len(pubkey) != ed25519.PublicKeySize {
				writeGuardError(w, http.StatusUnauthorized, "authorization_error", "wallet is not a valid ed25519 public key")
				return
			}
			sig, err := utils.DecodeSignature(sigHeader)
			if err != nil || len(sig) != ed25519.SignatureSize {
				writeGuardError(w, http.StatusUnauthorized, "authorization_error", "malformed signature")
				return
			}

			message := AdminMessage(r.Method, r.URL.Path, ts)
			if !ed25519.Verify(ed25519.PublicKey(pubkey), []byte(message), sig) {
				writeGuardError(w, http.StatusUnauthorized, "authorization_error", "signature verification failed")
				return
			}

			hasRole, err := checkRole(r.Context(), uowFactory, wallet)
			if err != nil {
				log.WithError(err).Error("Failed to check admin role")
				writeGuardError(w, http.StatusInternalServerError, "persistence_error", "internal error")
				return
			}
			if !hasRole {
				writeGuardError(w, http.StatusForbidden, "authorization_error", "wallet does not hold the admin role")
				return
			}

			ctx := context.WithValue(r.Context(), adminWalletKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func checkRole(ctx context.Context, uowFactory application.UnitOfWorkFactory, wallet string) (bool, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	return uow.AdminRoleRepository().HasRole(ctx, wallet, AdminRole)
}
