// Package auth gates mutating operations behind the single registered
// operator: TOTP login, signed session tokens, and cache-backed
// revocation.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwhitfield/atelier/internal/fault"
	"github.com/jwhitfield/atelier/internal/store"
	"github.com/jwhitfield/atelier/internal/token"
)

// SessionTTL bounds both the token's exp claim and the cache entry, so
// the two expire together.
const SessionTTL = 7 * 24 * time.Hour

// SessionCache is the allow-list of live tokens, keyed by operator name.
type SessionCache interface {
	Set(key, value string, ttl time.Duration)
	Get(key string) (string, bool)
	Delete(key string)
}

type Service struct {
	operators *store.OperatorStore
	cache     SessionCache
	signer    *token.Signer
	logger    *slog.Logger
}

func NewService(operators *store.OperatorStore, cache SessionCache, signer *token.Signer, logger *slog.Logger) *Service {
	return &Service{
		operators: operators,
		cache:     cache,
		signer:    signer,
		logger:    logger,
	}
}

func cacheKey(name string) string { return "session:" + name }

// Login verifies a one-time code and mints a session token. The cache
// entry is overwritten, so only the most recent login is live. All
// failure paths return the same generic message to avoid leaking whether
// an operator is registered at all.
func (s *Service) Login(ctx context.Context, code string) (string, error) {
	op, err := s.operators.Get()
	if err != nil {
		return "", fault.Database("login failed", err)
	}
	if op == nil {
		s.logger.Warn("login attempt with no registered operator")
		return "", fault.Authf("Invalid TOTP code")
	}

	if !s.verifyCode(op.ID, op.TOTPSecret, code) {
		s.logger.Warn("login rejected", "operator", op.Name)
		return "", fault.Authf("Invalid TOTP code")
	}

	tok, err := s.signer.Sign(op.Name, SessionTTL)
	if err != nil {
		return "", fmt.Errorf("mint session token: %w", err)
	}

	s.cache.Set(cacheKey(op.Name), tok, SessionTTL)
	s.logger.Info("operator logged in", "operator", op.Name)
	return tok, nil
}

// verifyCode accepts a current TOTP code (with one time-step of drift in
// either direction) or an unused recovery code, which is consumed on
// match.
func (s *Service) verifyCode(operatorID int64, secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err == nil && ok {
		return true
	}

	codes, err := s.operators.ListUnusedRecoveryCodes(operatorID)
	if err != nil {
		s.logger.Error("list recovery codes", "error", err)
		return false
	}
	for _, rc := range codes {
		if bcrypt.CompareHashAndPassword([]byte(rc.CodeHash), []byte(code)) == nil {
			if err := s.operators.MarkRecoveryCodeUsed(rc.ID); err != nil {
				s.logger.Error("mark recovery code used", "error", err)
				return false
			}
			s.logger.Info("recovery code consumed", "code_id", rc.ID)
			return true
		}
	}
	return false
}

// Logout revokes the presented session. Verification failures are logged
// and ignored: the token may be expired or mangled, but the operator
// still wants out, so the cache entry is cleared either way. Logout never
// fails from the caller's point of view.
func (s *Service) Logout(ctx context.Context, tok string) error {
	if tok == "" {
		return nil
	}

	subject, err := s.signer.Verify(tok)
	if err != nil {
		s.logger.Warn("logout with unverifiable token", "error", err)
		// Claims are untrusted; fall back to the sole operator.
		op, opErr := s.operators.Get()
		if opErr != nil || op == nil {
			return nil
		}
		subject = op.Name
	}

	s.cache.Delete(cacheKey(subject))
	s.logger.Info("operator logged out", "operator", subject)
	return nil
}

// Authorize validates a presented token: signature and expiry must hold,
// and the cache entry for its subject must match it exactly. A signed but
// revoked token fails here, which is the revocation mechanism.
func (s *Service) Authorize(ctx context.Context, tok string) (string, error) {
	if tok == "" {
		return "", fault.Authf("not authenticated")
	}

	subject, err := s.signer.Verify(tok)
	if err != nil {
		return "", fault.Authf("not authenticated")
	}

	live, ok := s.cache.Get(cacheKey(subject))
	if !ok || live != tok {
		return "", fault.Authf("not authenticated")
	}

	return subject, nil
}
