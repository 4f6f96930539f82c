package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwhitfield/atelier/internal/database"
	"github.com/jwhitfield/atelier/internal/fault"
	"github.com/jwhitfield/atelier/internal/sessioncache"
	"github.com/jwhitfield/atelier/internal/store"
	"github.com/jwhitfield/atelier/internal/token"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func setupAuthTest(t *testing.T) (*Service, *store.OperatorStore, *sessioncache.Cache) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	operators := store.NewOperatorStore(db)
	cache := sessioncache.New()
	signer := token.NewSigner("test-signing-secret")
	svc := NewService(operators, cache, signer, slog.Default())
	return svc, operators, cache
}

func currentCode(t *testing.T) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(testSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	return code
}

func TestLoginNoOperator(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	_, err := svc.Login(context.Background(), "123456")
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.KindOf(err) != fault.KindAuth {
		t.Errorf("kind = %v, want auth", fault.KindOf(err))
	}
}

func TestLoginWrongCode(t *testing.T) {
	svc, operators, _ := setupAuthTest(t)
	operators.Create("june", testSecret)

	_, err := svc.Login(context.Background(), "000000")
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.Message(err) != "Invalid TOTP code" {
		t.Errorf("message = %q, want generic invalid-code message", fault.Message(err))
	}
}

func TestLoginValidCode(t *testing.T) {
	svc, operators, cache := setupAuthTest(t)
	operators.Create("june", testSecret)

	tok, err := svc.Login(context.Background(), currentCode(t))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}

	live, ok := cache.Get("session:june")
	if !ok {
		t.Fatal("expected cache entry")
	}
	if live != tok {
		t.Error("cache entry does not match issued token")
	}
}

func TestLoginOverwritesPriorSession(t *testing.T) {
	svc, operators, _ := setupAuthTest(t)
	operators.Create("june", testSecret)
	ctx := context.Background()

	first, err := svc.Login(ctx, currentCode(t))
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login(ctx, currentCode(t))
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	// Old token still has a valid signature but must be rejected.
	if _, err := svc.Authorize(ctx, first); err == nil {
		t.Error("first token should be revoked by second login")
	}
	if _, err := svc.Authorize(ctx, second); err != nil {
		t.Errorf("second token should authorize: %v", err)
	}
}

func TestAuthorizeRoundTrip(t *testing.T) {
	svc, operators, _ := setupAuthTest(t)
	operators.Create("june", testSecret)
	ctx := context.Background()

	tok, err := svc.Login(ctx, currentCode(t))
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	subject, err := svc.Authorize(ctx, tok)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if subject != "june" {
		t.Errorf("subject = %q, want june", subject)
	}
}

func TestAuthorizeMissingToken(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	_, err := svc.Authorize(context.Background(), "")
	if fault.KindOf(err) != fault.KindAuth {
		t.Errorf("kind = %v, want auth", fault.KindOf(err))
	}
}

func TestAuthorizeAfterLogout(t *testing.T) {
	svc, operators, _ := setupAuthTest(t)
	operators.Create("june", testSecret)
	ctx := context.Background()

	tok, err := svc.Login(ctx, currentCode(t))
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, tok); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// Replaying the raw token must fail even though its signature holds.
	_, err = svc.Authorize(ctx, tok)
	if err == nil {
		t.Fatal("expected authorize to fail after logout")
	}
	if fault.KindOf(err) != fault.KindAuth {
		t.Errorf("kind = %v, want auth", fault.KindOf(err))
	}
}

func TestLogoutIdempotent(t *testing.T) {
	svc, operators, _ := setupAuthTest(t)
	operators.Create("june", testSecret)
	ctx := context.Background()

	tok, _ := svc.Login(ctx, currentCode(t))

	if err := svc.Logout(ctx, tok); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := svc.Logout(ctx, tok); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestLogoutEmptyTokenNoOp(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func TestLogoutUnparseableTokenStillRevokes(t *testing.T) {
	svc, operators, cache := setupAuthTest(t)
	operators.Create("june", testSecret)
	ctx := context.Background()

	if _, err := svc.Login(ctx, currentCode(t)); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, "garbage-token"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := cache.Get("session:june"); ok {
		t.Error("expected cache entry cleared by best-effort logout")
	}
}

func TestRecoveryCodeLogin(t *testing.T) {
	svc, operators, _ := setupAuthTest(t)
	op, _ := operators.Create("june", testSecret)

	hash, err := bcrypt.GenerateFromPassword([]byte("rescue-me-1234"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	operators.SetRecoveryCodes(op.ID, []string{string(hash)})
	ctx := context.Background()

	tok, err := svc.Login(ctx, "rescue-me-1234")
	if err != nil {
		t.Fatalf("recovery login: %v", err)
	}
	if tok == "" {
		t.Fatal("expected token")
	}

	// Single use: the same recovery code is rejected next time.
	if _, err := svc.Login(ctx, "rescue-me-1234"); err == nil {
		t.Error("expected reused recovery code to fail")
	}
}
