package store

import (
	"testing"

	"github.com/jwhitfield/atelier/internal/database"
)

func setupOperatorTestDB(t *testing.T) *OperatorStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewOperatorStore(db)
}

func TestOperatorGetEmpty(t *testing.T) {
	os := setupOperatorTestDB(t)

	op, err := os.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if op != nil {
		t.Error("expected nil when no operator registered")
	}
}

func TestOperatorCreateAndGet(t *testing.T) {
	os := setupOperatorTestDB(t)

	created, err := os.Create("june", "JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("create operator: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero ID")
	}

	op, err := os.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if op == nil {
		t.Fatal("expected operator, got nil")
	}
	if op.Name != "june" {
		t.Errorf("name = %q, want %q", op.Name, "june")
	}
	if op.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Errorf("secret = %q, want %q", op.TOTPSecret, "JBSWY3DPEHPK3PXP")
	}
}

func TestOperatorRecoveryCodes(t *testing.T) {
	os := setupOperatorTestDB(t)
	op, _ := os.Create("june", "JBSWY3DPEHPK3PXP")

	if err := os.SetRecoveryCodes(op.ID, []string{"hash-a", "hash-b"}); err != nil {
		t.Fatalf("set recovery codes: %v", err)
	}

	codes, err := os.ListUnusedRecoveryCodes(op.ID)
	if err != nil {
		t.Fatalf("list recovery codes: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("len = %d, want 2", len(codes))
	}

	if err := os.MarkRecoveryCodeUsed(codes[0].ID); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	codes, err = os.ListUnusedRecoveryCodes(op.ID)
	if err != nil {
		t.Fatalf("list after mark used: %v", err)
	}
	if len(codes) != 1 {
		t.Errorf("len = %d, want 1", len(codes))
	}
}

func TestOperatorSetRecoveryCodesReplaces(t *testing.T) {
	os := setupOperatorTestDB(t)
	op, _ := os.Create("june", "JBSWY3DPEHPK3PXP")

	os.SetRecoveryCodes(op.ID, []string{"old-a", "old-b", "old-c"})
	if err := os.SetRecoveryCodes(op.ID, []string{"new-a"}); err != nil {
		t.Fatalf("replace recovery codes: %v", err)
	}

	codes, _ := os.ListUnusedRecoveryCodes(op.ID)
	if len(codes) != 1 {
		t.Fatalf("len = %d, want 1", len(codes))
	}
	if codes[0].CodeHash != "new-a" {
		t.Errorf("hash = %q, want %q", codes[0].CodeHash, "new-a")
	}
}
