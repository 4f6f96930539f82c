package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jwhitfield/atelier/internal/model"
)

type OperatorStore struct {
	db *sql.DB
}

func NewOperatorStore(db *sql.DB) *OperatorStore {
	return &OperatorStore{db: db}
}

// Get returns the registered operator, or nil if none exists. The system
// expects at most one row; the oldest wins if more were ever inserted.
func (s *OperatorStore) Get() (*model.Operator, error) {
	var o model.Operator
	err := s.db.QueryRow(
		"SELECT id, name, totp_secret, created_at FROM operators ORDER BY id LIMIT 1",
	).Scan(&o.ID, &o.Name, &o.TOTPSecret, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query operator: %w", err)
	}
	return &o, nil
}

func (s *OperatorStore) Create(name, totpSecret string) (*model.Operator, error) {
	result, err := s.db.Exec(
		"INSERT INTO operators (name, totp_secret) VALUES (?, ?)",
		name, totpSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("insert operator: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var o model.Operator
	err = s.db.QueryRow(
		"SELECT id, name, totp_secret, created_at FROM operators WHERE id = ?", id,
	).Scan(&o.ID, &o.Name, &o.TOTPSecret, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query operator: %w", err)
	}
	return &o, nil
}

// SetRecoveryCodes replaces the operator's recovery code set with the
// given bcrypt hashes in one transaction.
func (s *OperatorStore) SetRecoveryCodes(operatorID int64, hashes []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM recovery_codes WHERE operator_id = ?", operatorID); err != nil {
		return fmt.Errorf("clear recovery codes: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO recovery_codes (operator_id, code_hash) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, h := range hashes {
		if _, err := stmt.Exec(operatorID, h); err != nil {
			return fmt.Errorf("insert recovery code: %w", err)
		}
	}

	return tx.Commit()
}

// ListUnusedRecoveryCodes returns the operator's recovery codes that have
// not been consumed yet.
func (s *OperatorStore) ListUnusedRecoveryCodes(operatorID int64) ([]model.RecoveryCode, error) {
	rows, err := s.db.Query(
		"SELECT id, operator_id, code_hash, used_at, created_at FROM recovery_codes WHERE operator_id = ? AND used_at IS NULL",
		operatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("query recovery codes: %w", err)
	}
	defer rows.Close()

	var codes []model.RecoveryCode
	for rows.Next() {
		var c model.RecoveryCode
		if err := rows.Scan(&c.ID, &c.OperatorID, &c.CodeHash, &c.UsedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recovery code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (s *OperatorStore) MarkRecoveryCodeUsed(id int64) error {
	_, err := s.db.Exec(
		"UPDATE recovery_codes SET used_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("mark recovery code used: %w", err)
	}
	return nil
}
