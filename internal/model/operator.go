package model

import "time"

// Operator is the single privileged identity allowed to manage content.
type Operator struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TOTPSecret string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecoveryCode is a single-use fallback credential for when the TOTP
// device is unavailable. Only the bcrypt hash is stored.
type RecoveryCode struct {
	ID         int64      `json:"id"`
	OperatorID int64      `json:"operator_id"`
	CodeHash   string     `json:"-"`
	UsedAt     *time.Time `json:"used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
