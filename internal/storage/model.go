package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SnapshotFormat  = "pixbank_snapshot"
	SnapshotVersion = 1
)

type Meta struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type PersistTransaction struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

type PersistAccount struct {
	Number         int64                `json:"number"`
	Kind           string               `json:"kind"`
	OwnerName      string               `json:"owner_name"`
	OwnerID        string               `json:"owner_id"`
	Balance        decimal.Decimal      `json:"balance"`
	OverdraftLimit decimal.Decimal      `json:"overdraft_limit"`
	Transactions   []PersistTransaction `json:"transactions"`
}

// Snapshot is the whole ledger state: accounts with their logs, the Pix key
// registry and the last account number handed out.
type Snapshot struct {
	Meta              Meta             `json:"_meta"`
	LastAccountNumber int64            `json:"last_account_number"`
	PixKeys           []string         `json:"pix_keys"`
	Accounts          []PersistAccount `json:"accounts"`
}
