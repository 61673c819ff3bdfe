package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindDeposit           TransactionKind = "deposit"
	KindWithdrawal        TransactionKind = "withdrawal"
	KindTransferOut       TransactionKind = "transfer_out"
	KindTransferIn        TransactionKind = "transfer_in"
	KindCorrectionApplied TransactionKind = "correction_applied"
)

// Label is the human readable name used on statements.
func (k TransactionKind) Label() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindWithdrawal:
		return "Withdrawal"
	case KindTransferOut:
		return "Pix Out"
	case KindTransferIn:
		return "Pix In"
	case KindCorrectionApplied:
		return "Correction"
	default:
		return string(k)
	}
}

func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransferOut, KindTransferIn, KindCorrectionApplied:
		return true
	}
	return false
}

// Transaction is one entry of an account's statement. Entries are appended by
// the owning account and never modified afterwards.
type Transaction struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Kind         TransactionKind `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

func NewTransaction(kind TransactionKind, amount decimal.Decimal) *Transaction {
	return &Transaction{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Kind:      kind,
		Amount:    amount,
	}
}

func (tx *Transaction) WithNote(note string) *Transaction {
	tx.Note = note
	return tx
}

func (tx *Transaction) WithTimestamp(ts time.Time) *Transaction {
	tx.Timestamp = ts
	return tx
}

func (tx *Transaction) WithBalanceAfter(balance decimal.Decimal) *Transaction {
	tx.BalanceAfter = balance
	return tx
}
