package domain

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	KindChecking AccountKind = "checking"
	KindSavings  AccountKind = "savings"
	KindSpecial  AccountKind = "special"
)

func (k AccountKind) Valid() bool {
	switch k {
	case KindChecking, KindSavings, KindSpecial:
		return true
	}
	return false
}

func (k AccountKind) Label() string {
	switch k {
	case KindChecking:
		return "Checking"
	case KindSavings:
		return "Savings"
	case KindSpecial:
		return "Special"
	default:
		return string(k)
	}
}

// Account is the behaviour shared by every account variant.
type Account interface {
	Number() int64
	Kind() AccountKind
	OwnerName() string
	OwnerID() string
	Balance() decimal.Decimal
	// Statement returns a copy of the transaction log in insertion order.
	Statement() []Transaction
	State() AccountState
	Deposit(amount decimal.Decimal) error
}

type Withdrawable interface {
	Account
	Withdraw(amount decimal.Decimal) error
}

// Correctable accounts accept a percentage uplift of their balance.
type Correctable interface {
	Account
	ApplyCorrection(ratePercent decimal.Decimal) error
}

// PixCapable accounts can enrol their owner id in the key registry and take
// part in Transfer on either side.
type PixCapable interface {
	Withdrawable
	RegisterKey(reg *KeyRegistry) error

	drawer
	credit(amount decimal.Decimal, note string)
}

// drawer is the debit side of an account: how much can be taken out and how
// a debit of an affordable amount is applied.
type drawer interface {
	available() decimal.Decimal
	debit(amount decimal.Decimal)
	record(kind TransactionKind, amount decimal.Decimal, note string)
}

// AccountState is a detached, copyable view of an account.
type AccountState struct {
	Number         int64           `json:"number"`
	Kind           AccountKind     `json:"kind"`
	OwnerName      string          `json:"owner_name"`
	OwnerID        string          `json:"owner_id"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	Transactions   []Transaction   `json:"transactions,omitempty"`
}

type base struct {
	number    int64
	ownerName string
	ownerID   string
	balance   decimal.Decimal
	log       []Transaction
}

func newBase(number int64, ownerName, ownerID string, initial decimal.Decimal) base {
	if initial.IsNegative() {
		initial = decimal.Zero
	}
	return base{
		number:    number,
		ownerName: ownerName,
		ownerID:   ownerID,
		balance:   initial,
	}
}

func (b *base) Number() int64            { return b.number }
func (b *base) OwnerName() string        { return b.ownerName }
func (b *base) OwnerID() string          { return b.ownerID }
func (b *base) Balance() decimal.Decimal { return b.balance }

func (b *base) Statement() []Transaction {
	out := make([]Transaction, len(b.log))
	copy(out, b.log)
	return out
}

func (b *base) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit of %s", ErrInvalidAmount, amount)
	}
	b.balance = b.balance.Add(amount)
	b.record(KindDeposit, amount, "")
	return nil
}

func (b *base) record(kind TransactionKind, amount decimal.Decimal, note string) {
	tx := NewTransaction(kind, amount).WithNote(note).WithBalanceAfter(b.balance)
	b.log = append(b.log, *tx)
}

func (b *base) state(kind AccountKind) AccountState {
	return AccountState{
		Number:       b.number,
		Kind:         kind,
		OwnerName:    b.ownerName,
		OwnerID:      b.ownerID,
		Balance:      b.balance,
		Transactions: b.Statement(),
	}
}

func (b *base) available() decimal.Decimal { return b.balance }

func (b *base) debit(amount decimal.Decimal) {
	b.balance = b.balance.Sub(amount)
}

// withdraw applies the shared withdrawal rules through the variant's drawer so
// special accounts can dip into their overdraft.
func withdraw(d drawer, amount decimal.Decimal, kind TransactionKind, note string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s of %s", ErrInvalidAmount, kind, amount)
	}
	if d.available().LessThan(amount) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, amount, d.available())
	}
	d.debit(amount)
	d.record(kind, amount, note)
	return nil
}

type CheckingAccount struct {
	base
}

func NewCheckingAccount(number int64, ownerName, ownerID string, initial decimal.Decimal) *CheckingAccount {
	return &CheckingAccount{base: newBase(number, ownerName, ownerID, initial)}
}

func (a *CheckingAccount) Kind() AccountKind   { return KindChecking }
func (a *CheckingAccount) State() AccountState { return a.state(KindChecking) }

func (a *CheckingAccount) Withdraw(amount decimal.Decimal) error {
	return withdraw(a, amount, KindWithdrawal, "")
}

func (a *CheckingAccount) RegisterKey(reg *KeyRegistry) error {
	return reg.Register(a.ownerID)
}

func (a *CheckingAccount) credit(amount decimal.Decimal, note string) {
	a.balance = a.balance.Add(amount)
	a.record(KindTransferIn, amount, note)
}

type SavingsAccount struct {
	base
}

func NewSavingsAccount(number int64, ownerName, ownerID string, initial decimal.Decimal) *SavingsAccount {
	return &SavingsAccount{base: newBase(number, ownerName, ownerID, initial)}
}

func (a *SavingsAccount) Kind() AccountKind   { return KindSavings }
func (a *SavingsAccount) State() AccountState { return a.state(KindSavings) }

func (a *SavingsAccount) Withdraw(amount decimal.Decimal) error {
	return withdraw(a, amount, KindWithdrawal, "")
}

var hundred = decimal.NewFromInt(100)

func (a *SavingsAccount) ApplyCorrection(ratePercent decimal.Decimal) error {
	if !ratePercent.IsPositive() {
		return fmt.Errorf("%w: %s%%", ErrInvalidRate, ratePercent)
	}
	yield := a.balance.Mul(ratePercent).Div(hundred)
	a.balance = a.balance.Add(yield)
	a.record(KindCorrectionApplied, yield, fmt.Sprintf("rate %s%%", ratePercent.StringFixed(2)))
	return nil
}

// SpecialAccount is a checking account with a one-shot overdraft. The first
// debit that cannot be covered by the balance alone consumes the whole
// remaining limit; the limit is never replenished.
type SpecialAccount struct {
	CheckingAccount
	overdraftLimit decimal.Decimal
}

func NewSpecialAccount(number int64, ownerName, ownerID string, initial, overdraftLimit decimal.Decimal) *SpecialAccount {
	if overdraftLimit.IsNegative() {
		overdraftLimit = decimal.Zero
	}
	return &SpecialAccount{
		CheckingAccount: CheckingAccount{base: newBase(number, ownerName, ownerID, initial)},
		overdraftLimit:  overdraftLimit,
	}
}

func (a *SpecialAccount) Kind() AccountKind { return KindSpecial }

func (a *SpecialAccount) OverdraftLimit() decimal.Decimal { return a.overdraftLimit }

func (a *SpecialAccount) State() AccountState {
	s := a.state(KindSpecial)
	s.OverdraftLimit = a.overdraftLimit
	return s
}

func (a *SpecialAccount) Withdraw(amount decimal.Decimal) error {
	return withdraw(a, amount, KindWithdrawal, "")
}

func (a *SpecialAccount) available() decimal.Decimal {
	return a.balance.Add(a.overdraftLimit)
}

func (a *SpecialAccount) debit(amount decimal.Decimal) {
	if a.balance.GreaterThanOrEqual(amount) {
		a.balance = a.balance.Sub(amount)
		return
	}
	a.balance = a.balance.Add(a.overdraftLimit).Sub(amount)
	a.overdraftLimit = decimal.Zero
}

var (
	_ PixCapable   = (*CheckingAccount)(nil)
	_ PixCapable   = (*SpecialAccount)(nil)
	_ Withdrawable = (*SavingsAccount)(nil)
	_ Correctable  = (*SavingsAccount)(nil)
)

// RestoreAccount rebuilds an account from a previously captured state.
func RestoreAccount(s AccountState) (Account, error) {
	if s.Number <= 0 {
		return nil, fmt.Errorf("%w: account number %d", ErrInvalidState, s.Number)
	}
	for _, tx := range s.Transactions {
		if !tx.Kind.Valid() {
			return nil, fmt.Errorf("%w: account %d has transaction kind %q", ErrInvalidState, s.Number, tx.Kind)
		}
	}

	b := base{
		number:    s.Number,
		ownerName: s.OwnerName,
		ownerID:   s.OwnerID,
		balance:   s.Balance,
		log:       slices.Clone(s.Transactions),
	}

	switch s.Kind {
	case KindChecking, KindSavings:
		if s.Balance.IsNegative() {
			return nil, fmt.Errorf("%w: account %d has negative balance %s", ErrInvalidState, s.Number, s.Balance)
		}
		if s.Kind == KindChecking {
			return &CheckingAccount{base: b}, nil
		}
		return &SavingsAccount{base: b}, nil
	case KindSpecial:
		if s.OverdraftLimit.IsNegative() || s.OverdraftLimit.GreaterThanOrEqual(decimal.NewFromInt(OverdraftMax)) ||
			s.Balance.Add(s.OverdraftLimit).IsNegative() {
			return nil, fmt.Errorf("%w: account %d balance %s overdraft %s", ErrInvalidState, s.Number, s.Balance, s.OverdraftLimit)
		}
		return &SpecialAccount{CheckingAccount: CheckingAccount{base: b}, overdraftLimit: s.OverdraftLimit}, nil
	default:
		return nil, fmt.Errorf("%w: account %d has kind %q", ErrInvalidState, s.Number, s.Kind)
	}
}
