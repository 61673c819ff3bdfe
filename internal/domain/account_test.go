package domain_test

import (
	"pixbank/internal/domain"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func kinds(txs []domain.Transaction) []domain.TransactionKind {
	out := make([]domain.TransactionKind, len(txs))
	for i, tx := range txs {
		out[i] = tx.Kind
	}
	return out
}

func TestNewAccounts_ClampNegativeInitialBalance(t *testing.T) {
	accounts := []domain.Account{
		domain.NewCheckingAccount(1, "Ana", "52998224725", dec("-10")),
		domain.NewSavingsAccount(2, "Bia", "11144477735", dec("-0.01")),
		domain.NewSpecialAccount(3, "Caio", "12345678909", dec("-500"), dec("300")),
	}
	for _, a := range accounts {
		assertDecimal(t, "0", a.Balance(), a.Kind())
		assert.Empty(t, a.Statement())
	}
}

func TestNewAccounts_DefaultAndExplicitBalance(t *testing.T) {
	a := domain.NewCheckingAccount(7, "Ana", "52998224725", decimal.Zero)
	assert.Equal(t, int64(7), a.Number())
	assert.Equal(t, domain.KindChecking, a.Kind())
	assert.Equal(t, "Ana", a.OwnerName())
	assert.Equal(t, "52998224725", a.OwnerID())
	assertDecimal(t, "0", a.Balance())

	s := domain.NewSavingsAccount(8, "Bia", "11144477735", dec("250.50"))
	assertDecimal(t, "250.50", s.Balance())
}

func TestDeposit(t *testing.T) {
	a := domain.NewCheckingAccount(1, "Ana", "52998224725", decimal.Zero)

	require.NoError(t, a.Deposit(dec("100")))
	assertDecimal(t, "100", a.Balance())

	for _, amount := range []string{"0", "-5"} {
		err := a.Deposit(dec(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
	assertDecimal(t, "100", a.Balance())

	stmt := a.Statement()
	require.Len(t, stmt, 1)
	assert.Equal(t, domain.KindDeposit, stmt[0].Kind)
	assertDecimal(t, "100", stmt[0].Amount)
	assertDecimal(t, "100", stmt[0].BalanceAfter)
	assert.NotEmpty(t, stmt[0].ID)
	assert.False(t, stmt[0].Timestamp.IsZero())
}

func TestWithdraw_CheckingAndSavings(t *testing.T) {
	accounts := []domain.Withdrawable{
		domain.NewCheckingAccount(1, "Ana", "52998224725", dec("100")),
		domain.NewSavingsAccount(2, "Bia", "11144477735", dec("100")),
	}

	for _, a := range accounts {
		t.Run(string(a.Kind()), func(t *testing.T) {
			assert.ErrorIs(t, a.Withdraw(dec("0")), domain.ErrInvalidAmount)
			assert.ErrorIs(t, a.Withdraw(dec("-1")), domain.ErrInvalidAmount)
			assert.ErrorIs(t, a.Withdraw(dec("100.01")), domain.ErrInsufficientFunds)
			assertDecimal(t, "100", a.Balance())
			assert.Empty(t, a.Statement())

			require.NoError(t, a.Withdraw(dec("100")))
			assertDecimal(t, "0", a.Balance())

			stmt := a.Statement()
			require.Len(t, stmt, 1)
			assert.Equal(t, domain.KindWithdrawal, stmt[0].Kind)
			assertDecimal(t, "0", stmt[0].BalanceAfter)
		})
	}
}

func TestDepositThenWithdraw_RoundTrip(t *testing.T) {
	a := domain.NewSavingsAccount(1, "Ana", "52998224725", dec("42.10"))

	require.NoError(t, a.Deposit(dec("17.35")))
	require.NoError(t, a.Withdraw(dec("17.35")))

	assertDecimal(t, "42.10", a.Balance())
	assert.Equal(t, []domain.TransactionKind{domain.KindDeposit, domain.KindWithdrawal}, kinds(a.Statement()))
}

func TestSpecialWithdraw_ConsumesWholeOverdraft(t *testing.T) {
	a := domain.NewSpecialAccount(1, "Ana", "52998224725", dec("50"), dec("300"))

	require.NoError(t, a.Withdraw(dec("200")))
	assertDecimal(t, "150", a.Balance())
	assertDecimal(t, "0", a.OverdraftLimit())

	err := a.Withdraw(dec("151"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assertDecimal(t, "150", a.Balance())

	require.NoError(t, a.Withdraw(dec("150")))
	assertDecimal(t, "0", a.Balance())
	assert.Len(t, a.Statement(), 2)
}

func TestSpecialWithdraw_CoveredByBalanceKeepsOverdraft(t *testing.T) {
	a := domain.NewSpecialAccount(1, "Ana", "52998224725", dec("500"), dec("300"))

	require.NoError(t, a.Withdraw(dec("500")))
	assertDecimal(t, "0", a.Balance())
	assertDecimal(t, "300", a.OverdraftLimit())
}

func TestSpecialWithdraw_BeyondBalanceAndOverdraft(t *testing.T) {
	a := domain.NewSpecialAccount(1, "Ana", "52998224725", dec("50"), dec("300"))

	assert.ErrorIs(t, a.Withdraw(dec("350.01")), domain.ErrInsufficientFunds)
	assert.ErrorIs(t, a.Withdraw(dec("0")), domain.ErrInvalidAmount)
	assertDecimal(t, "50", a.Balance())
	assertDecimal(t, "300", a.OverdraftLimit())

	require.NoError(t, a.Withdraw(dec("350")))
	assertDecimal(t, "0", a.Balance())
	assertDecimal(t, "0", a.OverdraftLimit())
}

func TestApplyCorrection(t *testing.T) {
	a := domain.NewSavingsAccount(1, "Ana", "52998224725", dec("200"))

	require.NoError(t, a.ApplyCorrection(dec("2.5")))
	assertDecimal(t, "205", a.Balance())

	stmt := a.Statement()
	require.Len(t, stmt, 1)
	assert.Equal(t, domain.KindCorrectionApplied, stmt[0].Kind)
	assertDecimal(t, "5", stmt[0].Amount)
	assertDecimal(t, "205", stmt[0].BalanceAfter)
	assert.Equal(t, "rate 2.50%", stmt[0].Note)

	for _, rate := range []string{"0", "-1"} {
		assert.ErrorIs(t, a.ApplyCorrection(dec(rate)), domain.ErrInvalidRate)
	}
	assertDecimal(t, "205", a.Balance())
	assert.Len(t, a.Statement(), 1)
}

func TestStatement_IsACopy(t *testing.T) {
	a := domain.NewCheckingAccount(1, "Ana", "52998224725", decimal.Zero)
	require.NoError(t, a.Deposit(dec("10")))

	stmt := a.Statement()
	stmt[0].Amount = dec("999")

	assertDecimal(t, "10", a.Statement()[0].Amount)
}

func TestBalanceInvariants_RandomisedSequence(t *testing.T) {
	checking := domain.NewCheckingAccount(1, "Ana", "52998224725", dec("10"))
	savings := domain.NewSavingsAccount(2, "Bia", "11144477735", dec("10"))
	special := domain.NewSpecialAccount(3, "Caio", "12345678909", dec("10"), dec("400"))
	reg := domain.NewKeyRegistry(checking.OwnerID(), special.OwnerID())

	amounts := []string{"5", "30", "0", "120", "7.5", "-3", "400", "1", "60", "250"}
	for i, s := range amounts {
		amount := dec(s)
		_ = checking.Deposit(amount)
		_ = savings.Withdraw(amount)
		_ = special.Withdraw(amount)
		_ = savings.ApplyCorrection(dec("1.5"))
		if i%2 == 0 {
			_ = domain.Transfer(reg, special, checking, amount)
		} else {
			_ = domain.Transfer(reg, checking, special, amount)
		}
		_ = checking.Withdraw(amount)

		assert.False(t, checking.Balance().IsNegative(), "checking step %d", i)
		assert.False(t, savings.Balance().IsNegative(), "savings step %d", i)
		assert.False(t, special.Balance().Add(special.OverdraftLimit()).IsNegative(), "special step %d", i)
		assert.False(t, special.OverdraftLimit().IsNegative(), "special limit step %d", i)
	}
}

func TestRestoreAccount(t *testing.T) {
	orig := domain.NewSpecialAccount(4, "Ana", "52998224725", dec("50"), dec("320"))
	require.NoError(t, orig.Deposit(dec("25")))
	require.NoError(t, orig.Withdraw(dec("100")))

	restored, err := domain.RestoreAccount(orig.State())
	require.NoError(t, err)

	special, ok := restored.(*domain.SpecialAccount)
	require.True(t, ok)
	assert.Equal(t, int64(4), special.Number())
	assertDecimal(t, orig.Balance().String(), special.Balance())
	assertDecimal(t, "0", special.OverdraftLimit())
	assert.Equal(t, orig.Statement(), special.Statement())

	savings, err := domain.RestoreAccount(domain.NewSavingsAccount(5, "Bia", "11144477735", dec("3")).State())
	require.NoError(t, err)
	_, ok = savings.(domain.Correctable)
	assert.True(t, ok)
	_, ok = savings.(domain.PixCapable)
	assert.False(t, ok)
}

func TestRestoreAccount_RejectsBrokenInvariants(t *testing.T) {
	tests := []struct {
		name  string
		state domain.AccountState
	}{
		{name: "negative checking", state: domain.AccountState{Number: 1, Kind: domain.KindChecking, Balance: dec("-1")}},
		{name: "negative savings", state: domain.AccountState{Number: 1, Kind: domain.KindSavings, Balance: dec("-1")}},
		{name: "special beyond overdraft", state: domain.AccountState{Number: 1, Kind: domain.KindSpecial, Balance: dec("-301"), OverdraftLimit: dec("300")}},
		{name: "overdraft above grant range", state: domain.AccountState{Number: 1, Kind: domain.KindSpecial, OverdraftLimit: dec("1000")}},
		{name: "negative overdraft", state: domain.AccountState{Number: 1, Kind: domain.KindSpecial, Balance: dec("10"), OverdraftLimit: dec("-1")}},
		{name: "unknown kind", state: domain.AccountState{Number: 1, Kind: "gold"}},
		{name: "zero number", state: domain.AccountState{Number: 0, Kind: domain.KindChecking}},
		{name: "bad transaction kind", state: domain.AccountState{Number: 1, Kind: domain.KindChecking, Transactions: []domain.Transaction{{Kind: "refund"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.RestoreAccount(tt.state)
			assert.ErrorIs(t, err, domain.ErrInvalidState)
		})
	}
}

func TestCapabilities(t *testing.T) {
	var checking domain.Account = domain.NewCheckingAccount(1, "Ana", "52998224725", decimal.Zero)
	var savings domain.Account = domain.NewSavingsAccount(2, "Bia", "11144477735", decimal.Zero)
	var special domain.Account = domain.NewSpecialAccount(3, "Caio", "12345678909", decimal.Zero, dec("300"))

	_, ok := checking.(domain.PixCapable)
	assert.True(t, ok)
	_, ok = special.(domain.PixCapable)
	assert.True(t, ok)
	_, ok = savings.(domain.PixCapable)
	assert.False(t, ok)

	_, ok = savings.(domain.Correctable)
	assert.True(t, ok)
	_, ok = checking.(domain.Correctable)
	assert.False(t, ok)
	_, ok = special.(domain.Correctable)
	assert.False(t, ok)
}
