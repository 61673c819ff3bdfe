package memory

import (
	"context"
	"pixbank/internal/domain"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	account := domain.NewCheckingAccount(1, "Ana", "52998224725", decimal.NewFromInt(100))

	require.NoError(t, repo.Save(ctx, account))

	got, err := repo.GetByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, account, got)

	got, err = repo.GetByOwnerID(ctx, "52998224725")
	require.NoError(t, err)
	assert.Same(t, account, got)
}

func TestAccountRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	_, err := repo.GetByNumber(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = repo.GetByOwnerID(ctx, "52998224725")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	require.NoError(t, repo.Save(ctx, domain.NewCheckingAccount(1, "Ana", "52998224725", decimal.Zero)))

	err := repo.Save(ctx, domain.NewSavingsAccount(2, "Ana", "11144477735", decimal.Zero))
	assert.ErrorIs(t, err, domain.ErrDuplicateOwnerName)

	err = repo.Save(ctx, domain.NewSavingsAccount(3, "Bia", "52998224725", decimal.Zero))
	assert.ErrorIs(t, err, domain.ErrDuplicateOwnerID)

	err = repo.Save(ctx, domain.NewSavingsAccount(1, "Caio", "12345678909", decimal.Zero))
	assert.Error(t, err)

	exists, err := repo.ExistsOwnerName(ctx, "Ana")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsOwnerID(ctx, "11144477735")
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAccountRepository_ListOrderedByNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	_ = repo.Save(ctx, domain.NewCheckingAccount(3, "C", "12345678909", decimal.Zero))
	_ = repo.Save(ctx, domain.NewCheckingAccount(1, "A", "52998224725", decimal.Zero))
	_ = repo.Save(ctx, domain.NewCheckingAccount(2, "B", "11144477735", decimal.Zero))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, account := range all {
		assert.Equal(t, int64(i+1), account.Number())
	}
}

func TestAccountRepository_ReplaceIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	original := domain.NewCheckingAccount(1, "Ana", "52998224725", decimal.Zero)
	require.NoError(t, repo.Save(ctx, original))

	err := repo.Replace(ctx, []domain.Account{
		domain.NewCheckingAccount(5, "Bia", "11144477735", decimal.Zero),
		domain.NewCheckingAccount(6, "Bia", "12345678909", decimal.Zero),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateOwnerName)

	got, err := repo.GetByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, original, got)
	_, err = repo.GetByNumber(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.NoError(t, repo.Replace(ctx, []domain.Account{
		domain.NewSavingsAccount(5, "Bia", "11144477735", decimal.Zero),
	}))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(5), all[0].Number())
}
