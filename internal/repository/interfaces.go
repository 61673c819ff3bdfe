package repository

import (
	"context"
	"pixbank/internal/domain"
)

// AccountRepository is the account directory. Implementations enforce
// uniqueness of account number, owner name and owner id.
type AccountRepository interface {
	Save(ctx context.Context, account domain.Account) error
	GetByNumber(ctx context.Context, number int64) (domain.Account, error)
	GetByOwnerID(ctx context.Context, ownerID string) (domain.Account, error)
	ExistsOwnerName(ctx context.Context, name string) (bool, error)
	ExistsOwnerID(ctx context.Context, ownerID string) (bool, error)
	// List returns every account ordered by account number.
	List(ctx context.Context) ([]domain.Account, error)
	// Replace swaps the whole directory for accounts, used when restoring a snapshot.
	Replace(ctx context.Context, accounts []domain.Account) error
}
