package service

import (
	"context"
	"fmt"
	"log/slog"
	"pixbank/internal/domain"
	"pixbank/internal/storage"
)

// Snapshot captures the whole ledger: every account with its log, the Pix
// registry and the account number counter.
func (s *LedgerService) Snapshot(ctx context.Context) (storage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}

	snap := storage.Snapshot{
		LastAccountNumber: s.seq.Current(),
		PixKeys:           s.registry.Keys(),
		Accounts:          make([]storage.PersistAccount, 0, len(accounts)),
	}
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, toPersistAccount(a.State()))
	}
	return snap, nil
}

// Restore replaces the ledger with snap. Nothing changes unless every account
// and key in snap is valid.
func (s *LedgerService) Restore(ctx context.Context, snap storage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.LastAccountNumber < 0 {
		return fmt.Errorf("restore snapshot: %w: last account number %d", domain.ErrInvalidState, snap.LastAccountNumber)
	}

	accounts := make([]domain.Account, 0, len(snap.Accounts))
	byOwner := make(map[string]domain.Account, len(snap.Accounts))
	last := snap.LastAccountNumber
	for _, pa := range snap.Accounts {
		account, err := domain.RestoreAccount(fromPersistAccount(pa))
		if err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		accounts = append(accounts, account)
		byOwner[account.OwnerID()] = account
		last = max(last, account.Number())
	}

	for _, key := range snap.PixKeys {
		account, ok := byOwner[key]
		if !ok {
			return fmt.Errorf("restore snapshot: %w: pix key %s has no account", domain.ErrInvalidState, key)
		}
		if _, ok := account.(domain.PixCapable); !ok {
			return fmt.Errorf("restore snapshot: %w: pix key %s belongs to a %s account", domain.ErrInvalidState, key, account.Kind())
		}
	}

	registry := domain.NewKeyRegistry()
	for _, key := range snap.PixKeys {
		if err := registry.Register(key); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}

	if err := s.repo.Replace(ctx, accounts); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	s.registry = registry
	s.seq = domain.NewSequenceFrom(last)

	for _, a := range accounts {
		s.observeBalance(a)
	}
	s.metrics.SetPixKeys(registry.Len())

	s.logger.InfoContext(ctx, "Ledger restored",
		slog.Int("accounts", len(accounts)),
		slog.Int("pix_keys", registry.Len()),
		slog.Int64("last_account_number", last))
	return nil
}

func toPersistAccount(st domain.AccountState) storage.PersistAccount {
	txs := make([]storage.PersistTransaction, 0, len(st.Transactions))
	for _, tx := range st.Transactions {
		txs = append(txs, storage.PersistTransaction{
			ID:           tx.ID,
			Timestamp:    tx.Timestamp,
			Kind:         string(tx.Kind),
			Amount:       tx.Amount,
			Note:         tx.Note,
			BalanceAfter: tx.BalanceAfter,
		})
	}
	return storage.PersistAccount{
		Number:         st.Number,
		Kind:           string(st.Kind),
		OwnerName:      st.OwnerName,
		OwnerID:        st.OwnerID,
		Balance:        st.Balance,
		OverdraftLimit: st.OverdraftLimit,
		Transactions:   txs,
	}
}

func fromPersistAccount(pa storage.PersistAccount) domain.AccountState {
	txs := make([]domain.Transaction, 0, len(pa.Transactions))
	for _, tx := range pa.Transactions {
		txs = append(txs, domain.Transaction{
			ID:           tx.ID,
			Timestamp:    tx.Timestamp,
			Kind:         domain.TransactionKind(tx.Kind),
			Amount:       tx.Amount,
			Note:         tx.Note,
			BalanceAfter: tx.BalanceAfter,
		})
	}
	return domain.AccountState{
		Number:         pa.Number,
		Kind:           domain.AccountKind(pa.Kind),
		OwnerName:      pa.OwnerName,
		OwnerID:        pa.OwnerID,
		Balance:        pa.Balance,
		OverdraftLimit: pa.OverdraftLimit,
		Transactions:   txs,
	}
}
