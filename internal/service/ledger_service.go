package service

import (
	"context"
	"fmt"
	"log/slog"
	"pixbank/internal/domain"
	"pixbank/internal/repository"
	"pixbank/pkg/validator"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MetricsRecorder receives one observation per use case. The Prometheus
// collector in pkg/metrics satisfies it.
type MetricsRecorder interface {
	RecordOperation(operation string, duration time.Duration, err error)
	UpdateAccountBalance(number int64, kind string, balance float64)
	SetPixKeys(count int)
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(string, time.Duration, error) {}
func (noopMetrics) UpdateAccountBalance(int64, string, float64)  {}
func (noopMetrics) SetPixKeys(int)                               {}

// CreateAccountRequest carries the fields needed to open any account variant.
type CreateAccountRequest struct {
	Kind           domain.AccountKind `validate:"oneof=checking savings special"`
	OwnerName      string
	OwnerID        string `validate:"cpf"`
	InitialBalance decimal.Decimal
}

type Option func(*LedgerService)

func WithOverdraftPolicy(policy domain.OverdraftPolicy) Option {
	return func(s *LedgerService) {
		if policy != nil {
			s.overdraft = policy
		}
	}
}

func WithMetrics(recorder MetricsRecorder) Option {
	return func(s *LedgerService) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

func WithSequence(seq *domain.Sequence) Option {
	return func(s *LedgerService) {
		if seq != nil {
			s.seq = seq
		}
	}
}

// LedgerService is the account directory plus the Pix key registry. A single
// mutex serialises every operation, so a transfer never observes a half
// applied deposit on either side.
type LedgerService struct {
	repo      repository.AccountRepository
	registry  *domain.KeyRegistry
	seq       *domain.Sequence
	overdraft domain.OverdraftPolicy
	metrics   MetricsRecorder
	mu        sync.Mutex
	logger    *slog.Logger
}

func NewLedgerService(repo repository.AccountRepository, logger *slog.Logger, opts ...Option) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &LedgerService{
		repo:      repo,
		registry:  domain.NewKeyRegistry(),
		seq:       domain.NewSequence(),
		overdraft: domain.RandomOverdraft,
		metrics:   noopMetrics{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) CreateAccount(ctx context.Context, req CreateAccountRequest) (domain.AccountState, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.createAccount(ctx, req)
	s.finish(ctx, "create_account", start, err,
		slog.String("kind", string(req.Kind)),
		slog.String("owner_name", req.OwnerName),
		slog.Int64("account_number", state.Number))
	return state, err
}

func (s *LedgerService) createAccount(ctx context.Context, req CreateAccountRequest) (domain.AccountState, error) {
	invalid := validator.InvalidFields(req)
	if _, bad := invalid["Kind"]; bad {
		return domain.AccountState{}, fmt.Errorf("%w: unknown account kind %q", domain.ErrWrongAccountType, req.Kind)
	}

	taken, err := s.repo.ExistsOwnerName(ctx, req.OwnerName)
	if err != nil {
		return domain.AccountState{}, err
	}
	if taken {
		return domain.AccountState{}, fmt.Errorf("%w: %s", domain.ErrDuplicateOwnerName, req.OwnerName)
	}

	taken, err = s.repo.ExistsOwnerID(ctx, req.OwnerID)
	if err != nil {
		return domain.AccountState{}, err
	}
	if taken {
		return domain.AccountState{}, fmt.Errorf("%w: %s", domain.ErrDuplicateOwnerID, req.OwnerID)
	}

	if _, bad := invalid["OwnerID"]; bad {
		return domain.AccountState{}, fmt.Errorf("%w: %q", domain.ErrInvalidID, req.OwnerID)
	}

	number := s.seq.Next()
	var account domain.Account
	switch req.Kind {
	case domain.KindChecking:
		account = domain.NewCheckingAccount(number, req.OwnerName, req.OwnerID, req.InitialBalance)
	case domain.KindSavings:
		account = domain.NewSavingsAccount(number, req.OwnerName, req.OwnerID, req.InitialBalance)
	case domain.KindSpecial:
		account = domain.NewSpecialAccount(number, req.OwnerName, req.OwnerID, req.InitialBalance, s.overdraft())
	}

	if err := s.repo.Save(ctx, account); err != nil {
		return domain.AccountState{}, err
	}
	s.observeBalance(account)
	return account.State(), nil
}

func (s *LedgerService) Deposit(ctx context.Context, number int64, amount decimal.Decimal) (domain.AccountState, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.mutate(ctx, number, func(a domain.Account) error {
		return a.Deposit(amount)
	})
	s.finish(ctx, "deposit", start, err,
		slog.Int64("account_number", number),
		slog.String("amount", amount.String()))
	return state, err
}

func (s *LedgerService) Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (domain.AccountState, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.mutate(ctx, number, func(a domain.Account) error {
		w, ok := a.(domain.Withdrawable)
		if !ok {
			return fmt.Errorf("%w: %s account cannot withdraw", domain.ErrWrongAccountType, a.Kind())
		}
		return w.Withdraw(amount)
	})
	s.finish(ctx, "withdraw", start, err,
		slog.Int64("account_number", number),
		slog.String("amount", amount.String()))
	return state, err
}

func (s *LedgerService) mutate(ctx context.Context, number int64, apply func(domain.Account) error) (domain.AccountState, error) {
	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return domain.AccountState{}, err
	}
	if err := apply(account); err != nil {
		return domain.AccountState{}, err
	}
	s.observeBalance(account)
	return account.State(), nil
}

// ApplyCorrectionToAllSavings credits every savings account with rate percent
// of its balance and reports how many accounts were corrected. The rate is
// validated before any account is touched.
func (s *LedgerService) ApplyCorrectionToAllSavings(ctx context.Context, ratePercent decimal.Decimal) (int, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.applyCorrection(ctx, ratePercent)
	s.finish(ctx, "apply_correction", start, err,
		slog.String("rate", ratePercent.String()),
		slog.Int("accounts", count))
	return count, err
}

func (s *LedgerService) applyCorrection(ctx context.Context, ratePercent decimal.Decimal) (int, error) {
	if !ratePercent.IsPositive() {
		return 0, fmt.Errorf("%w: %s%%", domain.ErrInvalidRate, ratePercent)
	}

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, account := range accounts {
		c, ok := account.(domain.Correctable)
		if !ok {
			continue
		}
		if err := c.ApplyCorrection(ratePercent); err != nil {
			return count, err
		}
		s.observeBalance(account)
		count++
	}
	return count, nil
}

func (s *LedgerService) RegisterPixKey(ctx context.Context, ownerID string) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.registerPixKey(ctx, ownerID)
	s.finish(ctx, "register_pix_key", start, err, slog.String("owner_id", ownerID))
	return err
}

func (s *LedgerService) registerPixKey(ctx context.Context, ownerID string) error {
	account, err := s.repo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return err
	}
	pix, ok := account.(domain.PixCapable)
	if !ok {
		return fmt.Errorf("%w: %s accounts cannot register pix keys", domain.ErrWrongAccountType, account.Kind())
	}
	if err := pix.RegisterKey(s.registry); err != nil {
		return err
	}
	s.metrics.SetPixKeys(s.registry.Len())
	return nil
}

func (s *LedgerService) TransferPix(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.transferPix(ctx, senderID, recipientID, amount)
	s.finish(ctx, "transfer_pix", start, err,
		slog.String("sender_id", senderID),
		slog.String("recipient_id", recipientID),
		slog.String("amount", amount.String()))
	return err
}

func (s *LedgerService) transferPix(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) error {
	for _, id := range []string{senderID, recipientID} {
		if !s.registry.IsRegistered(id) {
			return fmt.Errorf("%w: %s", domain.ErrKeyNotRegistered, id)
		}
	}

	sender, err := s.pixAccount(ctx, senderID)
	if err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	recipient, err := s.pixAccount(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("recipient: %w", err)
	}

	if err := domain.Transfer(s.registry, sender, recipient, amount); err != nil {
		return err
	}
	s.observeBalance(sender)
	s.observeBalance(recipient)
	return nil
}

func (s *LedgerService) pixAccount(ctx context.Context, ownerID string) (domain.PixCapable, error) {
	account, err := s.repo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	pix, ok := account.(domain.PixCapable)
	if !ok {
		return nil, fmt.Errorf("%w: %s account %d", domain.ErrWrongAccountType, account.Kind(), account.Number())
	}
	return pix, nil
}

// Statement returns the transaction log of an account, oldest first.
func (s *LedgerService) Statement(ctx context.Context, number int64) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return account.Statement(), nil
}

func (s *LedgerService) Account(ctx context.Context, number int64) (domain.AccountState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return domain.AccountState{}, err
	}
	return account.State(), nil
}

// Accounts lists every account ordered by number.
func (s *LedgerService) Accounts(ctx context.Context) ([]domain.AccountState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]domain.AccountState, 0, len(accounts))
	for _, a := range accounts {
		states = append(states, a.State())
	}
	return states, nil
}

func (s *LedgerService) PixKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Keys()
}

func (s *LedgerService) observeBalance(account domain.Account) {
	s.metrics.UpdateAccountBalance(account.Number(), string(account.Kind()), account.Balance().InexactFloat64())
}

func (s *LedgerService) finish(ctx context.Context, operation string, start time.Time, err error, attrs ...slog.Attr) {
	s.metrics.RecordOperation(operation, time.Since(start), err)

	attrs = append(attrs, slog.String("operation", operation))
	if id, ok := OperationID(ctx); ok {
		attrs = append(attrs, slog.String("operation_id", id))
	}

	switch {
	case err == nil:
		s.logger.LogAttrs(ctx, slog.LevelInfo, "Operation completed", attrs...)
	case domain.IsDomainError(err):
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Operation rejected", append(attrs, slog.String("error", err.Error()))...)
	default:
		s.logger.LogAttrs(ctx, slog.LevelError, "Operation failed", append(attrs, slog.String("error", err.Error()))...)
	}
}
