package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"pixbank/internal/domain"
	"pixbank/internal/service"
	"pixbank/pkg/validator"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the subset of the ledger service the console drives.
type Ledger interface {
	CreateAccount(ctx context.Context, req service.CreateAccountRequest) (domain.AccountState, error)
	Deposit(ctx context.Context, number int64, amount decimal.Decimal) (domain.AccountState, error)
	Withdraw(ctx context.Context, number int64, amount decimal.Decimal) (domain.AccountState, error)
	ApplyCorrectionToAllSavings(ctx context.Context, ratePercent decimal.Decimal) (int, error)
	RegisterPixKey(ctx context.Context, ownerID string) error
	TransferPix(ctx context.Context, senderID, recipientID string, amount decimal.Decimal) error
	Statement(ctx context.Context, number int64) ([]domain.Transaction, error)
	Accounts(ctx context.Context) ([]domain.AccountState, error)
}

const menu = `
- PIXBANK -
[1] - Open checking account
[2] - Open savings account
[3] - Open special account
[4] - Deposit
[5] - Withdraw
[6] - Apply correction to savings
[7] - Register Pix key
[8] - Pix transfer
[9] - Statement
[10] - List accounts
[0] - Exit`

var errInput = errors.New("invalid input")

type Console struct {
	ledger Ledger
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

func New(ledger Ledger, in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		ledger: ledger,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(c.out, menu)
		choice, err := c.ask("\nOption: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if choice == "0" {
			fmt.Fprintln(c.out, "\n- Thank you for banking with PixBank.")
			return nil
		}

		cmd, ok := c.commands()[choice]
		if !ok {
			fmt.Fprintln(c.out, "Invalid option. Try again.")
			continue
		}

		opID := uuid.NewString()
		opCtx := service.WithOperationID(ctx, opID)
		c.logger.DebugContext(opCtx, "Running console command",
			slog.String("operation_id", opID),
			slog.String("option", choice))

		err = cmd(opCtx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			fmt.Fprintf(c.out, "\nError: %s\n", Message(err))
		}
	}
}

func (c *Console) commands() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"1":  func(ctx context.Context) error { return c.createAccount(ctx, domain.KindChecking) },
		"2":  func(ctx context.Context) error { return c.createAccount(ctx, domain.KindSavings) },
		"3":  func(ctx context.Context) error { return c.createAccount(ctx, domain.KindSpecial) },
		"4":  c.deposit,
		"5":  c.withdraw,
		"6":  c.applyCorrection,
		"7":  c.registerPix,
		"8":  c.transferPix,
		"9":  c.statement,
		"10": c.listAccounts,
	}
}

func (c *Console) createAccount(ctx context.Context, kind domain.AccountKind) error {
	name, err := c.ask("\n- Account holder name: ")
	if err != nil {
		return err
	}
	id, err := c.ask("- Account holder CPF: ")
	if err != nil {
		return err
	}
	initial, err := c.askOptionalAmount("- Initial balance (blank for 0): ")
	if err != nil {
		return err
	}

	st, err := c.ledger.CreateAccount(ctx, service.CreateAccountRequest{
		Kind:           kind,
		OwnerName:      name,
		OwnerID:        validator.NormalizeCPF(id),
		InitialBalance: initial,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n%s account %d opened for %s.\n", st.Kind.Label(), st.Number, st.OwnerName)
	if st.Kind == domain.KindSpecial {
		fmt.Fprintf(c.out, "Overdraft limit: R$ %s\n", st.OverdraftLimit.StringFixed(2))
	}
	return nil
}

func (c *Console) deposit(ctx context.Context) error {
	number, err := c.askAccountNumber("\n- Account number: ")
	if err != nil {
		return err
	}
	amount, err := c.askAmount("- Deposit amount: ")
	if err != nil {
		return err
	}

	st, err := c.ledger.Deposit(ctx, number, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nDeposit done. Balance: R$ %s\n", st.Balance.StringFixed(2))
	return nil
}

func (c *Console) withdraw(ctx context.Context) error {
	number, err := c.askAccountNumber("\n- Account number: ")
	if err != nil {
		return err
	}
	amount, err := c.askAmount("- Withdrawal amount: ")
	if err != nil {
		return err
	}

	st, err := c.ledger.Withdraw(ctx, number, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nWithdrawal done. Balance: R$ %s\n", st.Balance.StringFixed(2))
	return nil
}

func (c *Console) applyCorrection(ctx context.Context) error {
	rate, err := c.askAmount("\n- Correction rate (%): ")
	if err != nil {
		return err
	}

	count, err := c.ledger.ApplyCorrectionToAllSavings(ctx, rate)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nCorrection of %s%% applied to %d savings account(s).\n", rate.StringFixed(2), count)
	return nil
}

func (c *Console) registerPix(ctx context.Context) error {
	id, err := c.ask("\n- CPF to register: ")
	if err != nil {
		return err
	}
	id = validator.NormalizeCPF(id)

	if err := c.ledger.RegisterPixKey(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nPix key %s registered.\n", validator.FormatCPF(id))
	return nil
}

func (c *Console) transferPix(ctx context.Context) error {
	from, err := c.ask("\n- Sender CPF: ")
	if err != nil {
		return err
	}
	to, err := c.ask("- Recipient CPF: ")
	if err != nil {
		return err
	}
	amount, err := c.askAmount("- Amount in R$: ")
	if err != nil {
		return err
	}

	from, to = validator.NormalizeCPF(from), validator.NormalizeCPF(to)
	if err := c.ledger.TransferPix(ctx, from, to, amount); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nPix of R$ %s sent from %s to %s.\n", amount.StringFixed(2), validator.FormatCPF(from), validator.FormatCPF(to))
	return nil
}

func (c *Console) statement(ctx context.Context) error {
	number, err := c.askAccountNumber("\n- Account number: ")
	if err != nil {
		return err
	}

	txs, err := c.ledger.Statement(ctx, number)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintf(c.out, "\nAccount %d has no transactions.\n", number)
		return nil
	}

	fmt.Fprintf(c.out, "\nStatement for account %d\n", number)
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tBALANCE\tNOTE")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.Timestamp.Format("2006-01-02 15:04:05"),
			tx.Kind.Label(),
			tx.Amount.StringFixed(2),
			tx.BalanceAfter.StringFixed(2),
			tx.Note)
	}
	return w.Flush()
}

func (c *Console) listAccounts(ctx context.Context) error {
	accounts, err := c.ledger.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(c.out, "\nNo accounts registered.")
		return nil
	}

	fmt.Fprintln(c.out)
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTYPE\tHOLDER\tCPF\tBALANCE\tOVERDRAFT")
	for _, a := range accounts {
		overdraft := "-"
		if a.Kind == domain.KindSpecial {
			overdraft = a.OverdraftLimit.StringFixed(2)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			a.Number, a.Kind.Label(), a.OwnerName, validator.FormatCPF(a.OwnerID), a.Balance.StringFixed(2), overdraft)
	}
	return w.Flush()
}

func (c *Console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) askAccountNumber(prompt string) (int64, error) {
	raw, err := c.ask(prompt)
	if err != nil {
		return 0, err
	}
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("%w: %q is not an account number", errInput, raw)
	}
	return number, nil
}

func (c *Console) askAmount(prompt string) (decimal.Decimal, error) {
	raw, err := c.ask(prompt)
	if err != nil {
		return decimal.Zero, err
	}
	return parseAmount(raw)
}

func (c *Console) askOptionalAmount(prompt string) (decimal.Decimal, error) {
	raw, err := c.ask(prompt)
	if err != nil {
		return decimal.Zero, err
	}
	if raw == "" {
		return decimal.Zero, nil
	}
	return parseAmount(raw)
}

// parseAmount accepts both "1234.56" and the Brazilian "1234,56".
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", errInput, raw)
	}
	return amount, nil
}

var messages = []struct {
	target error
	text   string
}{
	{errInput, "Invalid input. Please enter a number."},
	{domain.ErrInvalidAmount, "The amount must be greater than zero."},
	{domain.ErrInvalidRate, "The correction rate must be greater than zero."},
	{domain.ErrInsufficientFunds, "Insufficient funds."},
	{domain.ErrAccountNotFound, "Account not found."},
	{domain.ErrDuplicateOwnerName, "An account with this holder name already exists."},
	{domain.ErrDuplicateOwnerID, "An account with this CPF already exists."},
	{domain.ErrInvalidID, "Invalid CPF."},
	{domain.ErrWrongAccountType, "This operation is not available for this account type."},
	{domain.ErrAlreadyRegistered, "This Pix key is already registered."},
	{domain.ErrKeyNotRegistered, "Pix key not registered."},
}

// Message renders err for the account holder.
func Message(err error) string {
	for _, m := range messages {
		if errors.Is(err, m.target) {
			return m.text
		}
	}
	return "Unexpected error: " + err.Error()
}
