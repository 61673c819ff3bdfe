package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transfer moves amount from sender to recipient over Pix. Every precondition
// is checked before either balance is touched, so a failed transfer leaves
// both accounts unchanged. The recipient is credited first and the sender is
// then debited with the same overdraft rules as a withdrawal.
func Transfer(reg *KeyRegistry, sender, recipient PixCapable, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer of %s", ErrInvalidAmount, amount)
	}
	if !reg.IsRegistered(sender.OwnerID()) {
		return fmt.Errorf("%w: sender %s", ErrKeyNotRegistered, sender.OwnerID())
	}
	if !reg.IsRegistered(recipient.OwnerID()) {
		return fmt.Errorf("%w: recipient %s", ErrKeyNotRegistered, recipient.OwnerID())
	}
	if sender.available().LessThan(amount) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, amount, sender.available())
	}

	recipient.credit(amount, "from "+sender.OwnerID())

	sender.debit(amount)
	sender.record(KindTransferOut, amount, "to "+recipient.OwnerID())
	return nil
}
