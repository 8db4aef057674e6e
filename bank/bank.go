package bank

import (
	"gm-rewards/access"
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
)

// ValidAmount reports whether amount is a non-negative whole number of base units
func ValidAmount(amount decimal.Decimal) bool {
	return !amount.IsNegative() && amount.IsInteger()
}

// Bank moves value between accounts. It backs both the donation collector and the reward vault.
type Bank struct {
	store repository.Transactor
}

// New creates and returns a new Bank instance
func New(store repository.Transactor) *Bank {
	return &Bank{store: store}
}

// Transfer moves amount from one account to another inside tx
func (b *Bank) Transfer(tx *repository.Tx, from, to string, amount decimal.Decimal) error {
	if !ValidAmount(amount) {
		return errs.ErrInvalidAmount.With("%s", amount)
	}
	to, err := models.CheckAddress(to)
	if err != nil {
		return err
	}
	from = models.NormalizeAddress(from)
	if amount.IsZero() {
		return nil
	}

	fromBal, err := tx.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBal.LessThan(amount) {
		return errs.ErrInsufficientFunds.With("%s holds %s, needs %s", from, fromBal, amount)
	}
	// a self-transfer must be covered but moves nothing
	if from == to {
		return nil
	}
	toBal, err := tx.GetBalance(to)
	if err != nil {
		return err
	}
	if err := tx.PutBalance(from, fromBal.Sub(amount)); err != nil {
		return err
	}
	if err := tx.PutBalance(to, toBal.Add(amount)); err != nil {
		return err
	}
	tx.Emit(models.Event{Type: models.EventFundsMoved, Account: from, Counterparty: to, Amount: amount})
	return nil
}

// Credit mints amount into an account; caller must be an admin
func (b *Bank) Credit(caller, to string, amount decimal.Decimal) error {
	return b.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if !ValidAmount(amount) {
			return errs.ErrInvalidAmount.With("%s", amount)
		}
		to, err := models.CheckAddress(to)
		if err != nil {
			return err
		}
		bal, err := tx.GetBalance(to)
		if err != nil {
			return err
		}
		if err := tx.PutBalance(to, bal.Add(amount)); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventFundsMoved, Account: to, Amount: amount, Detail: "credit"})
		return nil
	})
}

// Send moves amount from caller to another account
func (b *Bank) Send(caller, to string, amount decimal.Decimal) error {
	return b.store.Update(func(tx *repository.Tx) error {
		return b.Transfer(tx, caller, to, amount)
	})
}

// BalanceOf returns an account's balance
func (b *Bank) BalanceOf(addr string) (decimal.Decimal, error) {
	bal := decimal.Zero
	err := b.store.View(func(tx *repository.Tx) error {
		var err error
		bal, err = tx.GetBalance(models.NormalizeAddress(addr))
		return err
	})
	return bal, err
}
