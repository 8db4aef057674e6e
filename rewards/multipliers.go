package rewards

import (
	"strconv"

	"gm-rewards/access"
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
)

// SetMultiplier sets the GM weight a vote from a token of level earns. Weights already
// registered keep the factor that was in effect when the vote came in.
func (l *Ledger) SetMultiplier(caller string, level int, factor decimal.Decimal) error {
	return l.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if level < 1 {
			return errs.ErrInvalidLevel.With("%d", level)
		}
		if factor.IsNegative() || !factor.IsInteger() {
			return errs.ErrInvalidAmount.With("factor %s", factor)
		}
		m, err := tx.GetMultipliers()
		if err != nil {
			return err
		}
		if factor.IsZero() {
			delete(m, level)
		} else {
			m[level] = factor
		}
		if err := tx.PutMultipliers(m); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventMultiplierSet, Account: models.NormalizeAddress(caller), Amount: factor, Detail: "level " + strconv.Itoa(level)})
		return nil
	})
}

// Multipliers returns the level -> GM weight factor table
func (l *Ledger) Multipliers() (map[int]decimal.Decimal, error) {
	var m map[int]decimal.Decimal
	err := l.store.View(func(tx *repository.Tx) error {
		var err error
		m, err = tx.GetMultipliers()
		return err
	})
	return m, err
}
