package cycles

import (
	"gm-rewards/access"
	"gm-rewards/bank"
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
)

// Oracle defines cycle boundaries and pool sizes. Cycle ids start at 1; a cycle ends when the next one starts.
type Oracle struct {
	store repository.Transactor
	bank  *bank.Bank
	vault string
}

// New creates and returns a new Oracle. Pools are moved into vault when a cycle starts.
func New(store repository.Transactor, b *bank.Bank, vault string) *Oracle {
	return &Oracle{store: store, bank: b, vault: models.NormalizeAddress(vault)}
}

// Vault returns the account rewards are paid from
func (o *Oracle) Vault() string {
	return o.vault
}

// StartCycle closes the open cycle and opens the next one, funding its pools from the caller
func (o *Oracle) StartCycle(caller string, genericPool, gmPool decimal.Decimal) (*models.Cycle, error) {
	var c *models.Cycle
	err := o.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if !bank.ValidAmount(genericPool) || !bank.ValidAmount(gmPool) {
			return errs.ErrInvalidAmount.With("pools %s/%s", genericPool, gmPool)
		}
		next, err := o.NextCycle(tx)
		if err != nil {
			return err
		}
		if err := o.bank.Transfer(tx, caller, o.vault, genericPool.Add(gmPool)); err != nil {
			return err
		}

		c = &models.Cycle{
			ID:          next,
			StartBlock:  tx.Block(),
			GenericPool: genericPool,
			GMPool:      gmPool,
		}
		if err := tx.PutCycle(c); err != nil {
			return err
		}
		if err := tx.SetCurrentCycleID(next); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventCycleStarted, CycleID: next, Amount: genericPool.Add(gmPool)})
		return nil
	})
	return c, err
}

// Cycle returns a cycle definition
func (o *Oracle) Cycle(id uint64) (*models.Cycle, error) {
	var c *models.Cycle
	err := o.store.View(func(tx *repository.Tx) error {
		var err error
		c, err = o.get(tx, id)
		return err
	})
	return c, err
}

// Current returns the open cycle id, 0 before the first cycle
func (o *Oracle) Current() (uint64, error) {
	var id uint64
	err := o.store.View(func(tx *repository.Tx) error {
		var err error
		id, err = o.CurrentCycle(tx)
		return err
	})
	return id, err
}

func (o *Oracle) get(tx *repository.Tx, id uint64) (*models.Cycle, error) {
	if id == 0 {
		return nil, errs.ErrInvalidCycle
	}
	c, ok, err := tx.GetCycle(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrInvalidCycle.With("cycle %d has not started", id)
	}
	return c, nil
}

// CurrentCycle returns the open cycle id
func (o *Oracle) CurrentCycle(tx *repository.Tx) (uint64, error) {
	return tx.CurrentCycleID()
}

// NextCycle returns the id the next started cycle will get
func (o *Oracle) NextCycle(tx *repository.Tx) (uint64, error) {
	cur, err := tx.CurrentCycleID()
	return cur + 1, err
}

// IsCycleEnded reports whether a later cycle has started
func (o *Oracle) IsCycleEnded(tx *repository.Tx, id uint64) (bool, error) {
	cur, err := tx.CurrentCycleID()
	if err != nil {
		return false, err
	}
	return id != 0 && id < cur, nil
}

// GenericPoolAmount returns the generic reward pool of a cycle
func (o *Oracle) GenericPoolAmount(tx *repository.Tx, id uint64) (decimal.Decimal, error) {
	c, err := o.get(tx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return c.GenericPool, nil
}

// GMPoolAmount returns the GM reward pool of a cycle
func (o *Oracle) GMPoolAmount(tx *repository.Tx, id uint64) (decimal.Decimal, error) {
	c, err := o.get(tx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return c.GMPool, nil
}

// SnapshotBlock returns the block a cycle's parameters are read at
func (o *Oracle) SnapshotBlock(tx *repository.Tx, id uint64) (uint64, error) {
	c, err := o.get(tx, id)
	if err != nil {
		return 0, err
	}
	return c.StartBlock, nil
}
