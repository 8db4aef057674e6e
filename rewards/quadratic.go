package rewards

import (
	"gm-rewards/access"
	"gm-rewards/models"
	"gm-rewards/repository"
)

func quadraticDisabledAt(tx *repository.Tx, block uint64) (bool, error) {
	v, ok, err := tx.CheckpointAt(repository.QuadraticLog, block)
	if err != nil {
		return false, err
	}
	return ok && v == 1, nil
}

func (l *Ledger) quadraticDisabledForCycle(tx *repository.Tx, cycleID uint64) (bool, error) {
	snapshot, err := l.cycles.SnapshotBlock(tx, cycleID)
	if err != nil {
		return false, err
	}
	return quadraticDisabledAt(tx, snapshot)
}

// SetQuadraticDisabled flips the global quadratic-rewarding switch. Cycles read the switch at
// their snapshot block, so a change lands with the next cycle.
func (l *Ledger) SetQuadraticDisabled(caller string, disabled bool) error {
	return l.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleAdmin, caller); err != nil {
			return err
		}
		v := uint64(0)
		if disabled {
			v = 1
		}
		if err := tx.AppendCheckpoint(repository.QuadraticLog, v); err != nil {
			return err
		}
		detail := "enabled"
		if disabled {
			detail = "disabled"
		}
		tx.Emit(models.Event{Type: models.EventQuadraticToggled, Account: models.NormalizeAddress(caller), Detail: detail})
		return nil
	})
}

// IsQuadraticDisabled returns the live switch value
func (l *Ledger) IsQuadraticDisabled() (bool, error) {
	var disabled bool
	err := l.store.View(func(tx *repository.Tx) error {
		var err error
		disabled, err = quadraticDisabledAt(tx, tx.Block())
		return err
	})
	return disabled, err
}

// IsQuadraticDisabledForCycle returns the switch value in effect for a cycle
func (l *Ledger) IsQuadraticDisabledForCycle(cycleID uint64) (bool, error) {
	var disabled bool
	err := l.store.View(func(tx *repository.Tx) error {
		var err error
		disabled, err = l.quadraticDisabledForCycle(tx, cycleID)
		return err
	})
	return disabled, err
}

// IsQuadraticDisabledForCurrentCycle returns the switch value in effect for the open cycle
func (l *Ledger) IsQuadraticDisabledForCurrentCycle() (bool, error) {
	var disabled bool
	err := l.store.View(func(tx *repository.Tx) error {
		cur, err := l.cycles.CurrentCycle(tx)
		if err != nil {
			return err
		}
		disabled, err = l.quadraticDisabledForCycle(tx, cur)
		return err
	})
	return disabled, err
}
