package leveling

import (
	"gm-rewards/access"
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"
)

// setSelection points acct at tokenID and appends the change to its history
func setSelection(tx *repository.Tx, acct *models.Account, tokenID uint64) error {
	acct.Selected = tokenID
	if err := tx.AppendCheckpoint(repository.SelectionLog(acct.Address), tokenID); err != nil {
		return err
	}
	tx.Emit(models.Event{Type: models.EventTokenSelected, Account: acct.Address, TokenID: tokenID})
	return nil
}

// Select makes one of caller's tokens the selected one
func (e *Engine) Select(caller string, tokenID uint64) error {
	return e.store.Update(func(tx *repository.Tx) error {
		return selectToken(tx, models.NormalizeAddress(caller), tokenID)
	})
}

// SelectFor sets account's selection on its behalf; caller must be an admin
func (e *Engine) SelectFor(caller, account string, tokenID uint64) error {
	return e.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleAdmin, caller); err != nil {
			return err
		}
		return selectToken(tx, models.NormalizeAddress(account), tokenID)
	})
}

func selectToken(tx *repository.Tx, account string, tokenID uint64) error {
	tok, err := tx.GetToken(tokenID)
	if err != nil {
		return err
	}
	if tok.Owner != account {
		return errs.ErrNotOwner
	}
	acct, err := tx.GetAccount(account)
	if err != nil {
		return err
	}
	if err := setSelection(tx, acct, tokenID); err != nil {
		return err
	}
	return tx.PutAccount(acct)
}

// SelectedOf returns the token account has selected inside tx, 0 for none
func SelectedOf(tx *repository.Tx, account string) (uint64, error) {
	acct, err := tx.GetAccount(models.NormalizeAddress(account))
	if err != nil {
		return 0, err
	}
	return acct.Selected, nil
}

// Account returns an account's holdings and selection
func (e *Engine) Account(account string) (*models.Account, error) {
	var acct *models.Account
	err := e.store.View(func(tx *repository.Tx) error {
		var err error
		acct, err = tx.GetAccount(models.NormalizeAddress(account))
		return err
	})
	return acct, err
}

// SelectedAt returns the token account had selected as of block, 0 when none.
// Answers never change once block has committed.
func (e *Engine) SelectedAt(account string, block uint64) (uint64, error) {
	var tokenID uint64
	err := e.store.View(func(tx *repository.Tx) error {
		if block > tx.Block() {
			return errs.ErrInvalidBlockNumber.With("%d > %d", block, tx.Block())
		}
		var err error
		tokenID, _, err = tx.CheckpointAt(repository.SelectionLog(models.NormalizeAddress(account)), block)
		return err
	})
	return tokenID, err
}

// SelectionHistory returns every selection change of account
func (e *Engine) SelectionHistory(account string) ([]models.Checkpoint, error) {
	var out []models.Checkpoint
	err := e.store.View(func(tx *repository.Tx) error {
		var err error
		out, err = tx.CheckpointHistory(repository.SelectionLog(models.NormalizeAddress(account)))
		return err
	})
	return out, err
}

// SelectedToken returns the token account has selected inside tx
func (e *Engine) SelectedToken(tx *repository.Tx, account string) (uint64, error) {
	return SelectedOf(tx, account)
}
