package leveling

import (
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"
)

// AttachNode binds a node to a token. Caller must own the token and own or manage the node.
// A node backs at most one token and a token holds at most one node.
func (e *Engine) AttachNode(caller string, nodeID, tokenID uint64) (*models.TokenView, error) {
	var view *models.TokenView
	err := e.store.Update(func(tx *repository.Tx) error {
		caller = models.NormalizeAddress(caller)
		tok, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}
		if tok.Owner != caller {
			return errs.ErrNotOwner
		}
		ok, err := e.ownsOrManages(tx, nodeID, caller)
		if err != nil {
			return err
		}
		if !ok {
			return errs.ErrNotOwnerOrManager.With("node %d", nodeID)
		}

		current, err := tx.AttachedToken(nodeID)
		if err != nil {
			return err
		}
		if current != 0 && current != tokenID {
			return errs.ErrNodeAlreadyAttached.With("node %d is on token %d", nodeID, current)
		}
		if tok.Attached() {
			return errs.ErrTokenAlreadyAttached.With("token %d holds node %d", tokenID, tok.AttachedNodeID)
		}

		tok.AttachedNodeID = nodeID
		if err := tx.PutToken(tok); err != nil {
			return err
		}
		if err := tx.SetAttachedToken(nodeID, tokenID); err != nil {
			return err
		}

		view, err = e.Evaluate(tx, tokenID)
		if err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventNodeAttached, Account: caller, TokenID: tokenID, NodeID: nodeID})
		return nil
	})
	return view, err
}

// DetachNode unbinds a node from a token. The token owner may detach, and so may whoever
// currently owns or manages the node, even when that is no longer the token owner.
func (e *Engine) DetachNode(caller string, nodeID, tokenID uint64) (*models.TokenView, error) {
	var view *models.TokenView
	err := e.store.Update(func(tx *repository.Tx) error {
		caller = models.NormalizeAddress(caller)
		tok, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}
		if tok.AttachedNodeID != nodeID {
			return errs.ErrNodeNotAttached.With("node %d, token %d", nodeID, tokenID)
		}

		allowed := tok.Owner == caller
		if !allowed {
			allowed, err = e.ownsOrManages(tx, nodeID, caller)
			if err != nil {
				return err
			}
		}
		if !allowed {
			return errs.ErrNotAuthorized
		}

		tok.AttachedNodeID = 0
		if err := tx.PutToken(tok); err != nil {
			return err
		}
		if err := tx.SetAttachedToken(nodeID, 0); err != nil {
			return err
		}

		view, err = e.Evaluate(tx, tokenID)
		if err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventNodeDetached, Account: caller, TokenID: tokenID, NodeID: nodeID})
		return nil
	})
	return view, err
}

func (e *Engine) ownsOrManages(tx *repository.Tx, nodeID uint64, addr string) (bool, error) {
	owner, err := e.nodes.OwnerOf(tx, nodeID)
	if err != nil {
		return false, err
	}
	if owner == addr {
		return true, nil
	}
	manager, err := e.nodes.ManagerOf(tx, nodeID)
	if err != nil {
		return false, err
	}
	return manager == addr, nil
}
