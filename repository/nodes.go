package repository

import (
	"gm-rewards/errs"
	"gm-rewards/models"
)

// GetNode loads a registry node, failing with ErrNodeNotFound when it does not exist
func (t *Tx) GetNode(id uint64) (*models.Node, error) {
	var n models.Node
	ok, err := t.getJSON(nodeKey(id), &n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNodeNotFound.With("id %d", id)
	}
	return &n, nil
}

// HasNode reports whether a registry node exists
func (t *Tx) HasNode(id uint64) (bool, error) {
	return t.has(nodeKey(id))
}

// PutNode stores a registry node
func (t *Tx) PutNode(n *models.Node) error {
	return t.putJSON(nodeKey(n.ID), n)
}

// AttachedToken returns the token a node is attached to, 0 when none
func (t *Tx) AttachedToken(nodeID uint64) (uint64, error) {
	var tokenID uint64
	_, err := t.getJSON(attachmentKey(nodeID), &tokenID)
	return tokenID, err
}

// SetAttachedToken records the node -> token side of an attachment; tokenID 0 clears it
func (t *Tx) SetAttachedToken(nodeID, tokenID uint64) error {
	if tokenID == 0 {
		return t.delete(attachmentKey(nodeID))
	}
	return t.putJSON(attachmentKey(nodeID), tokenID)
}
