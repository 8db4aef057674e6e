package registry

import (
	"gm-rewards/access"
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"
)

// Registry owns the boost-granting nodes: their tier, holder and delegated manager
type Registry struct {
	store repository.Transactor
}

// New creates and returns a new Registry instance
func New(store repository.Transactor) *Registry {
	return &Registry{store: store}
}

// Register adds a node; caller must be an admin
func (r *Registry) Register(caller string, id uint64, owner string, tier models.Tier) (*models.Node, error) {
	var node *models.Node
	err := r.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleAdmin, caller); err != nil {
			return err
		}
		if id == 0 {
			return errs.ErrNodeNotFound.With("node id 0 is reserved")
		}
		if tier == 0 || tier > models.MaxTier {
			return errs.ErrInvalidTier.With("%d", tier)
		}
		owner, err := models.CheckAddress(owner)
		if err != nil {
			return err
		}
		exists, err := tx.HasNode(id)
		if err != nil {
			return err
		}
		if exists {
			return errs.ErrNodeAlreadyExists.With("id %d", id)
		}

		node = &models.Node{
			ID:           id,
			Owner:        owner,
			Tier:         tier,
			RegisteredAt: tx.Block(),
		}
		if err := tx.PutNode(node); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventNodeRegistered, Account: node.Owner, NodeID: id})
		return nil
	})
	return node, err
}

// Transfer hands a node to a new holder and drops any delegation.
// An attachment survives the transfer; the membership token loses its bonus lazily.
func (r *Registry) Transfer(caller string, id uint64, to string) error {
	return r.store.Update(func(tx *repository.Tx) error {
		node, err := tx.GetNode(id)
		if err != nil {
			return err
		}
		if node.Owner != models.NormalizeAddress(caller) {
			return errs.ErrNotOwnerOrManager
		}
		to, err := models.CheckAddress(to)
		if err != nil {
			return err
		}
		from := node.Owner
		node.Owner = to
		node.Manager = ""
		if err := tx.PutNode(node); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventNodeTransferred, Account: from, Counterparty: node.Owner, NodeID: id})
		return nil
	})
}

// SetManager delegates a node to manager; an empty or zero manager removes the delegation
func (r *Registry) SetManager(caller string, id uint64, manager string) error {
	return r.store.Update(func(tx *repository.Tx) error {
		node, err := tx.GetNode(id)
		if err != nil {
			return err
		}
		if node.Owner != models.NormalizeAddress(caller) {
			return errs.ErrNotOwnerOrManager
		}
		node.Manager = ""
		if !models.IsZeroAddress(manager) {
			if node.Manager, err = models.CheckAddress(manager); err != nil {
				return err
			}
		}
		if err := tx.PutNode(node); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventNodeManagerSet, Account: node.Owner, Counterparty: node.Manager, NodeID: id})
		return nil
	})
}

// Get returns a node
func (r *Registry) Get(id uint64) (*models.Node, error) {
	var node *models.Node
	err := r.store.View(func(tx *repository.Tx) error {
		var err error
		node, err = tx.GetNode(id)
		return err
	})
	return node, err
}

// OwnerOf returns the node's holder
func (r *Registry) OwnerOf(tx *repository.Tx, id uint64) (string, error) {
	node, err := tx.GetNode(id)
	if err != nil {
		return "", err
	}
	return node.Owner, nil
}

// TierOf returns the node's tier
func (r *Registry) TierOf(tx *repository.Tx, id uint64) (models.Tier, error) {
	node, err := tx.GetNode(id)
	if err != nil {
		return 0, err
	}
	return node.Tier, nil
}

// ManagerOf returns the node's delegated manager, or its owner when undelegated
func (r *Registry) ManagerOf(tx *repository.Tx, id uint64) (string, error) {
	node, err := tx.GetNode(id)
	if err != nil {
		return "", err
	}
	if node.Manager == "" {
		return node.Owner, nil
	}
	return node.Manager, nil
}
