package access

import (
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"
)

// Capabilities checked per call
const (
	RoleAdmin         = "admin"
	RoleVoteRegistrar = "vote_registrar"
)

// ValidRole reports whether role is a known capability
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleVoteRegistrar
}

// Require fails with ErrUnauthorized unless addr holds role
func Require(tx *repository.Tx, role, addr string) error {
	ok, err := tx.HasRole(role, models.NormalizeAddress(addr))
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrUnauthorized.With("%q lacks %s", addr, role)
	}
	return nil
}

// Bootstrap grants role without a caller check. Only migrations use it.
func Bootstrap(tx *repository.Tx, role, addr string) error {
	if !ValidRole(role) {
		return errs.ErrInvalidRole.With("%q", role)
	}
	addr, err := models.CheckAddress(addr)
	if err != nil {
		return err
	}
	if err := tx.PutRole(role, addr); err != nil {
		return err
	}
	tx.Emit(models.Event{Type: models.EventRoleGranted, Account: addr, Detail: role})
	return nil
}

// Access is the capability table
type Access struct {
	store repository.Transactor
}

// New creates and returns a new Access instance
func New(store repository.Transactor) *Access {
	return &Access{store: store}
}

// Grant gives addr the role; caller must be an admin
func (a *Access) Grant(caller, role, addr string) error {
	return a.store.Update(func(tx *repository.Tx) error {
		if err := Require(tx, RoleAdmin, caller); err != nil {
			return err
		}
		return Bootstrap(tx, role, addr)
	})
}

// Revoke takes the role from addr; caller must be an admin
func (a *Access) Revoke(caller, role, addr string) error {
	return a.store.Update(func(tx *repository.Tx) error {
		if err := Require(tx, RoleAdmin, caller); err != nil {
			return err
		}
		if !ValidRole(role) {
			return errs.ErrInvalidRole.With("%q", role)
		}
		addr, err := models.CheckAddress(addr)
		if err != nil {
			return err
		}
		if err := tx.DeleteRole(role, addr); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventRoleRevoked, Account: addr, Counterparty: models.NormalizeAddress(caller), Detail: role})
		return nil
	})
}

// Has reports whether addr holds role
func (a *Access) Has(role, addr string) (bool, error) {
	var ok bool
	err := a.store.View(func(tx *repository.Tx) error {
		var err error
		ok, err = tx.HasRole(role, models.NormalizeAddress(addr))
		return err
	})
	return ok, err
}
