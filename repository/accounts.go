package repository

import (
	"github.com/shopspring/decimal"
)

// GetBalance returns an account's spendable balance
func (t *Tx) GetBalance(addr string) (decimal.Decimal, error) {
	bal := decimal.Zero
	_, err := t.getJSON(balanceKey(addr), &bal)
	return bal, err
}

// PutBalance stores an account's spendable balance
func (t *Tx) PutBalance(addr string, bal decimal.Decimal) error {
	if bal.IsZero() {
		return t.delete(balanceKey(addr))
	}
	return t.putJSON(balanceKey(addr), bal)
}

// HasRole reports whether addr holds role
func (t *Tx) HasRole(role, addr string) (bool, error) {
	return t.has(roleKey(role, addr))
}

// PutRole grants role to addr
func (t *Tx) PutRole(role, addr string) error {
	return t.putJSON(roleKey(role, addr), t.block)
}

// DeleteRole revokes role from addr
func (t *Tx) DeleteRole(role, addr string) error {
	return t.delete(roleKey(role, addr))
}

// HasParticipated reports whether addr ever had a vote registered
func (t *Tx) HasParticipated(addr string) (bool, error) {
	return t.has(participatedKey(addr))
}

// MarkParticipated records that addr had a vote registered
func (t *Tx) MarkParticipated(addr string) error {
	ok, err := t.HasParticipated(addr)
	if err != nil || ok {
		return err
	}
	return t.putJSON(participatedKey(addr), t.block)
}
