package repository

import (
	"sort"

	"gm-rewards/errs"
	"gm-rewards/models"
)

// GetToken loads a token, failing with ErrTokenNotFound when it does not exist
func (t *Tx) GetToken(id uint64) (*models.Token, error) {
	var tok models.Token
	ok, err := t.getJSON(tokenKey(id), &tok)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrTokenNotFound.With("id %d", id)
	}
	return &tok, nil
}

// PutToken stores a token
func (t *Tx) PutToken(tok *models.Token) error {
	return t.putJSON(tokenKey(tok.ID), tok)
}

// DeleteToken removes a token
func (t *Tx) DeleteToken(id uint64) error {
	return t.delete(tokenKey(id))
}

// NextTokenID allocates the next token id. Ids start at 1 and are never reused.
func (t *Tx) NextTokenID() (uint64, error) {
	var next uint64
	if _, err := t.getJSON(keyNextToken, &next); err != nil {
		return 0, err
	}
	if next == 0 {
		next = 1
	}
	if err := t.putJSON(keyNextToken, next+1); err != nil {
		return 0, err
	}
	return next, nil
}

// GetAccount loads an account, returning an empty account when none is stored
func (t *Tx) GetAccount(addr string) (*models.Account, error) {
	acct := models.Account{Address: addr}
	if _, err := t.getJSON(accountKey(addr), &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// PutAccount stores an account, keeping its token list sorted
func (t *Tx) PutAccount(acct *models.Account) error {
	sort.Slice(acct.Tokens, func(i, j int) bool { return acct.Tokens[i] < acct.Tokens[j] })
	if len(acct.Tokens) == 0 && acct.Selected == 0 {
		return t.delete(accountKey(acct.Address))
	}
	return t.putJSON(accountKey(acct.Address), acct)
}
