package leveling

import (
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
)

// NodeRegistry is the external source of node ownership, delegation and tier
type NodeRegistry interface {
	OwnerOf(tx *repository.Tx, nodeID uint64) (string, error)
	TierOf(tx *repository.Tx, nodeID uint64) (models.Tier, error)
	ManagerOf(tx *repository.Tx, nodeID uint64) (string, error)
}

// ValueSink moves donated value from the caller to the collector
type ValueSink interface {
	Transfer(tx *repository.Tx, from, to string, amount decimal.Decimal) error
}

// Eligibility decides whether an account may mint
type Eligibility interface {
	HasParticipated(tx *repository.Tx, account string) (bool, error)
}

// ParticipationRecord reads the participation flag the reward ledger sets when it registers a vote
type ParticipationRecord struct{}

func (ParticipationRecord) HasParticipated(tx *repository.Tx, account string) (bool, error) {
	return tx.HasParticipated(account)
}

// Config holds the engine settings that are not admin-mutable at runtime
type Config struct {
	Collector            string // receives donations
	RequireParticipation bool   // gate minting on the eligibility predicate
}

// Engine owns membership tokens and derives their levels
type Engine struct {
	store    repository.Transactor
	nodes    NodeRegistry
	sink     ValueSink
	eligible Eligibility
	cfg      Config
}

// NewEngine creates and returns a new Engine
func NewEngine(store repository.Transactor, nodes NodeRegistry, sink ValueSink, eligible Eligibility, cfg Config) *Engine {
	cfg.Collector = models.NormalizeAddress(cfg.Collector)
	return &Engine{store: store, nodes: nodes, sink: sink, eligible: eligible, cfg: cfg}
}

// Mint creates a token for caller. It becomes the selection if caller has none.
func (e *Engine) Mint(caller string) (*models.Token, error) {
	var tok *models.Token
	err := e.store.Update(func(tx *repository.Tx) error {
		caller, err := models.CheckAddress(caller)
		if err != nil {
			return err
		}

		params, err := tx.GetLevelParams()
		if err != nil {
			return err
		}
		if params.MintPaused {
			return errs.ErrMintingPaused
		}
		if e.cfg.RequireParticipation {
			ok, err := e.eligible.HasParticipated(tx, caller)
			if err != nil {
				return err
			}
			if !ok {
				return errs.ErrNotEligible.With("%s", caller)
			}
		}

		id, err := tx.NextTokenID()
		if err != nil {
			return err
		}
		tok = &models.Token{ID: id, Owner: caller, TotalDonated: decimal.Zero, MintedAt: tx.Block()}
		if err := tx.PutToken(tok); err != nil {
			return err
		}

		acct, err := tx.GetAccount(caller)
		if err != nil {
			return err
		}
		acct.Tokens = append(acct.Tokens, id)
		if acct.Selected == 0 {
			if err := setSelection(tx, acct, id); err != nil {
				return err
			}
		}
		if err := tx.PutAccount(acct); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventTokenMinted, Account: caller, TokenID: id})
		return nil
	})
	return tok, err
}

// Upgrade donates amount from caller to the collector and credits it to the token
func (e *Engine) Upgrade(caller string, tokenID uint64, amount decimal.Decimal) (*models.TokenView, error) {
	var view *models.TokenView
	err := e.store.Update(func(tx *repository.Tx) error {
		caller = models.NormalizeAddress(caller)
		if !amount.IsPositive() || !amount.IsInteger() {
			return errs.ErrInvalidAmount.With("%s", amount)
		}
		tok, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}
		if tok.Owner != caller {
			return errs.ErrNotOwner
		}
		params, err := tx.GetLevelParams()
		if err != nil {
			return err
		}
		if BaseLevel(tok.TotalDonated, params.Thresholds) >= params.MaxLevel {
			return errs.ErrAboveMaxLevel.With("token %d", tokenID)
		}

		if err := e.sink.Transfer(tx, caller, e.cfg.Collector, amount); err != nil {
			return err
		}
		tok.TotalDonated = tok.TotalDonated.Add(amount)
		if err := tx.PutToken(tok); err != nil {
			return err
		}

		view, err = e.Evaluate(tx, tokenID)
		if err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventTokenUpgraded, Account: caller, TokenID: tokenID, Amount: amount})
		return nil
	})
	return view, err
}

// Transfer moves a token from caller to another account. Attached tokens cannot move.
func (e *Engine) Transfer(caller, to string, tokenID uint64) error {
	return e.store.Update(func(tx *repository.Tx) error {
		to, err := models.CheckAddress(to)
		if err != nil {
			return err
		}
		caller = models.NormalizeAddress(caller)
		tok, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}
		if tok.Owner != caller {
			return errs.ErrNotOwner
		}
		if tok.Attached() {
			return errs.ErrAttachedToNode.With("token %d holds node %d", tokenID, tok.AttachedNodeID)
		}
		if to == caller {
			return errs.ErrSelfTransfer
		}

		if err := releaseToken(tx, caller, tokenID); err != nil {
			return err
		}
		recv, err := tx.GetAccount(to)
		if err != nil {
			return err
		}
		recv.Tokens = append(recv.Tokens, tokenID)
		if recv.Selected == 0 {
			if err := setSelection(tx, recv, tokenID); err != nil {
				return err
			}
		}
		if err := tx.PutAccount(recv); err != nil {
			return err
		}

		tok.Owner = to
		if err := tx.PutToken(tok); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventTokenTransferred, Account: caller, Counterparty: to, TokenID: tokenID})
		return nil
	})
}

// Burn destroys a token owned by caller. The node must be detached first.
func (e *Engine) Burn(caller string, tokenID uint64) error {
	return e.store.Update(func(tx *repository.Tx) error {
		caller = models.NormalizeAddress(caller)
		tok, err := tx.GetToken(tokenID)
		if err != nil {
			return err
		}
		if tok.Owner != caller {
			return errs.ErrNotOwner
		}
		if tok.Attached() {
			return errs.ErrAttachedToNode.With("token %d holds node %d", tokenID, tok.AttachedNodeID)
		}
		if err := releaseToken(tx, caller, tokenID); err != nil {
			return err
		}
		if err := tx.DeleteToken(tokenID); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventTokenBurned, Account: caller, TokenID: tokenID, Amount: tok.TotalDonated})
		return nil
	})
}

// releaseToken drops tokenID from owner's holdings and moves the selection
// to the highest remaining id when it was selected
func releaseToken(tx *repository.Tx, owner string, tokenID uint64) error {
	acct, err := tx.GetAccount(owner)
	if err != nil {
		return err
	}
	kept := acct.Tokens[:0]
	for _, id := range acct.Tokens {
		if id != tokenID {
			kept = append(kept, id)
		}
	}
	acct.Tokens = kept

	if acct.Selected == tokenID {
		next := uint64(0)
		if len(acct.Tokens) > 0 {
			next = acct.Tokens[len(acct.Tokens)-1]
		}
		if err := setSelection(tx, acct, next); err != nil {
			return err
		}
	}
	return tx.PutAccount(acct)
}
