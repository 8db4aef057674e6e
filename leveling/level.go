package leveling

import (
	"errors"

	"gm-rewards/errs"
	"gm-rewards/logger"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BaseLevel returns the level earned by donation alone. Level 1 is the floor;
// each threshold at or below totalDonated adds one.
func BaseLevel(totalDonated decimal.Decimal, thresholds []decimal.Decimal) int {
	level := 1
	for _, th := range thresholds {
		if th.GreaterThan(totalDonated) {
			break
		}
		level++
	}
	return level
}

// EffectiveLevel combines the donation level with a node bonus and clamps to the ceiling
func EffectiveLevel(base, bonus, maxLevel int) int {
	level := base
	if bonus > level {
		level = bonus
	}
	if level > maxLevel {
		level = maxLevel
	}
	return level
}

// Evaluate computes a token's level from current state. Nothing is cached, so changes
// in node ownership or delegation show up on the next read.
func (e *Engine) Evaluate(tx *repository.Tx, tokenID uint64) (*models.TokenView, error) {
	tok, err := tx.GetToken(tokenID)
	if err != nil {
		return nil, err
	}
	params, err := tx.GetLevelParams()
	if err != nil {
		return nil, err
	}

	view := &models.TokenView{Token: *tok}
	view.BaseLevel = BaseLevel(tok.TotalDonated, params.Thresholds)
	if tok.Attached() {
		valid, tier, err := e.nodeBacksOwner(tx, tok.AttachedNodeID, tok.Owner)
		if err != nil {
			return nil, err
		}
		view.NodeValid = valid
		if valid {
			view.BonusLevel = params.NodeBonus[tier]
		}
	}
	view.Level = EffectiveLevel(view.BaseLevel, view.BonusLevel, params.MaxLevel)
	return view, nil
}

// LevelOf returns a token's effective level
func (e *Engine) LevelOf(tx *repository.Tx, tokenID uint64) (int, error) {
	view, err := e.Evaluate(tx, tokenID)
	if err != nil {
		return 0, err
	}
	return view.Level, nil
}

// nodeBacksOwner reports whether the node is held or managed by owner, and its tier
func (e *Engine) nodeBacksOwner(tx *repository.Tx, nodeID uint64, owner string) (bool, models.Tier, error) {
	nodeOwner, err := e.nodes.OwnerOf(tx, nodeID)
	if errors.Is(err, errs.ErrNodeNotFound) {
		logger.Logger.Warn("Attached node missing from registry", zap.Uint64("node_id", nodeID))
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	manager, err := e.nodes.ManagerOf(tx, nodeID)
	if err != nil {
		return false, 0, err
	}
	if nodeOwner != owner && manager != owner {
		return false, 0, nil
	}
	tier, err := e.nodes.TierOf(tx, nodeID)
	if err != nil {
		return false, 0, err
	}
	return true, tier, nil
}

// Token returns a token with its level evaluated now
func (e *Engine) Token(tokenID uint64) (*models.TokenView, error) {
	var view *models.TokenView
	err := e.store.View(func(tx *repository.Tx) error {
		var err error
		view, err = e.Evaluate(tx, tokenID)
		return err
	})
	return view, err
}

// Level returns a token's effective level evaluated now
func (e *Engine) Level(tokenID uint64) (int, error) {
	var level int
	err := e.store.View(func(tx *repository.Tx) error {
		var err error
		level, err = e.LevelOf(tx, tokenID)
		return err
	})
	return level, err
}
