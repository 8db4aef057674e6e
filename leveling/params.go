package leveling

import (
	"gm-rewards/access"
	"gm-rewards/errs"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
)

// ValidateThresholds checks that thresholds are positive whole amounts in strictly increasing order
// and cover every level up to maxLevel
func ValidateThresholds(thresholds []decimal.Decimal, maxLevel int) error {
	prev := decimal.Zero
	for i, th := range thresholds {
		if !th.IsInteger() || !th.GreaterThan(prev) {
			return errs.ErrInvalidThresholds.With("index %d: %s", i, th)
		}
		prev = th
	}
	if len(thresholds) < maxLevel-1 {
		return errs.ErrMissingThresholds.With("max level %d needs %d thresholds, have %d", maxLevel, maxLevel-1, len(thresholds))
	}
	return nil
}

// Params returns the current leveling configuration
func (e *Engine) Params() (*models.LevelParams, error) {
	var p *models.LevelParams
	err := e.store.View(func(tx *repository.Tx) error {
		var err error
		p, err = tx.GetLevelParams()
		return err
	})
	return p, err
}

// SetThresholds replaces the donation thresholds
func (e *Engine) SetThresholds(caller string, thresholds []decimal.Decimal) error {
	return e.updateParams(caller, func(p *models.LevelParams) error {
		if err := ValidateThresholds(thresholds, p.MaxLevel); err != nil {
			return err
		}
		p.Thresholds = thresholds
		return nil
	})
}

// SetMaxLevel moves the level ceiling. Thresholds must exist for every level up to it.
func (e *Engine) SetMaxLevel(caller string, maxLevel int) error {
	return e.updateParams(caller, func(p *models.LevelParams) error {
		if maxLevel < 1 {
			return errs.ErrInvalidLevel.With("%d", maxLevel)
		}
		if err := ValidateThresholds(p.Thresholds, maxLevel); err != nil {
			return err
		}
		p.MaxLevel = maxLevel
		return nil
	})
}

// SetNodeBonus sets the level a valid node of tier grants; level 0 removes the bonus
func (e *Engine) SetNodeBonus(caller string, tier models.Tier, level int) error {
	return e.updateParams(caller, func(p *models.LevelParams) error {
		if tier == 0 || tier > models.MaxTier {
			return errs.ErrInvalidTier.With("%d", tier)
		}
		if level < 0 {
			return errs.ErrInvalidLevel.With("%d", level)
		}
		if level == 0 {
			delete(p.NodeBonus, tier)
		} else {
			p.NodeBonus[tier] = level
		}
		return nil
	})
}

// SetMintPaused pauses or resumes minting
func (e *Engine) SetMintPaused(caller string, paused bool) error {
	return e.updateParams(caller, func(p *models.LevelParams) error {
		p.MintPaused = paused
		return nil
	})
}

func (e *Engine) updateParams(caller string, fn func(p *models.LevelParams) error) error {
	return e.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleAdmin, caller); err != nil {
			return err
		}
		p, err := tx.GetLevelParams()
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := tx.PutLevelParams(p); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventLevelParamsSet, Account: models.NormalizeAddress(caller)})
		return nil
	})
}
