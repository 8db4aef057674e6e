package rewards

import (
	"gm-rewards/access"
	"gm-rewards/errs"
	"gm-rewards/logger"
	"gm-rewards/models"
	"gm-rewards/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Leveler resolves a voter's selected membership token and its level
type Leveler interface {
	SelectedToken(tx *repository.Tx, account string) (uint64, error)
	Evaluate(tx *repository.Tx, tokenID uint64) (*models.TokenView, error)
}

// CycleOracle defines cycle boundaries and pool sizes
type CycleOracle interface {
	CurrentCycle(tx *repository.Tx) (uint64, error)
	NextCycle(tx *repository.Tx) (uint64, error)
	IsCycleEnded(tx *repository.Tx, id uint64) (bool, error)
	GenericPoolAmount(tx *repository.Tx, id uint64) (decimal.Decimal, error)
	GMPoolAmount(tx *repository.Tx, id uint64) (decimal.Decimal, error)
	SnapshotBlock(tx *repository.Tx, id uint64) (uint64, error)
}

// Payer disburses rewards out of the vault
type Payer interface {
	Transfer(tx *repository.Tx, from, to string, amount decimal.Decimal) error
}

// Ledger accumulates per-cycle vote and GM weight and pays out both pools pro rata
type Ledger struct {
	store  repository.Transactor
	levels Leveler
	cycles CycleOracle
	payer  Payer
	vault  string
}

// NewLedger creates and returns a new Ledger paying rewards from vault
func NewLedger(store repository.Transactor, levels Leveler, cycles CycleOracle, payer Payer, vault string) *Ledger {
	return &Ledger{store: store, levels: levels, cycles: cycles, payer: payer, vault: models.NormalizeAddress(vault)}
}

// RegisterVote adds a vote's reward weight and GM weight to the cycle and voter totals.
// Only vote registrars may call it. A vote with no power is accepted and changes nothing.
func (l *Ledger) RegisterVote(caller string, v models.Vote) (*models.VoteReceipt, error) {
	var receipt *models.VoteReceipt
	err := l.store.Update(func(tx *repository.Tx) error {
		if err := access.Require(tx, access.RoleVoteRegistrar, caller); err != nil {
			return err
		}
		if v.CycleID == 0 {
			return errs.ErrInvalidCycle
		}
		voter, err := models.CheckAddress(v.Voter)
		if err != nil {
			return err
		}
		if v.RawVotes.IsNegative() || !v.RawVotes.IsInteger() {
			return errs.ErrInvalidAmount.With("raw votes %s", v.RawVotes)
		}
		if !v.Ballot.Valid() {
			return errs.ErrInvalidBallot.With("%q", v.Ballot)
		}
		ended, err := l.cycles.IsCycleEnded(tx, v.CycleID)
		if err != nil {
			return err
		}
		if ended {
			return errs.ErrCycleClosed.With("cycle %d", v.CycleID)
		}
		disabled, err := l.quadraticDisabledForCycle(tx, v.CycleID)
		if err != nil {
			return err
		}

		if err := tx.MarkParticipated(voter); err != nil {
			return err
		}
		receipt = &models.VoteReceipt{
			CycleID:      v.CycleID,
			Voter:        voter,
			RewardWeight: decimal.Zero,
			GMWeight:     decimal.Zero,
			Quadratic:    !disabled,
		}
		if v.RawVotes.IsZero() {
			tx.Emit(models.Event{Type: models.EventVoteRegistered, Account: voter, CycleID: v.CycleID, Amount: decimal.Zero, Detail: string(v.Ballot)})
			return nil
		}

		receipt.RewardWeight = v.RawVotes
		if !disabled {
			receipt.RewardWeight = Sqrt(v.RawVotes)
		}
		if !v.WeightedVotesHint.IsZero() && !v.WeightedVotesHint.Equal(receipt.RewardWeight) {
			logger.Logger.Debug("Weighted votes hint differs from computed weight",
				zap.String("voter", voter),
				zap.String("hint", v.WeightedVotesHint.String()),
				zap.String("computed", receipt.RewardWeight.String()))
		}

		if err := l.snapshotGMWeight(tx, v, receipt); err != nil {
			return err
		}
		if err := l.accumulate(tx, receipt); err != nil {
			return err
		}
		tx.Emit(models.Event{
			Type:    models.EventVoteRegistered,
			Account: voter,
			CycleID: v.CycleID,
			TokenID: receipt.TokenID,
			Amount:  receipt.RewardWeight,
			Detail:  string(v.Ballot) + ":" + v.ItemID,
		})
		return nil
	})
	return receipt, err
}

// snapshotGMWeight fills in the voter's GM weight as of now. A token, and the node backing it,
// contribute to a given ballot item at most once per cycle.
func (l *Ledger) snapshotGMWeight(tx *repository.Tx, v models.Vote, receipt *models.VoteReceipt) error {
	tokenID, err := l.levels.SelectedToken(tx, receipt.Voter)
	if err != nil || tokenID == 0 {
		return err
	}
	view, err := l.levels.Evaluate(tx, tokenID)
	if err != nil {
		return err
	}
	receipt.TokenID = tokenID
	receipt.Level = view.Level

	multipliers, err := tx.GetMultipliers()
	if err != nil {
		return err
	}
	factor, ok := multipliers[view.Level]
	if !ok || !factor.IsPositive() {
		return nil
	}

	item := v.ItemID
	used, err := tx.GMTokenUsed(v.CycleID, v.Ballot, item, tokenID)
	if err != nil {
		return err
	}
	nodeID := uint64(0)
	if view.NodeValid {
		nodeID = view.AttachedNodeID
	}
	if !used && nodeID != 0 {
		used, err = tx.GMNodeUsed(v.CycleID, v.Ballot, item, nodeID)
		if err != nil {
			return err
		}
	}
	if used {
		return nil
	}

	if err := tx.MarkGMToken(v.CycleID, v.Ballot, item, tokenID); err != nil {
		return err
	}
	if nodeID != 0 {
		if err := tx.MarkGMNode(v.CycleID, v.Ballot, item, nodeID); err != nil {
			return err
		}
	}
	receipt.GMWeight = factor
	return nil
}

func (l *Ledger) accumulate(tx *repository.Tx, receipt *models.VoteReceipt) error {
	totals, err := tx.GetCycleTotals(receipt.CycleID)
	if err != nil {
		return err
	}
	vw, existed, err := tx.GetVoterWeights(receipt.CycleID, receipt.Voter)
	if err != nil {
		return err
	}
	if !existed {
		totals.Voters++
	}

	totals.TotalWeight = totals.TotalWeight.Add(receipt.RewardWeight)
	totals.TotalGMWeight = totals.TotalGMWeight.Add(receipt.GMWeight)
	vw.Weight = vw.Weight.Add(receipt.RewardWeight)
	vw.GMWeight = vw.GMWeight.Add(receipt.GMWeight)

	if err := tx.PutCycleTotals(totals); err != nil {
		return err
	}
	return tx.PutVoterWeights(vw)
}

// ClaimReward pays a voter's share of both pools of an ended cycle. A voter claims at most once per cycle.
func (l *Ledger) ClaimReward(cycleID uint64, voter string) (*models.Reward, error) {
	var reward *models.Reward
	err := l.store.Update(func(tx *repository.Tx) error {
		voter, err := models.CheckAddress(voter)
		if err != nil {
			return err
		}
		if cycleID == 0 {
			return errs.ErrInvalidCycle
		}

		ended, err := l.cycles.IsCycleEnded(tx, cycleID)
		if err != nil {
			return err
		}
		if !ended {
			return errs.ErrCycleNotEnded.With("cycle %d", cycleID)
		}
		vw, ok, err := tx.GetVoterWeights(cycleID, voter)
		if err != nil {
			return err
		}
		if vw.Claimed {
			return errs.ErrAlreadyClaimed.With("cycle %d, voter %s", cycleID, voter)
		}
		if !ok || vw.Weight.IsZero() {
			return errs.ErrNothingToClaim.With("cycle %d, voter %s", cycleID, voter)
		}

		reward, err = l.compute(tx, cycleID, vw)
		if err != nil {
			return err
		}
		if err := l.payer.Transfer(tx, l.vault, voter, reward.Total); err != nil {
			return err
		}
		vw.Claimed = true
		reward.Claimed = true
		if err := tx.PutVoterWeights(vw); err != nil {
			return err
		}
		tx.Emit(models.Event{Type: models.EventRewardClaimed, Account: voter, CycleID: cycleID, Amount: reward.Total})
		return nil
	})
	return reward, err
}

func (l *Ledger) compute(tx *repository.Tx, cycleID uint64, vw *models.VoterWeights) (*models.Reward, error) {
	totals, err := tx.GetCycleTotals(cycleID)
	if err != nil {
		return nil, err
	}
	genericPool, err := l.cycles.GenericPoolAmount(tx, cycleID)
	if err != nil {
		return nil, err
	}
	gmPool, err := l.cycles.GMPoolAmount(tx, cycleID)
	if err != nil {
		return nil, err
	}

	r := &models.Reward{CycleID: cycleID, Voter: vw.Voter, Generic: decimal.Zero, GM: decimal.Zero, Claimed: vw.Claimed}
	if totals.TotalWeight.IsPositive() {
		r.Generic = MulDiv(genericPool, vw.Weight, totals.TotalWeight)
	}
	if totals.TotalGMWeight.IsPositive() {
		r.GM = MulDiv(gmPool, vw.GMWeight, totals.TotalGMWeight)
	}
	r.Total = r.Generic.Add(r.GM)
	return r, nil
}

// Reward previews a voter's share of both pools without claiming it
func (l *Ledger) Reward(cycleID uint64, voter string) (*models.Reward, error) {
	var reward *models.Reward
	err := l.store.View(func(tx *repository.Tx) error {
		if cycleID == 0 {
			return errs.ErrInvalidCycle
		}
		vw, _, err := tx.GetVoterWeights(cycleID, models.NormalizeAddress(voter))
		if err != nil {
			return err
		}
		reward, err = l.compute(tx, cycleID, vw)
		return err
	})
	return reward, err
}

// GetReward returns a voter's share of the generic pool
func (l *Ledger) GetReward(cycleID uint64, voter string) (decimal.Decimal, error) {
	r, err := l.Reward(cycleID, voter)
	if err != nil {
		return decimal.Zero, err
	}
	return r.Generic, nil
}

// GetGMReward returns a voter's share of the GM pool
func (l *Ledger) GetGMReward(cycleID uint64, voter string) (decimal.Decimal, error) {
	r, err := l.Reward(cycleID, voter)
	if err != nil {
		return decimal.Zero, err
	}
	return r.GM, nil
}

// CycleTotals returns a cycle's weight totals
func (l *Ledger) CycleTotals(cycleID uint64) (*models.CycleTotals, error) {
	var totals *models.CycleTotals
	err := l.store.View(func(tx *repository.Tx) error {
		var err error
		totals, err = tx.GetCycleTotals(cycleID)
		return err
	})
	return totals, err
}

// VoterWeights returns a voter's weights in a cycle
func (l *Ledger) VoterWeights(cycleID uint64, voter string) (*models.VoterWeights, error) {
	var vw *models.VoterWeights
	err := l.store.View(func(tx *repository.Tx) error {
		var err error
		vw, _, err = tx.GetVoterWeights(cycleID, models.NormalizeAddress(voter))
		return err
	})
	return vw, err
}
