package repository

import (
	"encoding/json"
	"fmt"

	"gm-rewards/models"

	"github.com/shopspring/decimal"
)

// CurrentCycleID returns the open cycle, 0 before the first cycle starts
func (t *Tx) CurrentCycleID() (uint64, error) {
	var id uint64
	_, err := t.getJSON(keyCurrentCycle, &id)
	return id, err
}

// SetCurrentCycleID moves the open cycle pointer
func (t *Tx) SetCurrentCycleID(id uint64) error {
	return t.putJSON(keyCurrentCycle, id)
}

// GetCycle loads a cycle definition; ok is false for unknown cycles
func (t *Tx) GetCycle(id uint64) (*models.Cycle, bool, error) {
	var c models.Cycle
	ok, err := t.getJSON(cycleKey(id), &c)
	if err != nil || !ok {
		return nil, false, err
	}
	return &c, true, nil
}

// PutCycle stores a cycle definition
func (t *Tx) PutCycle(c *models.Cycle) error {
	return t.putJSON(cycleKey(c.ID), c)
}

// GetCycleTotals loads a cycle's weight totals, zero when no vote registered yet
func (t *Tx) GetCycleTotals(id uint64) (*models.CycleTotals, error) {
	ct := models.CycleTotals{CycleID: id, TotalWeight: decimal.Zero, TotalGMWeight: decimal.Zero}
	if _, err := t.getJSON(cycleTotalsKey(id), &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// PutCycleTotals stores a cycle's weight totals
func (t *Tx) PutCycleTotals(ct *models.CycleTotals) error {
	return t.putJSON(cycleTotalsKey(ct.CycleID), ct)
}

// GetVoterWeights loads a voter's weights in a cycle; ok is false when the voter has no record
func (t *Tx) GetVoterWeights(cycleID uint64, voter string) (*models.VoterWeights, bool, error) {
	vw := models.VoterWeights{CycleID: cycleID, Voter: voter, Weight: decimal.Zero, GMWeight: decimal.Zero}
	ok, err := t.getJSON(cycleVoterKey(cycleID, voter), &vw)
	if err != nil {
		return nil, false, err
	}
	return &vw, ok, nil
}

// PutVoterWeights stores a voter's weights in a cycle
func (t *Tx) PutVoterWeights(vw *models.VoterWeights) error {
	return t.putJSON(cycleVoterKey(vw.CycleID, vw.Voter), vw)
}

// GMTokenUsed reports whether a token already contributed GM weight to a ballot item in a cycle
func (t *Tx) GMTokenUsed(cycleID uint64, ballot models.Ballot, item string, tokenID uint64) (bool, error) {
	return t.has(gmTokenKey(cycleID, ballot, item, tokenID))
}

// GMNodeUsed reports whether a node already contributed GM weight to a ballot item in a cycle
func (t *Tx) GMNodeUsed(cycleID uint64, ballot models.Ballot, item string, nodeID uint64) (bool, error) {
	return t.has(gmNodeKey(cycleID, ballot, item, nodeID))
}

// MarkGMToken records a token's GM contribution to a ballot item
func (t *Tx) MarkGMToken(cycleID uint64, ballot models.Ballot, item string, tokenID uint64) error {
	return t.putJSON(gmTokenKey(cycleID, ballot, item, tokenID), t.block)
}

// MarkGMNode records a node's GM contribution to a ballot item
func (t *Tx) MarkGMNode(cycleID uint64, ballot models.Ballot, item string, nodeID uint64) error {
	return t.putJSON(gmNodeKey(cycleID, ballot, item, nodeID), t.block)
}

// CycleVoters returns every voter record of a cycle as of the last committed block
func (s *Store) CycleVoters(cycleID uint64) ([]*models.VoterWeights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iter := s.db.NewPrefixIterator([]byte(cycleVoterPrefix(cycleID)))
	defer iter.Release()

	var out []*models.VoterWeights
	for iter.Next() {
		var vw models.VoterWeights
		if err := json.Unmarshal(iter.Value(), &vw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Key(), err)
		}
		out = append(out, &vw)
	}
	return out, iter.Error()
}
