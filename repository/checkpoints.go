package repository

import (
	"sort"

	"gm-rewards/models"
)

// CheckpointLen returns the number of entries in a checkpoint log
func (t *Tx) CheckpointLen(log string) (uint64, error) {
	var n uint64
	_, err := t.getJSON(checkpointLenKey(log), &n)
	return n, err
}

// AppendCheckpoint records value at the current block. Existing entries are never rewritten.
func (t *Tx) AppendCheckpoint(log string, value uint64) error {
	n, err := t.CheckpointLen(log)
	if err != nil {
		return err
	}
	cp := models.Checkpoint{Block: t.block, Value: value}
	if err := t.putJSON(checkpointKey(log, n), cp); err != nil {
		return err
	}
	return t.putJSON(checkpointLenKey(log), n+1)
}

// Checkpoint returns entry idx of a log
func (t *Tx) Checkpoint(log string, idx uint64) (models.Checkpoint, error) {
	var cp models.Checkpoint
	_, err := t.getJSON(checkpointKey(log, idx), &cp)
	return cp, err
}

// CheckpointAt returns the value of the latest entry at or before block.
// ok is false when the log has no entry that old.
func (t *Tx) CheckpointAt(log string, block uint64) (value uint64, ok bool, err error) {
	n, err := t.CheckpointLen(log)
	if err != nil || n == 0 {
		return 0, false, err
	}

	var searchErr error
	// first index whose block is after the reference point
	idx := sort.Search(int(n), func(i int) bool {
		if searchErr != nil {
			return true
		}
		cp, err := t.Checkpoint(log, uint64(i))
		if err != nil {
			searchErr = err
			return true
		}
		return cp.Block > block
	})
	if searchErr != nil {
		return 0, false, searchErr
	}
	if idx == 0 {
		return 0, false, nil
	}
	cp, err := t.Checkpoint(log, uint64(idx-1))
	if err != nil {
		return 0, false, err
	}
	return cp.Value, true, nil
}

// CheckpointHistory returns every entry of a log in append order
func (t *Tx) CheckpointHistory(log string) ([]models.Checkpoint, error) {
	n, err := t.CheckpointLen(log)
	if err != nil {
		return nil, err
	}
	out := make([]models.Checkpoint, 0, n)
	for i := uint64(0); i < n; i++ {
		cp, err := t.Checkpoint(log, i)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}
